package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"skincare/internal/domain"
)

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

type serviceModel struct {
	ID              int64           `gorm:"column:id;primaryKey"`
	Name            string          `gorm:"column:name;not null"`
	Description     string          `gorm:"column:description;type:text"`
	Price           decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	DurationMinutes int             `gorm:"column:duration_minutes;not null"`
	Active          bool            `gorm:"column:active;not null"`
	ImageURL        string          `gorm:"column:image_url"`
	CreatedAt       time.Time       `gorm:"column:created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
}

func (serviceModel) TableName() string { return "services" }

type categoryModel struct {
	ID          int64  `gorm:"column:id;primaryKey"`
	Name        string `gorm:"column:name;not null;uniqueIndex"`
	Description string `gorm:"column:description;type:text"`
}

func (categoryModel) TableName() string { return "categories" }

type serviceCategoryModel struct {
	ServiceID  int64 `gorm:"column:service_id;primaryKey"`
	CategoryID int64 `gorm:"column:category_id;primaryKey"`
}

func (serviceCategoryModel) TableName() string { return "service_categories" }

func toDomainService(m serviceModel, categoryIDs []int64) domain.Service {
	return domain.Service{
		ID:              m.ID,
		Name:            m.Name,
		Description:     m.Description,
		Price:           m.Price,
		DurationMinutes: m.DurationMinutes,
		Active:          m.Active,
		ImageURL:        m.ImageURL,
		CategoryIDs:     categoryIDs,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toServiceModel(s *domain.Service) serviceModel {
	return serviceModel{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		Price:           s.Price,
		DurationMinutes: s.DurationMinutes,
		Active:          s.Active,
		ImageURL:        s.ImageURL,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	var m serviceModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err, "service", id)
	}
	out, err := r.withCategories(ctx, []serviceModel{m})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// GetByIDs returns the services found among ids ordered by id. Missing ids
// are silently skipped; callers compare lengths when that matters.
func (r *ServiceRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Service, error) {
	if len(ids) == 0 {
		return []domain.Service{}, nil
	}
	var rows []serviceModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.withCategories(ctx, rows)
}

func (r *ServiceRepository) ListActive(ctx context.Context) ([]domain.Service, error) {
	var rows []serviceModel
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.withCategories(ctx, rows)
}

func (r *ServiceRepository) ListByCategory(ctx context.Context, categoryID int64) ([]domain.Service, error) {
	var rows []serviceModel
	err := r.db.WithContext(ctx).
		Joins("JOIN service_categories sc ON sc.service_id = services.id").
		Where("sc.category_id = ? AND services.active = ?", categoryID, true).
		Order("services.id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.withCategories(ctx, rows)
}

func (r *ServiceRepository) Create(ctx context.Context, s *domain.Service) error {
	m := toServiceModel(s)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return translate(err, "service", s.Name)
		}
		if err := replaceServiceCategories(tx, m.ID, s.CategoryIDs); err != nil {
			return err
		}
		*s = toDomainService(m, s.CategoryIDs)
		return nil
	})
}

func (r *ServiceRepository) Update(ctx context.Context, s *domain.Service) error {
	m := toServiceModel(s)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&serviceModel{ID: s.ID}).
			Select("name", "description", "price", "duration_minutes", "active", "image_url", "updated_at").
			Updates(&m)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "service", s.ID)
		}
		return replaceServiceCategories(tx, s.ID, s.CategoryIDs)
	})
}

func replaceServiceCategories(tx *gorm.DB, serviceID int64, categoryIDs []int64) error {
	if err := tx.Where("service_id = ?", serviceID).Delete(&serviceCategoryModel{}).Error; err != nil {
		return err
	}
	if len(categoryIDs) == 0 {
		return nil
	}
	links := make([]serviceCategoryModel, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		links = append(links, serviceCategoryModel{ServiceID: serviceID, CategoryID: id})
	}
	return tx.Create(&links).Error
}

func (r *ServiceRepository) withCategories(ctx context.Context, rows []serviceModel) ([]domain.Service, error) {
	out := make([]domain.Service, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.ID)
	}
	var links []serviceCategoryModel
	if err := r.db.WithContext(ctx).Where("service_id IN ?", ids).Order("category_id").Find(&links).Error; err != nil {
		return nil, err
	}
	byService := make(map[int64][]int64, len(rows))
	for _, l := range links {
		byService[l.ServiceID] = append(byService[l.ServiceID], l.CategoryID)
	}

	for _, m := range rows {
		out = append(out, toDomainService(m, byService[m.ID]))
	}
	return out, nil
}

func (r *ServiceRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var rows []categoryModel
	if err := r.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.Category{ID: m.ID, Name: m.Name, Description: m.Description})
	}
	return out, nil
}

func (r *ServiceRepository) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	var m categoryModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err, "category", id)
	}
	return &domain.Category{ID: m.ID, Name: m.Name, Description: m.Description}, nil
}

func (r *ServiceRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	m := categoryModel{Name: c.Name, Description: c.Description}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err, "category", c.Name)
	}
	c.ID = m.ID
	return nil
}
