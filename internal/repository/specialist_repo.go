package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"skincare/internal/domain"
)

type SpecialistRepository struct {
	db *gorm.DB
}

func NewSpecialistRepository(db *gorm.DB) *SpecialistRepository {
	return &SpecialistRepository{db: db}
}

type specialistModel struct {
	ID             int64     `gorm:"column:id;primaryKey"`
	UserID         *int64    `gorm:"column:user_id;uniqueIndex"`
	Name           string    `gorm:"column:name;not null"`
	Specialization string    `gorm:"column:specialization"`
	Bio            string    `gorm:"column:bio;type:text"`
	RatingAverage  float64   `gorm:"column:rating_average;type:double precision;not null"`
	RatingCount    int       `gorm:"column:rating_count;not null"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (specialistModel) TableName() string { return "specialists" }

type specialistServiceModel struct {
	SpecialistID int64 `gorm:"column:specialist_id;primaryKey"`
	ServiceID    int64 `gorm:"column:service_id;primaryKey"`
}

func (specialistServiceModel) TableName() string { return "specialist_services" }

func toDomainSpecialist(m specialistModel, serviceIDs []int64) *domain.Specialist {
	if serviceIDs == nil {
		serviceIDs = []int64{}
	}
	return &domain.Specialist{
		ID:             m.ID,
		UserID:         m.UserID,
		Name:           m.Name,
		Specialization: m.Specialization,
		Bio:            m.Bio,
		ServiceIDs:     serviceIDs,
		RatingAverage:  m.RatingAverage,
		RatingCount:    m.RatingCount,
	}
}

func (r *SpecialistRepository) GetByID(ctx context.Context, id int64) (*domain.Specialist, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetForUpdate loads the specialist and row-locks it until the surrounding
// transaction ends. SQLite ignores the locking clause.
func (r *SpecialistRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Specialist, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *SpecialistRepository) get(q *gorm.DB, id int64) (*domain.Specialist, error) {
	var m specialistModel
	if err := q.First(&m, id).Error; err != nil {
		return nil, translate(err, "specialist", id)
	}
	ids, err := r.serviceIDs(q.Session(&gorm.Session{NewDB: true}), id)
	if err != nil {
		return nil, err
	}
	return toDomainSpecialist(m, ids), nil
}

func (r *SpecialistRepository) serviceIDs(q *gorm.DB, specialistID int64) ([]int64, error) {
	var ids []int64
	err := q.Model(&specialistServiceModel{}).
		Where("specialist_id = ?", specialistID).
		Order("service_id").
		Pluck("service_id", &ids).Error
	return ids, err
}

func (r *SpecialistRepository) List(ctx context.Context) ([]domain.Specialist, error) {
	var rows []specialistModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	var links []specialistServiceModel
	if err := r.db.WithContext(ctx).Order("service_id").Find(&links).Error; err != nil {
		return nil, err
	}
	bySpecialist := make(map[int64][]int64)
	for _, l := range links {
		bySpecialist[l.SpecialistID] = append(bySpecialist[l.SpecialistID], l.ServiceID)
	}

	out := make([]domain.Specialist, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainSpecialist(m, bySpecialist[m.ID]))
	}
	return out, nil
}

func (r *SpecialistRepository) Create(ctx context.Context, s *domain.Specialist) error {
	m := specialistModel{
		UserID:         s.UserID,
		Name:           s.Name,
		Specialization: s.Specialization,
		Bio:            s.Bio,
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return translate(err, "specialist", s.Name)
		}
		if err := replaceSpecialistServices(tx, m.ID, s.ServiceIDs); err != nil {
			return err
		}
		*s = *toDomainSpecialist(m, s.ServiceIDs)
		return nil
	})
}

// Update writes the profile fields. ServiceIDs replaces the offered
// services unless it is nil.
func (r *SpecialistRepository) Update(ctx context.Context, s *domain.Specialist) error {
	m := specialistModel{
		ID:             s.ID,
		UserID:         s.UserID,
		Name:           s.Name,
		Specialization: s.Specialization,
		Bio:            s.Bio,
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&specialistModel{ID: s.ID}).
			Select("user_id", "name", "specialization", "bio", "updated_at").
			Updates(&m)
		if res.Error != nil {
			return translate(res.Error, "specialist", s.ID)
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "specialist", s.ID)
		}
		if s.ServiceIDs == nil {
			return nil
		}
		return replaceSpecialistServices(tx, s.ID, s.ServiceIDs)
	})
}

func (r *SpecialistRepository) SetServices(ctx context.Context, specialistID int64, serviceIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replaceSpecialistServices(tx, specialistID, serviceIDs)
	})
}

func replaceSpecialistServices(tx *gorm.DB, specialistID int64, serviceIDs []int64) error {
	if err := tx.Where("specialist_id = ?", specialistID).Delete(&specialistServiceModel{}).Error; err != nil {
		return err
	}
	if len(serviceIDs) == 0 {
		return nil
	}
	links := make([]specialistServiceModel, 0, len(serviceIDs))
	for _, id := range serviceIDs {
		links = append(links, specialistServiceModel{SpecialistID: specialistID, ServiceID: id})
	}
	return tx.Create(&links).Error
}

func (r *SpecialistRepository) UpdateRating(ctx context.Context, specialistID int64, average float64, count int) error {
	res := r.db.WithContext(ctx).
		Model(&specialistModel{}).
		Where("id = ?", specialistID).
		Updates(map[string]any{"rating_average": average, "rating_count": count})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "specialist", specialistID)
	}
	return nil
}
