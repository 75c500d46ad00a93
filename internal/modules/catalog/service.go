package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"skincare/internal/domain"
	"skincare/internal/pkg/apperror"
	"skincare/internal/repository"
)

var (
	ErrForbidden  = apperror.New(apperror.KindForbidden, "forbidden")
	ErrValidation = apperror.New(apperror.KindValidation, "validation error")
)

const (
	keyActiveServices = "services:active"
	keyCategories     = "categories"
	keySpecialists    = "specialists"
)

// Service serves the treatment catalog and specialist profiles. Reads go
// through an in-process cache that every write flushes.
type Service struct {
	store *repository.Store
	cache *cache.Cache
}

func NewService(store *repository.Store, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Service{store: store, cache: cache.New(ttl, 2*ttl)}
}

func cached[T any](c *cache.Cache, key string, load func() (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.SetDefault(key, v)
	return v, nil
}

/* ---------- SERVICES ---------- */

func (s *Service) ListServices(ctx context.Context) ([]domain.Service, error) {
	return cached(s.cache, keyActiveServices, func() ([]domain.Service, error) {
		return s.store.Services.ListActive(ctx)
	})
}

func (s *Service) ListServicesByCategory(ctx context.Context, categoryID int64) ([]domain.Service, error) {
	return cached(s.cache, fmt.Sprintf("services:category:%d", categoryID), func() ([]domain.Service, error) {
		if _, err := s.store.Services.GetCategory(ctx, categoryID); err != nil {
			return nil, err
		}
		return s.store.Services.ListByCategory(ctx, categoryID)
	})
}

func (s *Service) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	return cached(s.cache, fmt.Sprintf("service:%d", id), func() (*domain.Service, error) {
		return s.store.Services.GetByID(ctx, id)
	})
}

// GetServicesByIDs returns the services in id order. Unknown ids are an
// error.
func (s *Service) GetServicesByIDs(ctx context.Context, ids []int64) ([]domain.Service, error) {
	found, err := s.store.Services.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if !slices.ContainsFunc(found, func(svc domain.Service) bool { return svc.ID == id }) {
			return nil, fmt.Errorf("service %d: %w", id, repository.ErrNotFound)
		}
	}
	return found, nil
}

func validateService(req ServiceRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if req.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrValidation)
	}
	if req.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	return nil
}

func (s *Service) CreateService(ctx context.Context, actor domain.Actor, req ServiceRequest) (*domain.Service, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins manage services", ErrForbidden)
	}
	if err := validateService(req); err != nil {
		return nil, err
	}

	svc := &domain.Service{
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		Price:           req.Price.Round(2),
		DurationMinutes: req.DurationMinutes,
		Active:          req.Active == nil || *req.Active,
		ImageURL:        req.ImageURL,
		CategoryIDs:     req.CategoryIDs,
	}
	if err := s.store.Services.Create(ctx, svc); err != nil {
		return nil, err
	}
	s.cache.Flush()
	return svc, nil
}

// UpdateService changes the catalog entry. Bookings keep the price and
// duration they were made with.
func (s *Service) UpdateService(ctx context.Context, actor domain.Actor, id int64, req ServiceRequest) (*domain.Service, error) {
	svc, err := s.store.Services.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins manage services", ErrForbidden)
	}
	if err := validateService(req); err != nil {
		return nil, err
	}

	svc.Name = strings.TrimSpace(req.Name)
	svc.Description = req.Description
	svc.Price = req.Price.Round(2)
	svc.DurationMinutes = req.DurationMinutes
	if req.Active != nil {
		svc.Active = *req.Active
	}
	svc.ImageURL = req.ImageURL
	svc.CategoryIDs = req.CategoryIDs

	if err := s.store.Services.Update(ctx, svc); err != nil {
		return nil, err
	}
	s.cache.Flush()
	return svc, nil
}

/* ---------- CATEGORIES ---------- */

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return cached(s.cache, keyCategories, func() ([]domain.Category, error) {
		return s.store.Services.ListCategories(ctx)
	})
}

func (s *Service) CreateCategory(ctx context.Context, actor domain.Actor, req CategoryRequest) (*domain.Category, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins manage categories", ErrForbidden)
	}
	c := &domain.Category{Name: strings.TrimSpace(req.Name), Description: req.Description}
	if c.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := s.store.Services.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.cache.Flush()
	return c, nil
}

/* ---------- SPECIALISTS ---------- */

// SpecialistFilter narrows ListSpecialists. Zero values match everyone.
type SpecialistFilter struct {
	ServiceID int64
	MinRating float64
}

func (s *Service) ListSpecialists(ctx context.Context, filter SpecialistFilter) ([]domain.Specialist, error) {
	if filter.MinRating < 0 || filter.MinRating > 5 {
		return nil, fmt.Errorf("%w: min_rating must be between 0 and 5", ErrValidation)
	}

	var (
		all []domain.Specialist
		err error
	)
	if filter.MinRating > 0 {
		// Review approval moves ratings without flushing the cache.
		all, err = s.store.Specialists.List(ctx)
	} else {
		all, err = cached(s.cache, keySpecialists, func() ([]domain.Specialist, error) {
			return s.store.Specialists.List(ctx)
		})
	}
	if err != nil {
		return nil, err
	}
	if filter == (SpecialistFilter{}) {
		return all, nil
	}

	out := make([]domain.Specialist, 0, len(all))
	for _, spec := range all {
		if filter.ServiceID > 0 && !spec.Offers(filter.ServiceID) {
			continue
		}
		if spec.RatingAverage < filter.MinRating {
			continue
		}
		out = append(out, spec)
	}
	return out, nil
}

// GetSpecialist is not cached: its rating changes on review approval.
func (s *Service) GetSpecialist(ctx context.Context, id int64) (*domain.Specialist, error) {
	return s.store.Specialists.GetByID(ctx, id)
}

func (s *Service) SpecialistServices(ctx context.Context, id int64) ([]domain.Service, error) {
	spec, err := s.store.Specialists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(spec.ServiceIDs) == 0 {
		return []domain.Service{}, nil
	}
	return s.store.Services.GetByIDs(ctx, spec.ServiceIDs)
}

func (s *Service) CreateSpecialist(ctx context.Context, actor domain.Actor, req SpecialistRequest) (*domain.Specialist, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins add specialists", ErrForbidden)
	}
	if _, err := s.GetServicesByIDs(ctx, req.ServiceIDs); err != nil {
		return nil, err
	}
	spec := &domain.Specialist{
		UserID:         req.UserID,
		Name:           strings.TrimSpace(req.Name),
		Specialization: req.Specialization,
		Bio:            req.Bio,
		ServiceIDs:     req.ServiceIDs,
	}
	if err := s.store.Specialists.Create(ctx, spec); err != nil {
		return nil, err
	}
	s.cache.Flush()
	return spec, nil
}

// UpdateSpecialist rewrites the profile. A nil service list keeps the
// offered services as they are.
func (s *Service) UpdateSpecialist(ctx context.Context, actor domain.Actor, id int64, req SpecialistRequest) (*domain.Specialist, error) {
	spec, err := s.store.Specialists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins edit specialists", ErrForbidden)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if req.ServiceIDs != nil {
		if _, err := s.GetServicesByIDs(ctx, req.ServiceIDs); err != nil {
			return nil, err
		}
	}

	spec.UserID = req.UserID
	spec.Name = name
	spec.Specialization = req.Specialization
	spec.Bio = req.Bio
	spec.ServiceIDs = req.ServiceIDs
	if err := s.store.Specialists.Update(ctx, spec); err != nil {
		return nil, err
	}
	s.cache.Flush()
	return s.store.Specialists.GetByID(ctx, id)
}

func (s *Service) SetSpecialistServices(ctx context.Context, actor domain.Actor, specialistID int64, serviceIDs []int64) (*domain.Specialist, error) {
	if _, err := s.store.Specialists.GetByID(ctx, specialistID); err != nil {
		return nil, err
	}
	if !actor.IsStaff() {
		return nil, fmt.Errorf("%w: only staff manage offered services", ErrForbidden)
	}
	if _, err := s.GetServicesByIDs(ctx, serviceIDs); err != nil {
		return nil, err
	}
	if err := s.store.Specialists.SetServices(ctx, specialistID, serviceIDs); err != nil {
		return nil, err
	}
	s.cache.Flush()
	return s.store.Specialists.GetByID(ctx, specialistID)
}
