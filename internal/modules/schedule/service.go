package schedule

import (
	"context"
	"fmt"

	"skincare/internal/domain"
	"skincare/internal/repository"
)

// Service manages the weekly working windows of specialists. Entries of
// one specialist on one weekday never overlap; touching is fine.
type Service struct {
	store *repository.Store
}

func NewService(store *repository.Store) *Service {
	return &Service{store: store}
}

func canManage(actor domain.Actor, specialistID int64) bool {
	return actor.IsStaff() || actor.IsSpecialist(specialistID)
}

func (s *Service) List(ctx context.Context, specialistID int64) ([]domain.ScheduleEntry, error) {
	if _, err := s.store.Specialists.GetByID(ctx, specialistID); err != nil {
		return nil, err
	}
	return s.store.Schedules.ListBySpecialist(ctx, specialistID)
}

func (s *Service) Create(ctx context.Context, actor domain.Actor, specialistID int64, req EntryRequest) (*domain.ScheduleEntry, error) {
	if _, err := s.store.Specialists.GetByID(ctx, specialistID); err != nil {
		return nil, err
	}
	if !canManage(actor, specialistID) {
		return nil, fmt.Errorf("%w: cannot manage this schedule", ErrForbidden)
	}

	e := &domain.ScheduleEntry{SpecialistID: specialistID, Available: true}
	if err := apply(e, req); err != nil {
		return nil, err
	}
	if err := s.checkOverlap(ctx, e); err != nil {
		return nil, err
	}
	if err := s.store.Schedules.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Update(ctx context.Context, actor domain.Actor, entryID int64, req EntryRequest) (*domain.ScheduleEntry, error) {
	e, err := s.store.Schedules.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, e.SpecialistID) {
		return nil, fmt.Errorf("%w: cannot manage this schedule", ErrForbidden)
	}
	if err := apply(e, req); err != nil {
		return nil, err
	}
	if err := s.checkOverlap(ctx, e); err != nil {
		return nil, err
	}
	if err := s.store.Schedules.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, actor domain.Actor, entryID int64) error {
	e, err := s.store.Schedules.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if !canManage(actor, e.SpecialistID) {
		return fmt.Errorf("%w: cannot manage this schedule", ErrForbidden)
	}
	return s.store.Schedules.Delete(ctx, entryID)
}

func apply(e *domain.ScheduleEntry, req EntryRequest) error {
	if req.DayOfWeek == nil || *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
		return fmt.Errorf("%w: day_of_week must be 0..6", ErrValidation)
	}
	e.DayOfWeek = *req.DayOfWeek
	e.StartTime = req.StartTime
	e.EndTime = req.EndTime
	if req.Available != nil {
		e.Available = *req.Available
	}

	start, end, err := e.Bounds()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if start >= end {
		return fmt.Errorf("%w: start_time must be before end_time", ErrValidation)
	}
	return nil
}

func (s *Service) checkOverlap(ctx context.Context, e *domain.ScheduleEntry) error {
	existing, err := s.store.Schedules.ListForDay(ctx, e.SpecialistID, e.DayOfWeek)
	if err != nil {
		return err
	}
	start, end, _ := e.Bounds()
	for _, other := range existing {
		if other.ID == e.ID {
			continue
		}
		oStart, oEnd, err := other.Bounds()
		if err != nil {
			continue
		}
		if start < oEnd && oStart < end {
			return fmt.Errorf("%w: %s-%s clashes with %s-%s", ErrOverlap, e.StartTime, e.EndTime, other.StartTime, other.EndTime)
		}
	}
	return nil
}
