package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"skincare/internal/domain"
)

// Store groups the repositories over one *gorm.DB, which is either the pool
// or an open transaction.
type Store struct {
	db *gorm.DB

	Services    *ServiceRepository
	Specialists *SpecialistRepository
	Schedules   *ScheduleRepository
	Bookings    *BookingRepository
	Reviews     *ReviewRepository
	Quiz        *QuizRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:          db,
		Services:    NewServiceRepository(db),
		Specialists: NewSpecialistRepository(db),
		Schedules:   NewScheduleRepository(db),
		Bookings:    NewBookingRepository(db),
		Reviews:     NewReviewRepository(db),
		Quiz:        NewQuizRepository(db),
	}
}

func (s *Store) DB() *gorm.DB { return s.db }

// Transaction runs fn with repositories bound to a single transaction.
// Inside fn only tx may be used.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func (s *Store) ScheduleForDay(ctx context.Context, specialistID int64, dayOfWeek int) ([]domain.ScheduleEntry, error) {
	return s.Schedules.ListForDay(ctx, specialistID, dayOfWeek)
}

func (s *Store) HasOverlappingBooking(ctx context.Context, specialistID int64, start, end time.Time, excludeBookingID int64) (bool, error) {
	return s.Bookings.HasOverlap(ctx, specialistID, start, end, excludeBookingID)
}

func (s *Store) ActiveBookings(ctx context.Context, specialistID int64, from, to time.Time) ([]domain.Booking, error) {
	return s.Bookings.ListActiveForSpecialist(ctx, specialistID, from, to)
}

// Models lists every table for AutoMigrate.
func Models() []any {
	return []any{
		&categoryModel{},
		&serviceModel{},
		&serviceCategoryModel{},
		&specialistModel{},
		&specialistServiceModel{},
		&scheduleEntryModel{},
		&bookingModel{},
		&bookingDetailModel{},
		&reviewModel{},
		&quizQuestionModel{},
		&quizOptionModel{},
		&questionServiceModel{},
		&optionServiceModel{},
		&quizResultModel{},
	}
}
