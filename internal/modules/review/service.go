package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"skincare/internal/domain"
	"skincare/internal/pkg/apperror"
	"skincare/internal/pkg/clock"
	"skincare/internal/pkg/lock"
	"skincare/internal/pkg/metrics"
	"skincare/internal/repository"
)

type Service struct {
	store       *repository.Store
	locker      lock.Locker
	lockTimeout time.Duration
	clock       clock.Clock
	metrics     *metrics.Metrics
}

func NewService(store *repository.Store, locker lock.Locker, lockTimeout time.Duration, clk clock.Clock, m *metrics.Metrics) *Service {
	if lockTimeout <= 0 {
		lockTimeout = 3 * time.Second
	}
	return &Service{store: store, locker: locker, lockTimeout: lockTimeout, clock: clk, metrics: m}
}

// SubmitReview stores an unapproved review for the caller's completed
// booking. A booking gets at most one review.
func (s *Service) SubmitReview(ctx context.Context, actor domain.Actor, req CreateReviewRequest) (*domain.Review, error) {
	b, err := s.store.Bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsCustomer(b.CustomerID) {
		return nil, fmt.Errorf("%w: only the booking's customer can review it", ErrForbidden)
	}
	if b.Status != domain.BookingCompleted {
		return nil, fmt.Errorf("%w: booking %d is %s", ErrReviewNotAllowed, b.ID, b.Status)
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	rv := &domain.Review{
		BookingID: b.ID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	}
	if err := s.store.Reviews.Create(ctx, rv); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: booking %d", ErrAlreadyReviewed, b.ID)
		}
		return nil, err
	}
	return rv, nil
}

// ApproveReview publishes a review and refreshes the specialist's rating
// in the same transaction, under the specialist's lock. Approving an
// approved review is a no-op.
func (s *Service) ApproveReview(ctx context.Context, actor domain.Actor, reviewID int64) (*domain.Review, error) {
	rv, err := s.store.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins approve reviews", ErrForbidden)
	}
	if rv.Approved {
		return rv, nil
	}

	b, err := s.store.Bookings.GetByID(ctx, rv.BookingID)
	if err != nil {
		return nil, err
	}

	if b.SpecialistID != nil {
		release, err := s.locker.Acquire(ctx, lock.SpecialistKey(*b.SpecialistID), s.lockTimeout)
		if err != nil {
			if apperror.IsRetryable(err) {
				s.metrics.Conflict("lock_timeout")
			}
			return nil, err
		}
		defer release()
	}

	var agg repository.RatingAggregate
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		cur, err := tx.Reviews.GetByID(ctx, reviewID)
		if err != nil {
			return err
		}
		if cur.Approved {
			rv = cur
			return nil
		}

		now := s.clock.Now().UTC()
		cur.Approved = true
		cur.ApprovedAt = &now
		if err := tx.Reviews.Update(ctx, cur); err != nil {
			return err
		}
		rv = cur

		if b.SpecialistID == nil {
			return nil
		}
		agg, err = RefreshSpecialistRating(ctx, tx, *b.SpecialistID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ReviewApproved()
	log := zerolog.Ctx(ctx).Info().Int64("review_id", rv.ID)
	if b.SpecialistID != nil {
		log = log.Int64("specialist_id", *b.SpecialistID).
			Float64("rating_average", agg.Average).
			Int64("rating_count", agg.Count)
	}
	log.Msg("review approved")
	return rv, nil
}

func (s *Service) RespondToReview(ctx context.Context, actor domain.Actor, reviewID int64, response string) (*domain.Review, error) {
	rv, err := s.store.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins respond to reviews", ErrForbidden)
	}
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, fmt.Errorf("%w: response is required", ErrValidation)
	}

	rv.AdminResponse = response
	if err := s.store.Reviews.Update(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

// GetReview returns an approved review to anyone. An unapproved one is
// visible to admins and the booking's customer only; others get not found.
func (s *Service) GetReview(ctx context.Context, actor *domain.Actor, reviewID int64) (*domain.Review, error) {
	rv, err := s.store.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	return s.visible(ctx, actor, rv)
}

// GetReviewForBooking looks a review up by its booking, with the same
// visibility as GetReview.
func (s *Service) GetReviewForBooking(ctx context.Context, actor *domain.Actor, bookingID int64) (*domain.Review, error) {
	rv, err := s.store.Reviews.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return s.visible(ctx, actor, rv)
}

func (s *Service) visible(ctx context.Context, actor *domain.Actor, rv *domain.Review) (*domain.Review, error) {
	if rv.Approved || (actor != nil && actor.IsAdmin()) {
		return rv, nil
	}
	if actor != nil {
		b, err := s.store.Bookings.GetByID(ctx, rv.BookingID)
		if err != nil {
			return nil, err
		}
		if actor.IsCustomer(b.CustomerID) {
			return rv, nil
		}
	}
	return nil, fmt.Errorf("review %d: %w", rv.ID, repository.ErrNotFound)
}

func (s *Service) ListSpecialistReviews(ctx context.Context, specialistID int64) ([]domain.Review, error) {
	return s.store.Reviews.ListApprovedBySpecialist(ctx, specialistID)
}

func (s *Service) ListPending(ctx context.Context, actor domain.Actor) ([]domain.Review, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins moderate reviews", ErrForbidden)
	}
	return s.store.Reviews.ListPending(ctx)
}
