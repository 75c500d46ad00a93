package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"skincare/internal/domain"
	"skincare/internal/modules/availability"
	"skincare/internal/modules/notification"
	"skincare/internal/pkg/clock"
	"skincare/internal/pkg/lock"
	"skincare/internal/pkg/metrics"
	"skincare/internal/repository"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type Config struct {
	// GraceWindow bounds check-in around the start and delays no-show.
	GraceWindow        time.Duration
	CancellationCutoff time.Duration
	LockTimeout        time.Duration
	// NotifyTimeout bounds event delivery after a committed change.
	NotifyTimeout      time.Duration
}

type Service struct {
	store    *repository.Store
	resolver *availability.Resolver
	locker   lock.Locker
	clock    clock.Clock
	cfg      Config
	authz    Authorizer
	notifier notification.Notifier
	metrics  *metrics.Metrics
}

func NewService(
	store *repository.Store,
	resolver *availability.Resolver,
	locker lock.Locker,
	clk clock.Clock,
	cfg Config,
	notifier notification.Notifier,
	m *metrics.Metrics,
) *Service {
	if notifier == nil {
		notifier = notification.Nop{}
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = 3 * time.Second
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = 5 * time.Second
	}
	return &Service{
		store:    store,
		resolver: resolver,
		locker:   locker,
		clock:    clk,
		cfg:      cfg,
		authz:    Authorizer{CancellationCutoff: cfg.CancellationCutoff},
		notifier: notifier,
		metrics:  m,
	}
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Second)
}

// CreateBooking prices the requested services, lays them out back to back
// from the start time and stores a PENDING booking. With a specialist the
// availability check and the insert run under that specialist's lock and in
// one transaction.
func (s *Service) CreateBooking(ctx context.Context, actor domain.Actor, req CreateBookingRequest) (*domain.Booking, error) {
	switch {
	case actor.Role == domain.RoleCustomer:
		if req.CustomerID != 0 && req.CustomerID != actor.ID {
			return nil, fmt.Errorf("%w: customers may only book for themselves", ErrForbidden)
		}
		req.CustomerID = actor.ID
	case actor.IsStaff():
		if req.CustomerID <= 0 {
			return nil, fmt.Errorf("%w: customer_id is required", ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: role %s cannot create bookings", ErrForbidden, actor.Role)
	}

	if len(req.ServiceIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one service is required", ErrValidation)
	}

	services, err := s.loadServices(ctx, req.ServiceIDs)
	if err != nil {
		return nil, err
	}

	start := req.StartTime.UTC().Truncate(time.Second)
	b := &domain.Booking{
		CustomerID:    req.CustomerID,
		SpecialistID:  req.SpecialistID,
		StartTime:     start,
		Status:        domain.BookingPending,
		PaymentStatus: domain.PaymentPending,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		Notes:         strings.TrimSpace(req.Notes),
	}
	b.Details, b.EndTime, b.TotalAmount = layoutDetails(start, services)

	if req.SpecialistID == nil {
		if start.Before(s.now()) {
			return nil, fmt.Errorf("%w: start time is in the past", ErrValidation)
		}
		// Assignment later revalidates without the advance rules, so they
		// are enforced here.
		if reason := s.resolver.CheckHorizon(start); reason != availability.ReasonNone {
			s.metrics.Conflict("slot_unavailable")
			return nil, fmt.Errorf("%w: %s", ErrSlotUnavailable, reason)
		}
		if err := s.store.Bookings.Create(ctx, b); err != nil {
			return nil, mapPersistError(err)
		}
	} else if err := s.createForSpecialist(ctx, b, services); err != nil {
		return nil, err
	}

	s.metrics.BookingCreated()
	zerolog.Ctx(ctx).Info().
		Int64("booking_id", b.ID).
		Int64("customer_id", b.CustomerID).
		Time("start", b.StartTime).
		Msg("booking created")
	s.notify(ctx, notification.EventBookingCreated, b, "")

	return b, nil
}

func (s *Service) createForSpecialist(ctx context.Context, b *domain.Booking, services []domain.Service) error {
	specialistID := *b.SpecialistID

	release, err := s.lockSpecialist(ctx, specialistID)
	if err != nil {
		return err
	}
	defer release()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		spec, err := tx.Specialists.GetForUpdate(ctx, specialistID)
		if err != nil {
			return err
		}
		if err := ensureOffers(spec, services); err != nil {
			return err
		}
		if err := s.checkSlot(ctx, tx, availability.Request{
			SpecialistID: specialistID,
			Start:        b.StartTime,
			Duration:     b.Duration(),
		}); err != nil {
			return err
		}
		return tx.Bookings.Create(ctx, b)
	})
	return mapPersistError(err)
}

func (s *Service) loadServices(ctx context.Context, ids []int64) ([]domain.Service, error) {
	found, err := s.store.Services.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.Service, len(found))
	for _, svc := range found {
		byID[svc.ID] = svc
	}

	out := make([]domain.Service, 0, len(ids))
	for _, id := range ids {
		svc, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("service %d: %w", id, repository.ErrNotFound)
		}
		if !svc.Active {
			return nil, fmt.Errorf("%w: service %d is not active", ErrValidation, id)
		}
		out = append(out, svc)
	}
	return out, nil
}

// layoutDetails places the services one after another from start in the
// order given and sums their prices.
func layoutDetails(start time.Time, services []domain.Service) ([]domain.BookingDetail, time.Time, decimal.Decimal) {
	details := make([]domain.BookingDetail, 0, len(services))
	cur := start
	total := decimal.Zero
	for i, svc := range services {
		end := cur.Add(svc.Duration())
		details = append(details, domain.BookingDetail{
			ServiceID:       svc.ID,
			Position:        i + 1,
			Price:           svc.Price,
			DurationMinutes: svc.DurationMinutes,
			StartTime:       cur,
			EndTime:         end,
			Status:          domain.DetailPending,
		})
		total = total.Add(svc.Price)
		cur = end
	}
	return details, cur, total
}

func ensureOffers(spec *domain.Specialist, services []domain.Service) error {
	for _, svc := range services {
		if !spec.Offers(svc.ID) {
			return fmt.Errorf("%w: specialist %d does not offer service %d", ErrValidation, spec.ID, svc.ID)
		}
	}
	return nil
}

func (s *Service) checkSlot(ctx context.Context, tx *repository.Store, req availability.Request) error {
	ok, reason, err := s.resolver.With(tx).IsAvailable(ctx, req)
	if err != nil {
		return err
	}
	if !ok {
		s.metrics.Conflict("slot_unavailable")
		return fmt.Errorf("%w: %s", ErrSlotUnavailable, reason)
	}
	return nil
}

func (s *Service) lockSpecialist(ctx context.Context, specialistID int64) (func(), error) {
	started := time.Now()
	release, err := s.locker.Acquire(ctx, lock.SpecialistKey(specialistID), s.cfg.LockTimeout)
	s.metrics.ObserveLockWait(time.Since(started))
	if err != nil {
		if errors.Is(err, lock.ErrTimeout) {
			s.metrics.Conflict("lock_timeout")
			return nil, fmt.Errorf("%w: specialist %d is busy: %w", ErrConflict, specialistID, err)
		}
		return nil, err
	}
	return release, nil
}

// mapPersistError turns PostgreSQL overlap and serialization failures into
// retryable conflicts.
func mapPersistError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23P01", "40001", "40P01":
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		}
	}
	return err
}

// TransitionBooking moves a booking to target. Checks run in order: the
// booking exists, the move is legal, the actor may make it, a cancel has a
// reason, then the target's own guard.
func (s *Service) TransitionBooking(ctx context.Context, actor domain.Actor, bookingID int64, target domain.BookingStatus, reason string) (*domain.Booking, error) {
	current, err := s.store.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Confirmation re-runs the availability check, so it takes the
	// specialist lock like creation does.
	if target == domain.BookingConfirmed && current.SpecialistID != nil && CanMove(current.Status, target) {
		release, err := s.lockSpecialist(ctx, *current.SpecialistID)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	var (
		from domain.BookingStatus
		b    *domain.Booking
	)
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		b, err = tx.Bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		from = b.Status
		now := s.now()

		if err := checkTransition(b.Status, target); err != nil {
			return err
		}
		if !s.authz.CanTransition(actor, b, target, now) {
			return fmt.Errorf("%w: %s may not move booking %d to %s", ErrForbidden, actor.Role, b.ID, target)
		}
		if err := s.applyGuard(ctx, tx, b, target, strings.TrimSpace(reason), now); err != nil {
			return err
		}

		b.Status = target
		return tx.Bookings.Update(ctx, b)
	})
	if err != nil {
		return nil, mapPersistError(err)
	}

	s.metrics.Transition(string(from), string(target))
	zerolog.Ctx(ctx).Info().
		Int64("booking_id", b.ID).
		Str("from", string(from)).
		Str("to", string(target)).
		Msg("booking transitioned")

	switch target {
	case domain.BookingConfirmed:
		s.notify(ctx, notification.EventBookingConfirmed, b, "")
	case domain.BookingCancelled:
		s.notify(ctx, notification.EventBookingCancelled, b, b.CancellationReason)
	default:
		s.notify(ctx, notification.EventBookingStatusChanged, b, "")
	}
	return b, nil
}

func (s *Service) applyGuard(ctx context.Context, tx *repository.Store, b *domain.Booking, target domain.BookingStatus, reason string, now time.Time) error {
	switch target {
	case domain.BookingCancelled:
		if reason == "" {
			return fmt.Errorf("%w: cancellation reason is required", ErrValidation)
		}
		b.CancellationReason = reason
		for i := range b.Details {
			if !b.Details[i].Status.IsDone() {
				b.Details[i].Status = domain.DetailCancelled
			}
		}
		if b.PaymentStatus == domain.PaymentPaid {
			b.PaymentStatus = domain.PaymentRefunded
		}

	case domain.BookingConfirmed:
		if b.SpecialistID == nil {
			return fmt.Errorf("%w: a specialist must be assigned before confirmation", ErrValidation)
		}
		return s.checkSlot(ctx, tx, availability.Request{
			SpecialistID:     *b.SpecialistID,
			Start:            b.StartTime,
			Duration:         b.Duration(),
			ExcludeBookingID: b.ID,
			Revalidate:       true,
		})

	case domain.BookingCheckedIn:
		if now.Before(b.StartTime.Add(-s.cfg.GraceWindow)) || now.After(b.StartTime.Add(s.cfg.GraceWindow)) {
			return fmt.Errorf("%w: check-in is only possible within %s of the start", ErrInvalidTransition, s.cfg.GraceWindow)
		}
		b.CheckedInAt = &now

	case domain.BookingNoShow:
		if b.CheckedInAt != nil || !now.After(b.StartTime.Add(s.cfg.GraceWindow)) {
			return fmt.Errorf("%w: no-show is only possible after the grace window", ErrInvalidTransition)
		}

	case domain.BookingCompleted:
		for _, d := range b.Details {
			if !d.Status.IsDone() {
				return fmt.Errorf("%w: service line %d is %s", ErrInvalidTransition, d.Position, d.Status)
			}
		}
		b.CheckedOutAt = &now
	}
	return nil
}

// AssignSpecialist sets the specialist of a PENDING booking after checking
// the new specialist can take it. On failure nothing changes.
func (s *Service) AssignSpecialist(ctx context.Context, actor domain.Actor, bookingID, specialistID int64) (*domain.Booking, error) {
	current, err := s.store.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingPending {
		return nil, fmt.Errorf("%w: cannot assign a specialist to a %s booking", ErrInvalidTransition, current.Status)
	}
	if !actor.IsStaff() {
		return nil, fmt.Errorf("%w: only staff can assign specialists", ErrForbidden)
	}

	release, err := s.lockSpecialist(ctx, specialistID)
	if err != nil {
		return nil, err
	}
	defer release()

	var b *domain.Booking
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		b, err = tx.Bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.Status != domain.BookingPending {
			return fmt.Errorf("%w: cannot assign a specialist to a %s booking", ErrInvalidTransition, b.Status)
		}

		spec, err := tx.Specialists.GetForUpdate(ctx, specialistID)
		if err != nil {
			return err
		}
		for _, d := range b.Details {
			if !spec.Offers(d.ServiceID) {
				return fmt.Errorf("%w: specialist %d does not offer service %d", ErrValidation, specialistID, d.ServiceID)
			}
		}
		if err := s.checkSlot(ctx, tx, availability.Request{
			SpecialistID:     specialistID,
			Start:            b.StartTime,
			Duration:         b.Duration(),
			ExcludeBookingID: b.ID,
			Revalidate:       true,
		}); err != nil {
			return err
		}

		b.SpecialistID = &specialistID
		return tx.Bookings.Update(ctx, b)
	})
	if err != nil {
		return nil, mapPersistError(err)
	}

	s.notify(ctx, notification.EventSpecialistAssigned, b, "")
	return b, nil
}

// TransitionDetail drives one service line. Lines only start or finish
// while the booking is IN_PROGRESS; a line may be cancelled any time the
// booking is not terminal.
func (s *Service) TransitionDetail(ctx context.Context, actor domain.Actor, bookingID, detailID int64, target domain.DetailStatus) (*domain.Booking, error) {
	var b *domain.Booking
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		b, err = tx.Bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		d := b.Detail(detailID)
		if d == nil {
			return fmt.Errorf("booking detail %d: %w", detailID, repository.ErrNotFound)
		}
		if err := checkDetailTransition(d.Status, target); err != nil {
			return err
		}
		if target == domain.DetailCancelled {
			if b.Status.IsTerminal() {
				return fmt.Errorf("%w: booking is %s", ErrInvalidTransition, b.Status)
			}
		} else if b.Status != domain.BookingInProgress {
			return fmt.Errorf("%w: booking is %s, not %s", ErrInvalidTransition, b.Status, domain.BookingInProgress)
		}
		if !s.authz.CanWorkOn(actor, b) {
			return fmt.Errorf("%w: not assigned to booking %d", ErrForbidden, b.ID)
		}

		d.Status = target
		return tx.Bookings.UpdateDetail(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) UpdateDetailNotes(ctx context.Context, actor domain.Actor, bookingID, detailID int64, req DetailNotesRequest) (*domain.BookingDetail, error) {
	var out *domain.BookingDetail
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		b, err := tx.Bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		d := b.Detail(detailID)
		if d == nil {
			return fmt.Errorf("booking detail %d: %w", detailID, repository.ErrNotFound)
		}
		if !s.authz.CanWorkOn(actor, b) {
			return fmt.Errorf("%w: not assigned to booking %d", ErrForbidden, b.ID)
		}

		if req.SpecialistNotes != nil {
			d.SpecialistNotes = strings.TrimSpace(*req.SpecialistNotes)
		}
		if req.RecommendedFollowup != nil {
			d.RecommendedFollowup = strings.TrimSpace(*req.RecommendedFollowup)
		}
		out = d
		return tx.Bookings.UpdateDetail(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, actor domain.Actor, bookingID int64, status domain.PaymentStatus) (*domain.Booking, error) {
	var b *domain.Booking
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		b, err = tx.Bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := checkPaymentTransition(b.PaymentStatus, status); err != nil {
			return err
		}
		if !actor.IsStaff() {
			return fmt.Errorf("%w: only staff can record payments", ErrForbidden)
		}
		b.PaymentStatus = status
		return tx.Bookings.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) GetBooking(ctx context.Context, actor domain.Actor, bookingID int64) (*domain.Booking, error) {
	b, err := s.store.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanView(actor, b) {
		return nil, fmt.Errorf("%w: booking %d", ErrForbidden, bookingID)
	}
	return b, nil
}

func (s *Service) ListCustomerBookings(ctx context.Context, actor domain.Actor, customerID int64, limit, offset int) ([]domain.Booking, error) {
	if !actor.IsStaff() && !actor.IsCustomer(customerID) {
		return nil, fmt.Errorf("%w: bookings of customer %d", ErrForbidden, customerID)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.Bookings.ListByCustomer(ctx, customerID, limit, offset)
}

// ListSpecialistBookings returns the specialist's bookings intersecting
// [from, to), cancelled ones included.
func (s *Service) ListSpecialistBookings(ctx context.Context, actor domain.Actor, specialistID int64, from, to time.Time) ([]domain.Booking, error) {
	if !actor.IsStaff() && !actor.IsSpecialist(specialistID) {
		return nil, fmt.Errorf("%w: bookings of specialist %d", ErrForbidden, specialistID)
	}
	if !to.After(from) {
		return nil, fmt.Errorf("%w: 'to' must be after 'from'", ErrValidation)
	}
	return s.store.Bookings.ListBySpecialist(ctx, specialistID, from, to)
}

// notify publishes after commit. Delivery is bounded by NotifyTimeout and
// outlives a cancelled request; failures are logged only.
func (s *Service) notify(ctx context.Context, typ notification.EventType, b *domain.Booking, reason string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.NotifyTimeout)
	defer cancel()

	err := s.notifier.Notify(ctx, notification.Event{
		Type:         typ,
		BookingID:    b.ID,
		CustomerID:   b.CustomerID,
		SpecialistID: b.SpecialistID,
		Status:       string(b.Status),
		StartTime:    b.StartTime,
		Reason:       reason,
		OccurredAt:   s.clock.Now(),
	})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("booking_id", b.ID).Str("event", string(typ)).Msg("booking notification failed")
	}
}
