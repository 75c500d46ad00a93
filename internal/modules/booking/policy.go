package booking

import (
	"time"

	"skincare/internal/domain"
)

// Authorizer decides who may move a booking. It does not look at the
// transition table; callers check legality first.
type Authorizer struct {
	// CancellationCutoff is how long before the start a customer may
	// still cancel their own booking.
	CancellationCutoff time.Duration
}

func (a Authorizer) CanTransition(actor domain.Actor, b *domain.Booking, target domain.BookingStatus, now time.Time) bool {
	if actor.IsStaff() {
		return true
	}

	switch actor.Role {
	case domain.RoleSpecialist:
		if b.SpecialistID == nil || !b.AssignedTo(actor.ID) {
			return false
		}
		switch target {
		case domain.BookingConfirmed, domain.BookingCheckedIn, domain.BookingInProgress,
			domain.BookingCompleted, domain.BookingNoShow:
			return true
		}
		return false

	case domain.RoleCustomer:
		if !actor.IsCustomer(b.CustomerID) || target != domain.BookingCancelled {
			return false
		}
		if b.Status != domain.BookingPending && b.Status != domain.BookingConfirmed {
			return false
		}
		return now.Before(b.StartTime.Add(-a.CancellationCutoff))
	}
	return false
}

// CanView reports whether actor may read the booking.
func (a Authorizer) CanView(actor domain.Actor, b *domain.Booking) bool {
	return actor.IsStaff() || actor.IsCustomer(b.CustomerID) ||
		(actor.Role == domain.RoleSpecialist && b.AssignedTo(actor.ID))
}

// CanWorkOn reports whether actor may drive detail lines and notes.
func (a Authorizer) CanWorkOn(actor domain.Actor, b *domain.Booking) bool {
	return actor.IsStaff() || (actor.Role == domain.RoleSpecialist && b.AssignedTo(actor.ID))
}
