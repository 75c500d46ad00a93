// Package notification fans booking events out to connected clients and,
// when configured, to the front desk mailbox. Delivery is best effort.
package notification

import (
	"context"
	"errors"
	"time"
)

type EventType string

const (
	EventBookingCreated       EventType = "booking.created"
	EventBookingConfirmed     EventType = "booking.confirmed"
	EventBookingCancelled     EventType = "booking.cancelled"
	EventBookingStatusChanged EventType = "booking.status_changed"
	EventSpecialistAssigned   EventType = "booking.specialist_assigned"
)

type Event struct {
	Type         EventType `json:"type"`
	BookingID    int64     `json:"booking_id"`
	CustomerID   int64     `json:"customer_id"`
	SpecialistID *int64    `json:"specialist_id,omitempty"`
	Status       string    `json:"status"`
	StartTime    time.Time `json:"start_time"`
	Reason       string    `json:"reason,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// Multi delivers to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, e Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }
