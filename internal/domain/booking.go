package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "PENDING"
	BookingConfirmed  BookingStatus = "CONFIRMED"
	BookingCheckedIn  BookingStatus = "CHECKED_IN"
	BookingInProgress BookingStatus = "IN_PROGRESS"
	BookingCompleted  BookingStatus = "COMPLETED"
	BookingCancelled  BookingStatus = "CANCELLED"
	BookingNoShow     BookingStatus = "NO_SHOW"
)

func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled || s == BookingNoShow
}

// Occupies reports whether a booking in this status holds its slot.
func (s BookingStatus) Occupies() bool {
	return s != BookingCancelled && s != BookingNoShow
}

var BookingStatuses = []BookingStatus{
	BookingPending,
	BookingConfirmed,
	BookingCheckedIn,
	BookingInProgress,
	BookingCompleted,
	BookingCancelled,
	BookingNoShow,
}

// FreeingStatuses lists the statuses whose bookings do not block a slot.
func FreeingStatuses() []string {
	out := make([]string, 0, 2)
	for _, s := range BookingStatuses {
		if !s.Occupies() {
			out = append(out, string(s))
		}
	}
	return out
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
	PaymentFailed   PaymentStatus = "FAILED"
)

type DetailStatus string

const (
	DetailPending    DetailStatus = "PENDING"
	DetailInProgress DetailStatus = "IN_PROGRESS"
	DetailCompleted  DetailStatus = "COMPLETED"
	DetailCancelled  DetailStatus = "CANCELLED"
)

func (s DetailStatus) IsDone() bool {
	return s == DetailCompleted || s == DetailCancelled
}

type Booking struct {
	ID                 int64           `json:"id"`
	CustomerID         int64           `json:"customer_id"`
	SpecialistID       *int64          `json:"specialist_id,omitempty"`
	StartTime          time.Time       `json:"start_time"`
	EndTime            time.Time       `json:"end_time"`
	Status             BookingStatus   `json:"status"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	PaymentStatus      PaymentStatus   `json:"payment_status"`
	PaymentMethod      string          `json:"payment_method,omitempty"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
	CheckedInAt        *time.Time      `json:"checked_in_at,omitempty"`
	CheckedOutAt       *time.Time      `json:"checked_out_at,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	Details            []BookingDetail `json:"details"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (b *Booking) AssignedTo(specialistID int64) bool {
	return b.SpecialistID != nil && *b.SpecialistID == specialistID
}

func (b *Booking) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}

func (b *Booking) Detail(id int64) *BookingDetail {
	for i := range b.Details {
		if b.Details[i].ID == id {
			return &b.Details[i]
		}
	}
	return nil
}

// BookingDetail is one service line of a booking. Lines run back to back
// in Position order.
type BookingDetail struct {
	ID                  int64           `json:"id"`
	BookingID           int64           `json:"booking_id"`
	ServiceID           int64           `json:"service_id"`
	Position            int             `json:"position"`
	Price               decimal.Decimal `json:"price"`
	DurationMinutes     int             `json:"duration_minutes"`
	StartTime           time.Time       `json:"start_time"`
	EndTime             time.Time       `json:"end_time"`
	Status              DetailStatus    `json:"status"`
	SpecialistNotes     string          `json:"specialist_notes,omitempty"`
	RecommendedFollowup string          `json:"recommended_followup,omitempty"`
}
