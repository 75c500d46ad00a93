package booking

import (
	"time"

	"skincare/internal/domain"
)

type CreateBookingRequest struct {
	// CustomerID is taken from the token for customers; staff book on
	// behalf of a customer and must set it.
	CustomerID    int64     `json:"customer_id"`
	SpecialistID  *int64    `json:"specialist_id" validate:"omitempty,gt=0"`
	StartTime     time.Time `json:"start_time" validate:"required"`
	ServiceIDs    []int64   `json:"service_ids" validate:"required,min=1,dive,gt=0"`
	Notes         string    `json:"notes" validate:"max=2000"`
	PaymentMethod string    `json:"payment_method" validate:"max=50"`
}

type TransitionRequest struct {
	Status domain.BookingStatus `json:"status" validate:"required"`
	Reason string               `json:"reason" validate:"max=1000"`
}

type AssignSpecialistRequest struct {
	SpecialistID int64 `json:"specialist_id" validate:"required,gt=0"`
}

type DetailTransitionRequest struct {
	Status domain.DetailStatus `json:"status" validate:"required"`
}

type DetailNotesRequest struct {
	SpecialistNotes     *string `json:"specialist_notes" validate:"omitempty,max=4000"`
	RecommendedFollowup *string `json:"recommended_followup" validate:"omitempty,max=4000"`
}

type PaymentStatusRequest struct {
	Status domain.PaymentStatus `json:"status" validate:"required"`
}
