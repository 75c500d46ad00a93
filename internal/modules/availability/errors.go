package availability

import "skincare/internal/pkg/apperror"

var (
	ErrInvalidDuration = apperror.New(apperror.KindValidation, "total duration must be positive")
	ErrInvalidDate     = apperror.New(apperror.KindValidation, "invalid date")
)

// Reason explains why a slot was rejected.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonInPast          Reason = "start time is in the past"
	ReasonTooSoon         Reason = "start time is earlier than the minimum advance notice"
	ReasonTooFar          Reason = "start time is beyond the booking horizon"
	ReasonNoSchedule      Reason = "specialist does not work on that day"
	ReasonOutsideSchedule Reason = "requested time is outside working hours"
	ReasonSpansMidnight   Reason = "requested time crosses midnight"
	ReasonOverlapsBooking Reason = "specialist already has a booking at that time"
)
