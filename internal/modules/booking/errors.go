package booking

import "skincare/internal/pkg/apperror"

var (
	ErrValidation        = apperror.New(apperror.KindValidation, "validation error")
	ErrForbidden         = apperror.New(apperror.KindForbidden, "forbidden")
	ErrInvalidTransition = apperror.New(apperror.KindInvalidTransition, "invalid status transition")
	ErrSlotUnavailable   = apperror.New(apperror.KindSlotUnavailable, "slot unavailable")
	ErrConflict          = apperror.New(apperror.KindConflict, "concurrent booking conflict, retry")
)
