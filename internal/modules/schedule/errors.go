package schedule

import "skincare/internal/pkg/apperror"

var (
	ErrValidation = apperror.New(apperror.KindValidation, "validation error")
	ErrForbidden  = apperror.New(apperror.KindForbidden, "forbidden")
	ErrOverlap    = apperror.New(apperror.KindValidation, "schedule entries overlap")
)
