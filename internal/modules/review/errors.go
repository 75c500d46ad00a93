package review

import "skincare/internal/pkg/apperror"

var (
	ErrValidation       = apperror.New(apperror.KindValidation, "validation error")
	ErrForbidden        = apperror.New(apperror.KindForbidden, "forbidden")
	ErrReviewNotAllowed = apperror.New(apperror.KindValidation, "only completed bookings can be reviewed")
	ErrAlreadyReviewed  = apperror.New(apperror.KindValidation, "booking already has a review")
)
