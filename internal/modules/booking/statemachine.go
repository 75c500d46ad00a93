package booking

import (
	"fmt"
	"slices"

	"skincare/internal/domain"
)

// transitions lists the legal booking moves. Any pair not listed is
// rejected before guards or authorization are considered.
var transitions = map[domain.BookingStatus][]domain.BookingStatus{
	domain.BookingPending:    {domain.BookingConfirmed, domain.BookingCancelled},
	domain.BookingConfirmed:  {domain.BookingCheckedIn, domain.BookingNoShow, domain.BookingCancelled},
	domain.BookingCheckedIn:  {domain.BookingInProgress, domain.BookingCancelled},
	domain.BookingInProgress: {domain.BookingCompleted, domain.BookingCancelled},
}

var detailTransitions = map[domain.DetailStatus][]domain.DetailStatus{
	domain.DetailPending:    {domain.DetailInProgress, domain.DetailCancelled},
	domain.DetailInProgress: {domain.DetailCompleted, domain.DetailCancelled},
}

func CanMove(from, to domain.BookingStatus) bool {
	return slices.Contains(transitions[from], to)
}

func CanMoveDetail(from, to domain.DetailStatus) bool {
	return slices.Contains(detailTransitions[from], to)
}

func checkTransition(from, to domain.BookingStatus) error {
	if !CanMove(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

func checkDetailTransition(from, to domain.DetailStatus) error {
	if !CanMoveDetail(from, to) {
		return fmt.Errorf("%w: detail %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// paymentTransitions are the payment status moves staff may record.
var paymentTransitions = map[domain.PaymentStatus][]domain.PaymentStatus{
	domain.PaymentPending: {domain.PaymentPaid, domain.PaymentFailed},
	domain.PaymentFailed:  {domain.PaymentPending, domain.PaymentPaid},
	domain.PaymentPaid:    {domain.PaymentRefunded},
}

func checkPaymentTransition(from, to domain.PaymentStatus) error {
	if !slices.Contains(paymentTransitions[from], to) {
		return fmt.Errorf("%w: payment %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
