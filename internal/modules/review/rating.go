package review

import (
	"context"

	"skincare/internal/repository"
)

// RefreshSpecialistRating recomputes the specialist's average and count
// from approved reviews and stores them. It must run in the transaction
// that approved the review.
func RefreshSpecialistRating(ctx context.Context, tx *repository.Store, specialistID int64) (repository.RatingAggregate, error) {
	agg, err := tx.Reviews.AggregateApproved(ctx, specialistID)
	if err != nil {
		return agg, err
	}
	if err := tx.Specialists.UpdateRating(ctx, specialistID, agg.Average, int(agg.Count)); err != nil {
		return agg, err
	}
	return agg, nil
}
