package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"skincare/internal/domain"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

type reviewModel struct {
	ID            int64      `gorm:"column:id;primaryKey"`
	BookingID     int64      `gorm:"column:booking_id;not null;uniqueIndex"`
	Rating        int        `gorm:"column:rating;not null"`
	Comment       string     `gorm:"column:comment;type:text"`
	Approved      bool       `gorm:"column:approved;not null;index"`
	ApprovedAt    *time.Time `gorm:"column:approved_at"`
	AdminResponse *string    `gorm:"column:admin_response;type:text"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (reviewModel) TableName() string { return "reviews" }

func toDomainReview(m reviewModel) *domain.Review {
	return &domain.Review{
		ID:            m.ID,
		BookingID:     m.BookingID,
		Rating:        m.Rating,
		Comment:       m.Comment,
		Approved:      m.Approved,
		ApprovedAt:    utcPtr(m.ApprovedAt),
		AdminResponse: strVal(m.AdminResponse),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toReviewModel(r *domain.Review) reviewModel {
	return reviewModel{
		ID:            r.ID,
		BookingID:     r.BookingID,
		Rating:        r.Rating,
		Comment:       r.Comment,
		Approved:      r.Approved,
		ApprovedAt:    utcPtr(r.ApprovedAt),
		AdminResponse: strPtr(r.AdminResponse),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// Create fails with ErrDuplicate when the booking already has a review.
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	m := toReviewModel(rv)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err, "review", rv.BookingID)
	}
	*rv = *toDomainReview(m)
	return nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	var m reviewModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err, "review", id)
	}
	return toDomainReview(m), nil
}

func (r *ReviewRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Review, error) {
	var m reviewModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&m).Error; err != nil {
		return nil, translate(err, "review for booking", bookingID)
	}
	return toDomainReview(m), nil
}

func (r *ReviewRepository) Update(ctx context.Context, rv *domain.Review) error {
	m := toReviewModel(rv)
	res := r.db.WithContext(ctx).
		Model(&reviewModel{ID: rv.ID}).
		Select("approved", "approved_at", "admin_response", "updated_at").
		Updates(&m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "review", rv.ID)
	}
	return nil
}

type RatingAggregate struct {
	Average float64
	Count   int64
}

// AggregateApproved computes the mean and count of approved reviews whose
// booking is assigned to the specialist. No rows yields 0 and 0.
func (r *ReviewRepository) AggregateApproved(ctx context.Context, specialistID int64) (RatingAggregate, error) {
	var agg RatingAggregate
	err := r.db.WithContext(ctx).
		Table("reviews AS r").
		Select("COALESCE(CAST(AVG(r.rating) AS DOUBLE PRECISION), 0) AS average, COUNT(r.id) AS count").
		Joins("JOIN bookings b ON b.id = r.booking_id").
		Where("r.approved = ? AND b.specialist_id = ?", true, specialistID).
		Scan(&agg).Error
	return agg, err
}

func (r *ReviewRepository) ListApprovedBySpecialist(ctx context.Context, specialistID int64) ([]domain.Review, error) {
	var rows []reviewModel
	err := r.db.WithContext(ctx).
		Joins("JOIN bookings b ON b.id = reviews.booking_id").
		Where("reviews.approved = ? AND b.specialist_id = ?", true, specialistID).
		Order("reviews.created_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainReviews(rows), nil
}

func (r *ReviewRepository) ListPending(ctx context.Context) ([]domain.Review, error) {
	var rows []reviewModel
	if err := r.db.WithContext(ctx).Where("approved = ?", false).Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainReviews(rows), nil
}

func toDomainReviews(rows []reviewModel) []domain.Review {
	out := make([]domain.Review, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainReview(m))
	}
	return out
}
