package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"skincare/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID                 int64                `gorm:"column:id;primaryKey"`
	CustomerID         int64                `gorm:"column:customer_id;not null;index"`
	SpecialistID       *int64               `gorm:"column:specialist_id;index:idx_bookings_specialist_start"`
	StartTime          time.Time            `gorm:"column:start_time;not null;index:idx_bookings_specialist_start"`
	EndTime            time.Time            `gorm:"column:end_time;not null"`
	Status             string               `gorm:"column:status;type:varchar(20);not null;index"`
	TotalAmount        decimal.Decimal      `gorm:"column:total_amount;type:numeric(10,2);not null"`
	PaymentStatus      string               `gorm:"column:payment_status;type:varchar(20);not null"`
	PaymentMethod      string               `gorm:"column:payment_method"`
	CancellationReason *string              `gorm:"column:cancellation_reason;type:text"`
	CheckedInAt        *time.Time           `gorm:"column:checked_in_at"`
	CheckedOutAt       *time.Time           `gorm:"column:checked_out_at"`
	Notes              *string              `gorm:"column:notes;type:text"`
	CreatedAt          time.Time            `gorm:"column:created_at"`
	UpdatedAt          time.Time            `gorm:"column:updated_at"`
	Details            []bookingDetailModel `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
}

func (bookingModel) TableName() string { return "bookings" }

type bookingDetailModel struct {
	ID                  int64           `gorm:"column:id;primaryKey"`
	BookingID           int64           `gorm:"column:booking_id;not null;index"`
	ServiceID           int64           `gorm:"column:service_id;not null"`
	Position            int             `gorm:"column:position;not null"`
	Price               decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	DurationMinutes     int             `gorm:"column:duration_minutes;not null"`
	StartTime           time.Time       `gorm:"column:start_time;not null"`
	EndTime             time.Time       `gorm:"column:end_time;not null"`
	Status              string          `gorm:"column:status;type:varchar(20);not null"`
	SpecialistNotes     string          `gorm:"column:specialist_notes;type:text"`
	RecommendedFollowup string          `gorm:"column:recommended_followup;type:text"`
}

func (bookingDetailModel) TableName() string { return "booking_details" }

// Times are stored in UTC so that SQLite's textual comparison agrees with
// chronological order.
func utc(t time.Time) time.Time { return t.UTC() }

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toDomainBooking(m bookingModel) *domain.Booking {
	b := &domain.Booking{
		ID:                 m.ID,
		CustomerID:         m.CustomerID,
		SpecialistID:       m.SpecialistID,
		StartTime:          utc(m.StartTime),
		EndTime:            utc(m.EndTime),
		Status:             domain.BookingStatus(m.Status),
		TotalAmount:        m.TotalAmount,
		PaymentStatus:      domain.PaymentStatus(m.PaymentStatus),
		PaymentMethod:      m.PaymentMethod,
		CancellationReason: strVal(m.CancellationReason),
		CheckedInAt:        utcPtr(m.CheckedInAt),
		CheckedOutAt:       utcPtr(m.CheckedOutAt),
		Notes:              strVal(m.Notes),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
		Details:            make([]domain.BookingDetail, 0, len(m.Details)),
	}
	for _, d := range m.Details {
		b.Details = append(b.Details, toDomainBookingDetail(d))
	}
	return b
}

func toDomainBookingDetail(m bookingDetailModel) domain.BookingDetail {
	return domain.BookingDetail{
		ID:                  m.ID,
		BookingID:           m.BookingID,
		ServiceID:           m.ServiceID,
		Position:            m.Position,
		Price:               m.Price,
		DurationMinutes:     m.DurationMinutes,
		StartTime:           utc(m.StartTime),
		EndTime:             utc(m.EndTime),
		Status:              domain.DetailStatus(m.Status),
		SpecialistNotes:     m.SpecialistNotes,
		RecommendedFollowup: m.RecommendedFollowup,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	m := bookingModel{
		ID:                 b.ID,
		CustomerID:         b.CustomerID,
		SpecialistID:       b.SpecialistID,
		StartTime:          utc(b.StartTime),
		EndTime:            utc(b.EndTime),
		Status:             string(b.Status),
		TotalAmount:        b.TotalAmount,
		PaymentStatus:      string(b.PaymentStatus),
		PaymentMethod:      b.PaymentMethod,
		CancellationReason: strPtr(b.CancellationReason),
		CheckedInAt:        utcPtr(b.CheckedInAt),
		CheckedOutAt:       utcPtr(b.CheckedOutAt),
		Notes:              strPtr(b.Notes),
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
	for i := range b.Details {
		m.Details = append(m.Details, toBookingDetailModel(&b.Details[i]))
	}
	return m
}

func toBookingDetailModel(d *domain.BookingDetail) bookingDetailModel {
	return bookingDetailModel{
		ID:                  d.ID,
		BookingID:           d.BookingID,
		ServiceID:           d.ServiceID,
		Position:            d.Position,
		Price:               d.Price,
		DurationMinutes:     d.DurationMinutes,
		StartTime:           utc(d.StartTime),
		EndTime:             utc(d.EndTime),
		Status:              string(d.Status),
		SpecialistNotes:     d.SpecialistNotes,
		RecommendedFollowup: d.RecommendedFollowup,
	}
}

func orderedDetails(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

// Create inserts the booking together with its detail lines.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetForUpdate row-locks the booking for the rest of the transaction.
func (r *BookingRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *BookingRepository) get(q *gorm.DB, id int64) (*domain.Booking, error) {
	var m bookingModel
	if err := q.Preload("Details", orderedDetails).First(&m, id).Error; err != nil {
		return nil, translate(err, "booking", id)
	}
	return toDomainBooking(m), nil
}

// Update writes the booking's mutable columns and every detail line's
// mutable columns.
func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	db := r.db.WithContext(ctx)

	res := db.Model(&bookingModel{ID: b.ID}).
		Select("specialist_id", "status", "payment_status", "payment_method", "cancellation_reason",
			"checked_in_at", "checked_out_at", "notes", "updated_at").
		Updates(&m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "booking", b.ID)
	}

	for i := range b.Details {
		if err := r.UpdateDetail(ctx, &b.Details[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *BookingRepository) UpdateDetail(ctx context.Context, d *domain.BookingDetail) error {
	m := toBookingDetailModel(d)
	res := r.db.WithContext(ctx).
		Model(&bookingDetailModel{ID: d.ID}).
		Select("status", "specialist_notes", "recommended_followup").
		Updates(&m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "booking detail", d.ID)
	}
	return nil
}

func (r *BookingRepository) activeForSpecialist(ctx context.Context, specialistID int64, start, end time.Time) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("specialist_id = ? AND status NOT IN ?", specialistID, domain.FreeingStatuses()).
		Where("start_time < ? AND end_time > ?", utc(end), utc(start))
}

// HasOverlap reports whether an occupying booking of the specialist
// intersects [start, end). Touching intervals do not overlap.
func (r *BookingRepository) HasOverlap(ctx context.Context, specialistID int64, start, end time.Time, excludeBookingID int64) (bool, error) {
	q := r.activeForSpecialist(ctx, specialistID, start, end)
	if excludeBookingID > 0 {
		q = q.Where("id <> ?", excludeBookingID)
	}
	var cnt int64
	if err := q.Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *BookingRepository) ListActiveForSpecialist(ctx context.Context, specialistID int64, from, to time.Time) ([]domain.Booking, error) {
	var rows []bookingModel
	if err := r.activeForSpecialist(ctx, specialistID, from, to).Order("start_time").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainBookings(rows), nil
}

func (r *BookingRepository) ListByCustomer(ctx context.Context, customerID int64, limit, offset int) ([]domain.Booking, error) {
	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Preload("Details", orderedDetails).
		Where("customer_id = ?", customerID).
		Order("start_time desc").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainBookings(rows), nil
}

func (r *BookingRepository) ListBySpecialist(ctx context.Context, specialistID int64, from, to time.Time) ([]domain.Booking, error) {
	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Preload("Details", orderedDetails).
		Where("specialist_id = ? AND start_time < ? AND end_time > ?", specialistID, utc(to), utc(from)).
		Order("start_time").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainBookings(rows), nil
}

func toDomainBookings(rows []bookingModel) []domain.Booking {
	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out
}
