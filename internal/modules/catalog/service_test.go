package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skincare/internal/domain"
	"skincare/internal/pkg/apperror"
	"skincare/internal/testutil"
)

var (
	admin = domain.Actor{ID: 1, Role: domain.RoleAdmin}
	staff = domain.Actor{ID: 2, Role: domain.RoleStaff}
)

func TestCatalog_ServicesAndCategories(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testutil.NewStore(t), time.Minute)

	cat, err := svc.CreateCategory(ctx, admin, CategoryRequest{Name: "Facials"})
	require.NoError(t, err)

	facial, err := svc.CreateService(ctx, admin, ServiceRequest{
		Name: "Classic facial", Price: decimal.RequireFromString("79.999"), DurationMinutes: 60, CategoryIDs: []int64{cat.ID},
	})
	require.NoError(t, err)
	assert.True(t, facial.Active)
	assert.True(t, decimal.RequireFromString("80.00").Equal(facial.Price))

	list, err := svc.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	byCat, err := svc.ListServicesByCategory(ctx, cat.ID)
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.Equal(t, facial.ID, byCat[0].ID)

	// Writes flush cached lists.
	off := false
	_, err = svc.UpdateService(ctx, admin, facial.ID, ServiceRequest{
		Name: "Classic facial", Price: decimal.NewFromInt(85), DurationMinutes: 60, Active: &off,
	})
	require.NoError(t, err)

	list, err = svc.ListServices(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := svc.GetService(ctx, facial.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.True(t, decimal.NewFromInt(85).Equal(got.Price))

	_, err = svc.ListServicesByCategory(ctx, 999)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestCatalog_ServiceValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testutil.NewStore(t), time.Minute)

	tests := []struct {
		name  string
		actor domain.Actor
		req   ServiceRequest
		kind  apperror.Kind
	}{
		{"staff cannot create", staff, ServiceRequest{Name: "x", Price: decimal.NewFromInt(1), DurationMinutes: 10}, apperror.KindForbidden},
		{"zero duration", admin, ServiceRequest{Name: "x", Price: decimal.NewFromInt(1)}, apperror.KindValidation},
		{"negative price", admin, ServiceRequest{Name: "x", Price: decimal.NewFromInt(-1), DurationMinutes: 10}, apperror.KindValidation},
		{"blank name", admin, ServiceRequest{Name: "  ", Price: decimal.NewFromInt(1), DurationMinutes: 10}, apperror.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateService(ctx, tt.actor, tt.req)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}

	free, err := svc.CreateService(ctx, admin, ServiceRequest{Name: "Consultation", Price: decimal.Zero, DurationMinutes: 15})
	require.NoError(t, err)
	assert.True(t, free.Price.IsZero())
}

func TestCatalog_Specialists(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testutil.NewStore(t), time.Minute)

	a, err := svc.CreateService(ctx, admin, ServiceRequest{Name: "A", Price: decimal.NewFromInt(10), DurationMinutes: 30})
	require.NoError(t, err)
	b, err := svc.CreateService(ctx, admin, ServiceRequest{Name: "B", Price: decimal.NewFromInt(20), DurationMinutes: 45})
	require.NoError(t, err)

	_, err = svc.CreateSpecialist(ctx, admin, SpecialistRequest{Name: "Ghost", ServiceIDs: []int64{999}})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	spec, err := svc.CreateSpecialist(ctx, admin, SpecialistRequest{Name: "Anna", ServiceIDs: []int64{a.ID}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, spec.RatingAverage)
	assert.Equal(t, 0, spec.RatingCount)

	list, err := svc.ListSpecialists(ctx, SpecialistFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = svc.SetSpecialistServices(ctx, domain.Actor{ID: spec.ID, Role: domain.RoleSpecialist}, spec.ID, []int64{b.ID})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.SetSpecialistServices(ctx, staff, spec.ID, []int64{a.ID, b.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{a.ID, b.ID}, updated.ServiceIDs)

	offered, err := svc.SpecialistServices(ctx, spec.ID)
	require.NoError(t, err)
	assert.Len(t, offered, 2)

	list, err = svc.ListSpecialists(ctx, SpecialistFilter{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{a.ID, b.ID}, list[0].ServiceIDs)
}

func TestCatalog_ListSpecialistsFilters(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	svc := NewService(store, time.Minute)

	a, err := svc.CreateService(ctx, admin, ServiceRequest{Name: "A", Price: decimal.NewFromInt(10), DurationMinutes: 30})
	require.NoError(t, err)
	b, err := svc.CreateService(ctx, admin, ServiceRequest{Name: "B", Price: decimal.NewFromInt(20), DurationMinutes: 45})
	require.NoError(t, err)

	anna, err := svc.CreateSpecialist(ctx, admin, SpecialistRequest{Name: "Anna", ServiceIDs: []int64{a.ID, b.ID}})
	require.NoError(t, err)
	dana, err := svc.CreateSpecialist(ctx, admin, SpecialistRequest{Name: "Dana", ServiceIDs: []int64{a.ID}})
	require.NoError(t, err)
	_, err = svc.CreateSpecialist(ctx, admin, SpecialistRequest{Name: "Mira"})
	require.NoError(t, err)

	// Warm the cache before ratings move.
	all, err := svc.ListSpecialists(ctx, SpecialistFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	require.NoError(t, store.Specialists.UpdateRating(ctx, anna.ID, 4.5, 2))
	require.NoError(t, store.Specialists.UpdateRating(ctx, dana.ID, 3.0, 1))

	names := func(list []domain.Specialist) []string {
		out := make([]string, 0, len(list))
		for _, s := range list {
			out = append(out, s.Name)
		}
		return out
	}

	tests := []struct {
		name   string
		filter SpecialistFilter
		want   []string
	}{
		{name: "by service", filter: SpecialistFilter{ServiceID: a.ID}, want: []string{"Anna", "Dana"}},
		{name: "by other service", filter: SpecialistFilter{ServiceID: b.ID}, want: []string{"Anna"}},
		{name: "by minimum rating", filter: SpecialistFilter{MinRating: 3}, want: []string{"Anna", "Dana"}},
		{name: "rating above everyone", filter: SpecialistFilter{MinRating: 4.8}, want: []string{}},
		{name: "service and rating", filter: SpecialistFilter{ServiceID: a.ID, MinRating: 4}, want: []string{"Anna"}},
		{name: "unknown service", filter: SpecialistFilter{ServiceID: 999}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ListSpecialists(ctx, tt.filter)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, names(got))
		})
	}

	_, err = svc.ListSpecialists(ctx, SpecialistFilter{MinRating: 6})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestCatalog_UpdateSpecialist(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testutil.NewStore(t), time.Minute)

	a, err := svc.CreateService(ctx, admin, ServiceRequest{Name: "A", Price: decimal.NewFromInt(10), DurationMinutes: 30})
	require.NoError(t, err)
	b, err := svc.CreateService(ctx, admin, ServiceRequest{Name: "B", Price: decimal.NewFromInt(20), DurationMinutes: 45})
	require.NoError(t, err)
	spec, err := svc.CreateSpecialist(ctx, admin, SpecialistRequest{Name: "Anna", ServiceIDs: []int64{a.ID}})
	require.NoError(t, err)

	_, err = svc.ListSpecialists(ctx, SpecialistFilter{})
	require.NoError(t, err)

	_, err = svc.UpdateSpecialist(ctx, staff, spec.ID, SpecialistRequest{Name: "Anna K."})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.UpdateSpecialist(ctx, admin, spec.ID, SpecialistRequest{Name: "  "})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.UpdateSpecialist(ctx, admin, 999, SpecialistRequest{Name: "Nobody"})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = svc.UpdateSpecialist(ctx, admin, spec.ID, SpecialistRequest{Name: "Anna", ServiceIDs: []int64{999}})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	got, err := svc.UpdateSpecialist(ctx, admin, spec.ID, SpecialistRequest{Name: " Anna K. ", Specialization: "Peels", Bio: "Ten years"})
	require.NoError(t, err)
	assert.Equal(t, "Anna K.", got.Name)
	assert.Equal(t, "Peels", got.Specialization)
	assert.Equal(t, []int64{a.ID}, got.ServiceIDs)

	got, err = svc.UpdateSpecialist(ctx, admin, spec.ID, SpecialistRequest{Name: "Anna K.", ServiceIDs: []int64{b.ID}})
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, got.ServiceIDs)

	list, err := svc.ListSpecialists(ctx, SpecialistFilter{ServiceID: b.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Anna K.", list[0].Name)
}

func TestCatalog_UpdateServiceKeepsBookedTerms(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	svc := NewService(store, time.Minute)

	facial, err := svc.CreateService(ctx, admin, ServiceRequest{Name: "Facial", Price: decimal.RequireFromString("100.00"), DurationMinutes: 30})
	require.NoError(t, err)

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	b := &domain.Booking{
		CustomerID:    100,
		StartTime:     start,
		EndTime:       start.Add(30 * time.Minute),
		Status:        domain.BookingPending,
		TotalAmount:   facial.Price,
		PaymentStatus: domain.PaymentPending,
		Details: []domain.BookingDetail{{
			ServiceID:       facial.ID,
			Position:        1,
			Price:           facial.Price,
			DurationMinutes: facial.DurationMinutes,
			StartTime:       start,
			EndTime:         start.Add(30 * time.Minute),
			Status:          domain.DetailPending,
		}},
	}
	require.NoError(t, store.Bookings.Create(ctx, b))

	updated, err := svc.UpdateService(ctx, admin, facial.ID, ServiceRequest{Name: "Facial", Price: decimal.RequireFromString("140.00"), DurationMinutes: 60})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("140.00").Equal(updated.Price))

	got, err := store.Bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("100.00").Equal(got.TotalAmount))
	assert.True(t, got.EndTime.Equal(start.Add(30*time.Minute)))
	require.Len(t, got.Details, 1)
	assert.True(t, decimal.RequireFromString("100.00").Equal(got.Details[0].Price))
	assert.Equal(t, 30, got.Details[0].DurationMinutes)
}
