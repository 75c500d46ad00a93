package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skincare/internal/domain"
	"skincare/internal/pkg/apperror"
	"skincare/internal/repository"
	"skincare/internal/testutil"
)

func day(d int) *int { return &d }

func setup(t *testing.T) (*Service, *repository.Store, *domain.Specialist) {
	t.Helper()
	store := testutil.NewStore(t)
	spec := &domain.Specialist{Name: "Anna"}
	require.NoError(t, store.Specialists.Create(context.Background(), spec))
	return NewService(store), store, spec
}

func TestSchedule_CreateAndList(t *testing.T) {
	ctx := context.Background()
	svc, _, spec := setup(t)
	staff := domain.Actor{ID: 1, Role: domain.RoleStaff}

	_, err := svc.Create(ctx, staff, spec.ID, EntryRequest{DayOfWeek: day(1), StartTime: "13:00", EndTime: "17:00"})
	require.NoError(t, err)
	// Touching windows are allowed.
	morning, err := svc.Create(ctx, staff, spec.ID, EntryRequest{DayOfWeek: day(1), StartTime: "09:00", EndTime: "13:00"})
	require.NoError(t, err)
	assert.True(t, morning.Available)

	entries, err := svc.List(ctx, spec.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "09:00", entries[0].StartTime)
	assert.Equal(t, "13:00", entries[1].StartTime)

	_, err = svc.List(ctx, 999)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestSchedule_EndOfDay(t *testing.T) {
	ctx := context.Background()
	svc, _, spec := setup(t)
	staff := domain.Actor{ID: 1, Role: domain.RoleStaff}

	late, err := svc.Create(ctx, staff, spec.ID, EntryRequest{DayOfWeek: day(5), StartTime: "20:00", EndTime: "24:00"})
	require.NoError(t, err)
	assert.Equal(t, "24:00", late.EndTime)

	_, err = svc.Create(ctx, staff, spec.ID, EntryRequest{DayOfWeek: day(5), StartTime: "23:00", EndTime: "24:00"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.Create(ctx, staff, spec.ID, EntryRequest{DayOfWeek: day(6), StartTime: "24:00", EndTime: "24:00"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestSchedule_Rejections(t *testing.T) {
	ctx := context.Background()
	svc, _, spec := setup(t)
	staff := domain.Actor{ID: 1, Role: domain.RoleStaff}

	_, err := svc.Create(ctx, staff, spec.ID, EntryRequest{DayOfWeek: day(2), StartTime: "09:00", EndTime: "12:00"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		actor domain.Actor
		req   EntryRequest
		kind  apperror.Kind
	}{
		{"overlap", staff, EntryRequest{DayOfWeek: day(2), StartTime: "11:00", EndTime: "14:00"}, apperror.KindValidation},
		{"contained", staff, EntryRequest{DayOfWeek: day(2), StartTime: "10:00", EndTime: "11:00"}, apperror.KindValidation},
		{"start after end", staff, EntryRequest{DayOfWeek: day(3), StartTime: "12:00", EndTime: "09:00"}, apperror.KindValidation},
		{"empty window", staff, EntryRequest{DayOfWeek: day(3), StartTime: "09:00", EndTime: "09:00"}, apperror.KindValidation},
		{"bad time", staff, EntryRequest{DayOfWeek: day(3), StartTime: "9am", EndTime: "12:00"}, apperror.KindValidation},
		{"bad day", staff, EntryRequest{DayOfWeek: day(7), StartTime: "09:00", EndTime: "12:00"}, apperror.KindValidation},
		{"customer", domain.Actor{ID: 5, Role: domain.RoleCustomer}, EntryRequest{DayOfWeek: day(4), StartTime: "09:00", EndTime: "12:00"}, apperror.KindForbidden},
		{"other specialist", domain.Actor{ID: spec.ID + 1, Role: domain.RoleSpecialist}, EntryRequest{DayOfWeek: day(4), StartTime: "09:00", EndTime: "12:00"}, apperror.KindForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.actor, spec.ID, tt.req)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}

	// A different weekday is independent.
	_, err = svc.Create(ctx, staff, spec.ID, EntryRequest{DayOfWeek: day(3), StartTime: "11:00", EndTime: "14:00"})
	assert.NoError(t, err)
}

func TestSchedule_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, store, spec := setup(t)
	self := domain.Actor{ID: spec.ID, Role: domain.RoleSpecialist}

	a, err := svc.Create(ctx, self, spec.ID, EntryRequest{DayOfWeek: day(1), StartTime: "09:00", EndTime: "12:00"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, self, spec.ID, EntryRequest{DayOfWeek: day(1), StartTime: "14:00", EndTime: "18:00"})
	require.NoError(t, err)

	// Moving an entry over its own old window is fine.
	off := false
	updated, err := svc.Update(ctx, self, a.ID, EntryRequest{DayOfWeek: day(1), StartTime: "08:00", EndTime: "12:30", Available: &off})
	require.NoError(t, err)
	assert.False(t, updated.Available)

	_, err = svc.Update(ctx, self, a.ID, EntryRequest{DayOfWeek: day(1), StartTime: "08:00", EndTime: "15:00"})
	assert.ErrorIs(t, err, ErrOverlap)

	stored, err := store.Schedules.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "08:00", stored.StartTime)
	assert.Equal(t, "12:30", stored.EndTime)

	require.NoError(t, svc.Delete(ctx, self, b.ID))
	err = svc.Delete(ctx, self, b.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
