package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeingStatuses(t *testing.T) {
	assert.ElementsMatch(t, []string{"CANCELLED", "NO_SHOW"}, FreeingStatuses())
	for _, s := range BookingStatuses {
		assert.Equal(t, s.Occupies(), !s.IsTerminal() || s == BookingCompleted, s)
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:30", want: 9*time.Hour + 30*time.Minute},
		{in: "23:59", want: 23*time.Hour + 59*time.Minute},
		{in: "24:00", want: 24 * time.Hour},
		{in: "24:01", wantErr: true},
		{in: "9am", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
