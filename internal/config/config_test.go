package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.Booking.MinAdvance)
	assert.Equal(t, 60, cfg.Booking.MaxAdvanceDays)
	assert.Equal(t, 60*24*time.Hour, cfg.Booking.MaxAdvance())
	assert.Equal(t, 15*time.Minute, cfg.Booking.GraceWindow)
	assert.Equal(t, 3*time.Second, cfg.Booking.LockTimeout)
	assert.Equal(t, 5*time.Second, cfg.Booking.NotifyTimeout)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSAllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BOOKING_BUFFER", "10m")
	t.Setenv("BOOKING_CANCEL_CUTOFF", "24h")
	t.Setenv("BUSINESS_TIMEZONE", "Europe/Paris")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, cfg.Booking.Buffer)
	assert.Equal(t, 24*time.Hour, cfg.Booking.CancellationCutoff)
	assert.True(t, cfg.Redis.Enabled())

	loc, err := cfg.Booking.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", loc.String())
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string][2]string{
		"bad timezone":         {"BUSINESS_TIMEZONE", "Mars/Olympus"},
		"zero lock timeout":    {"BOOKING_LOCK_TIMEOUT", "0s"},
		"zero horizon":         {"BOOKING_MAX_ADVANCE_DAYS", "0"},
		"negative min advance": {"BOOKING_MIN_ADVANCE", "-1h"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_ProdRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", defaultJWTSecret)

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}
