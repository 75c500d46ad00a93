package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultJWTSecret = "change-me-jwt-secret"
	defaultTimeZone  = "UTC"
)

type Config struct {
	AppEnv      string
	HTTPPort    string
	DatabaseURL string
	JWTSecret   string
	JWTTTL      time.Duration

	Redis   RedisConfig
	Log     LogConfig
	Booking BookingPolicy
	SMTP    SMTPConfig

	CatalogCacheTTL    time.Duration
	RateLimitRPS       float64
	RateLimitBurst     int
	CORSAllowedOrigins []string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (r RedisConfig) Enabled() bool { return r.Addr != "" }

type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// BookingPolicy carries the tunable booking rules.
type BookingPolicy struct {
	MinAdvance         time.Duration
	MaxAdvanceDays     int
	GraceWindow        time.Duration
	CancellationCutoff time.Duration
	Buffer             time.Duration
	LockTimeout        time.Duration
	NotifyTimeout      time.Duration
	TimeZone           string
}

func (p BookingPolicy) MaxAdvance() time.Duration {
	return time.Duration(p.MaxAdvanceDays) * 24 * time.Hour
}

func (p BookingPolicy) Location() (*time.Location, error) {
	if p.TimeZone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(p.TimeZone)
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	NotifyTo string
}

func (s SMTPConfig) Enabled() bool { return s.Host != "" && s.NotifyTo != "" }

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("DATABASE_URL", "skincare.db")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_TTL", "24h")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 5)
	v.SetDefault("LOG_MAX_AGE_DAYS", 30)

	v.SetDefault("BOOKING_MIN_ADVANCE", "1h")
	v.SetDefault("BOOKING_MAX_ADVANCE_DAYS", 60)
	v.SetDefault("BOOKING_GRACE_WINDOW", "15m")
	v.SetDefault("BOOKING_CANCEL_CUTOFF", "0s")
	v.SetDefault("BOOKING_BUFFER", "0s")
	v.SetDefault("BOOKING_LOCK_TIMEOUT", "3s")
	v.SetDefault("BOOKING_NOTIFY_TIMEOUT", "5s")
	v.SetDefault("BUSINESS_TIMEZONE", defaultTimeZone)

	v.SetDefault("CATALOG_CACHE_TTL", "5m")
	v.SetDefault("RATE_LIMIT_RPS", 20.0)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")

	v.SetDefault("SMTP_PORT", 587)
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		AppEnv:      strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		HTTPPort:    v.GetString("HTTP_PORT"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		JWTSecret:   strings.TrimSpace(v.GetString("JWT_SECRET")),
		JWTTTL:      v.GetDuration("JWT_TTL"),
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Log: LogConfig{
			Level:      v.GetString("LOG_LEVEL"),
			Format:     v.GetString("LOG_FORMAT"),
			File:       v.GetString("LOG_FILE"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
		},
		Booking: BookingPolicy{
			MinAdvance:         v.GetDuration("BOOKING_MIN_ADVANCE"),
			MaxAdvanceDays:     v.GetInt("BOOKING_MAX_ADVANCE_DAYS"),
			GraceWindow:        v.GetDuration("BOOKING_GRACE_WINDOW"),
			CancellationCutoff: v.GetDuration("BOOKING_CANCEL_CUTOFF"),
			Buffer:             v.GetDuration("BOOKING_BUFFER"),
			LockTimeout:        v.GetDuration("BOOKING_LOCK_TIMEOUT"),
			NotifyTimeout:      v.GetDuration("BOOKING_NOTIFY_TIMEOUT"),
			TimeZone:           v.GetString("BUSINESS_TIMEZONE"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASS"),
			From:     v.GetString("SMTP_FROM"),
			NotifyTo: v.GetString("SMTP_NOTIFY_TO"),
		},
		CatalogCacheTTL:    v.GetDuration("CATALOG_CACHE_TTL"),
		RateLimitRPS:       v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:     v.GetInt("RATE_LIMIT_BURST"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.Booking.MinAdvance < 0 {
		return fmt.Errorf("BOOKING_MIN_ADVANCE must be >= 0")
	}
	if cfg.Booking.MaxAdvanceDays <= 0 {
		return fmt.Errorf("BOOKING_MAX_ADVANCE_DAYS must be > 0")
	}
	if cfg.Booking.GraceWindow < 0 || cfg.Booking.CancellationCutoff < 0 || cfg.Booking.Buffer < 0 {
		return fmt.Errorf("booking grace, cutoff and buffer must be >= 0")
	}
	if cfg.Booking.LockTimeout <= 0 {
		return fmt.Errorf("BOOKING_LOCK_TIMEOUT must be > 0")
	}
	if cfg.Booking.NotifyTimeout <= 0 {
		return fmt.Errorf("BOOKING_NOTIFY_TIMEOUT must be > 0")
	}
	if _, err := cfg.Booking.Location(); err != nil {
		return fmt.Errorf("invalid BUSINESS_TIMEZONE %q: %w", cfg.Booking.TimeZone, err)
	}
	if cfg.RateLimitRPS < 0 || cfg.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit values must be >= 0")
	}

	if isProdLike(cfg.AppEnv) && isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
