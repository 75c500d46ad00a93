package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"skincare/internal/config"
	"skincare/internal/database"
	"skincare/internal/middleware"
	"skincare/internal/modules/availability"
	"skincare/internal/modules/booking"
	"skincare/internal/modules/catalog"
	"skincare/internal/modules/notification"
	"skincare/internal/modules/quiz"
	"skincare/internal/modules/review"
	"skincare/internal/modules/schedule"
	"skincare/internal/pkg/clock"
	jwtsvc "skincare/internal/pkg/jwt"
	"skincare/internal/pkg/lock"
	"skincare/internal/pkg/logger"
	"skincare/internal/pkg/metrics"
	"skincare/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	log.Logger = logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File: logger.FileConfig{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Compress:   true,
		},
	})

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	store := repository.NewStore(db)

	var locker lock.Locker = lock.NewMemoryLocker()
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis is unreachable")
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, "skincare:lock:")
		log.Info().Str("addr", cfg.Redis.Addr).Msg("using redis specialist locks")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("skincare", reg)

	loc, _ := cfg.Booking.Location()
	hub := notification.NewHub()
	defer hub.Close()
	notifiers := notification.Multi{hub}
	if cfg.SMTP.Enabled() {
		notifiers = append(notifiers, notification.NewMailer(notification.MailerConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			To:       cfg.SMTP.NotifyTo,
		}, loc))
		log.Info().Str("host", cfg.SMTP.Host).Msg("email notifications enabled")
	}

	clk := clock.Real{}
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	resolver := availability.NewResolver(store, clk, availability.Policy{
		MinAdvance: cfg.Booking.MinAdvance,
		MaxAdvance: cfg.Booking.MaxAdvance(),
		Buffer:     cfg.Booking.Buffer,
		Location:   loc,
	})

	catalogHandler := catalog.NewHandler(catalog.NewService(store, cfg.CatalogCacheTTL))
	scheduleHandler := schedule.NewHandler(schedule.NewService(store))
	availabilityHandler := availability.NewHandler(resolver)
	bookingHandler := booking.NewHandler(booking.NewService(store, resolver, locker, clk, booking.Config{
		GraceWindow:        cfg.Booking.GraceWindow,
		CancellationCutoff: cfg.Booking.CancellationCutoff,
		LockTimeout:        cfg.Booking.LockTimeout,
		NotifyTimeout:      cfg.Booking.NotifyTimeout,
	}, notifiers, m))
	reviewHandler := review.NewHandler(review.NewService(store, locker, cfg.Booking.LockTimeout, clk, m))
	quizHandler := quiz.NewHandler(quiz.NewService(store, m))
	wsHandler := notification.NewWSHandler(hub, j, cfg.CORSAllowedOrigins)

	if cfg.AppEnv == "prod" || cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(log.Logger),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	r.GET("/ws/bookings", wsHandler.HandleWebSocket)

	v1 := r.Group("/api/v1")
	if cfg.RateLimitRPS > 0 {
		v1.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).RateLimit())
	}

	public := v1.Group("", middleware.OptionalJWTAuth(j))
	protected := v1.Group("", middleware.JWTAuth(j))

	catalogHandler.RegisterRoutes(public, protected)
	scheduleHandler.RegisterRoutes(public, protected)
	availabilityHandler.RegisterRoutes(public)
	reviewHandler.RegisterRoutes(public, protected)
	quizHandler.RegisterRoutes(public, protected)
	bookingHandler.RegisterRoutes(protected)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.AppEnv).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server stopped")
}
