package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/packfinderz-backend/api/routes"
	"github.com/angelmondragon/packfinderz-backend/internal/auth"
	"github.com/angelmondragon/packfinderz-backend/internal/availability"
	"github.com/angelmondragon/packfinderz-backend/internal/bookings"
	"github.com/angelmondragon/packfinderz-backend/internal/catalog"
	"github.com/angelmondragon/packfinderz-backend/internal/coupons"
	"github.com/angelmondragon/packfinderz-backend/internal/drafts"
	"github.com/angelmondragon/packfinderz-backend/internal/payments"
	"github.com/angelmondragon/packfinderz-backend/internal/pricing"
	"github.com/angelmondragon/packfinderz-backend/internal/settings"
	"github.com/angelmondragon/packfinderz-backend/internal/users"
	"github.com/angelmondragon/packfinderz-backend/pkg/auth/session"
	"github.com/angelmondragon/packfinderz-backend/pkg/cache"
	"github.com/angelmondragon/packfinderz-backend/pkg/config"
	"github.com/angelmondragon/packfinderz-backend/pkg/db"
	"github.com/angelmondragon/packfinderz-backend/pkg/logger"
	"github.com/angelmondragon/packfinderz-backend/pkg/metrics"
	"github.com/angelmondragon/packfinderz-backend/pkg/migrate"
	"github.com/angelmondragon/packfinderz-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	userRepo := users.NewRepository(gormDB)
	catalogRepo := catalog.NewRepository(gormDB)
	slotRepo := availability.NewRepository(gormDB)
	bookingRepo := bookings.NewRepository(gormDB)
	couponRepo := coupons.NewRepository(gormDB)
	settingsRepo := settings.NewRepository(gormDB)

	authService, err := auth.NewService(userRepo, sessionManager, cfg.JWT, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	catalogCache := cache.New(redisClient, cfg.Catalog.CacheTTL)
	catalogService, err := catalog.NewService(catalogRepo, logg,
		catalog.WithCache(catalogCache, cache.IsMiss))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	availabilityService, err := availability.NewService(slotRepo, catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create availability service", err)
		os.Exit(1)
	}

	couponService, err := coupons.NewService(couponRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon service", err)
		os.Exit(1)
	}

	calculator := pricing.NewCalculator(cfg.Booking.DefaultServiceHours)

	draftService, err := drafts.NewService(redisClient, redisClient, catalogRepo, catalogRepo, couponService, calculator, cfg.Booking.DraftTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create draft service", err)
		os.Exit(1)
	}

	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)
	bookingService, err := bookings.NewService(dbClient, bookingRepo, catalogRepo, slotRepo, couponRepo, draftService, calculator, logg, bookingMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create booking service", err)
		os.Exit(1)
	}

	settingsService, err := settings.NewService(settingsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	userService, err := users.NewService(userRepo, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	paymentGuard, err := payments.NewIdempotencyGuard(redisClient, 7*24*time.Hour)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment guard", err)
		os.Exit(1)
	}
	paymentService, err := payments.NewService(bookingService, paymentGuard, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Config:         cfg,
		Logger:         logg,
		DB:             dbClient,
		Redis:          redisClient,
		Sessions:       sessionManager,
		Auth:           authService,
		Catalog:        catalogService,
		Availability:   availabilityService,
		Drafts:         draftService,
		Bookings:       bookingService,
		Coupons:        couponService,
		Settings:       settingsService,
		Users:          userService,
		Payments:       paymentService,
		HTTPMetrics:    metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
		MetricsHandler: promhttp.Handler(),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(logCtx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "graceful shutdown failed", err)
		}
	}

	logg.Info(logCtx, "api server stopped")
}
