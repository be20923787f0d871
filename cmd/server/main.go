package main // Entry point package

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/coach-session-scheduler/internal/config"
	"github.com/iliyamo/coach-session-scheduler/internal/database"
	"github.com/iliyamo/coach-session-scheduler/internal/handler"
	"github.com/iliyamo/coach-session-scheduler/internal/logger"
	"github.com/iliyamo/coach-session-scheduler/internal/metrics"
	appmw "github.com/iliyamo/coach-session-scheduler/internal/middleware"
	"github.com/iliyamo/coach-session-scheduler/internal/queue"
	"github.com/iliyamo/coach-session-scheduler/internal/repository"
	"github.com/iliyamo/coach-session-scheduler/internal/router"
	queue_publisher "github.com/iliyamo/coach-session-scheduler/internal/service"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Migrate(migrateCtx, db); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}

	metrics.Register()

	// Redis is optional. A nil client disables caching and rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unreachable, cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	slots := repository.NewSlotRepo(db)
	bookings := repository.NewBookingRepo(db)

	bookingHandler := handler.NewBookingHandler(users, slots, bookings, log)
	bookingHandler.PublishEvent = queue_publisher.PublishSessionBooked

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(appmw.RateLimit(config.LoadRateLimitConfig(), rdb, log))
	e.Use(appmw.ResponseCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e, router.Handlers{
		Users:        handler.NewUserHandler(users),
		Availability: handler.NewAvailabilityHandler(users, slots, log),
		Bookings:     bookingHandler,
	})

	// Consumes session.booked events in the background; reconnects on its
	// own if the broker drops.
	go queue.StartSessionConsumer(log)

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
