package main // Entry point package

import (
	"context"

	"github.com/joho/godotenv"    // .env bootstrap for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/poslane/pos-admin/internal/config"
	"github.com/poslane/pos-admin/internal/database"
	"github.com/poslane/pos-admin/internal/handler"
	"github.com/poslane/pos-admin/internal/logger"
	"github.com/poslane/pos-admin/internal/mailer"
	"github.com/poslane/pos-admin/internal/middleware"
	"github.com/poslane/pos-admin/internal/queue"
	"github.com/poslane/pos-admin/internal/repository"
	"github.com/poslane/pos-admin/internal/router"
	"github.com/poslane/pos-admin/internal/service"
)

func main() {
	_ = godotenv.Load() // absent .env is fine in containerized deployments

	cfg := config.Load()
	log := logger.New(cfg.Env)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	companies := repository.NewCompanyRepo(db)
	stores := repository.NewStoreRepo(db)

	// Verification mail travels through the broker: the API publishes
	// an event, the consumer below turns it into an SMTP send.
	brokerURL := queue.BrokerURL()
	notifier := queue.NewPublisher(brokerURL, log)
	auth := service.NewAuth(cfg, users, tokens, stores, notifier, log)

	if m, err := mailer.New(cfg.FrontendURL); err != nil {
		log.Warn().Err(err).Msg("mailer disabled, verification mail will queue up unconsumed")
	} else {
		go queue.StartVerificationConsumer(brokerURL, m, log)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go service.StartTokenCleanup(ctx, tokens, cfg.CleanupInterval, log)

	gate := middleware.NewGate(cfg.JWTSecret, users, router.LookupPolicy)

	// Redis-backed rate limiting on the auth endpoints; a nil client
	// degrades to a pass-through limiter.
	rdb := config.NewRedisClient()
	authLimiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, router.Handlers{
		Auth:      handler.NewAuthHandler(auth),
		Companies: handler.NewCompanyHandler(companies),
		Stores:    handler.NewStoreHandler(stores),
		Users:     handler.NewUserHandler(users, tokens),
	}, gate, authLimiter)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")

	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
