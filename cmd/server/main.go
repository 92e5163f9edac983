package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"credit-app/internal/adapters/cache"
	"credit-app/internal/adapters/http/handlers"
	"credit-app/internal/adapters/http/middleware"
	"credit-app/internal/adapters/http/routes"
	"credit-app/internal/adapters/messaging"
	"credit-app/internal/adapters/persistence/models"
	"credit-app/internal/adapters/persistence/repositories"
	"credit-app/internal/config"
	"credit-app/internal/core/services"
	"credit-app/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	_ "credit-app/docs" // Swagger docs
)

// @title Credit App API
// @version 1.0
// @description Loan application API with user, verifier and admin roles.

// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name token

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer config.CloseDatabase(db)

	if err := models.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to auto migrate")
	}
	log.Info().Msg("database migration completed")

	userRepo := repositories.NewUserRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	transitionRepo := repositories.NewLoanTransitionRepository(db)
	revokedRepo := repositories.NewRevokedSessionRepository(db)

	config.NewSeeder(userRepo, cfg).Run(context.Background())

	checks := map[string]handlers.HealthCheck{
		"database": func(context.Context) error { return config.HealthCheck(db) },
	}

	// Session revocation: redis when configured, the database otherwise
	var revoker services.SessionRevoker
	var cronService *services.CronService
	if cfg.Redis.Enabled() {
		rdb, err := config.ConnectRedis(context.Background(), cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer closeRedis(rdb)

		revoker = cache.NewRedisRevocationList(rdb)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		revoker = services.NewRepositoryRevoker(revokedRepo)

		cronService = services.NewCronService(revokedRepo, cfg.Cron.RevocationPurgeSchedule)
		if err := cronService.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start cron service")
		}
		defer cronService.Stop()
	}

	// Loan events: always logged, published when a broker is configured
	notifier := services.NewNotificationService(log.Logger, services.NewLogNotifier(log.Logger))
	if cfg.AMQP.Enabled() {
		publisher, err := messaging.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to message broker")
		}
		defer publisher.Close()
		notifier.Add(publisher)
	}

	userService := services.NewUserService(userRepo, cfg)
	svc := &routes.Services{
		Auth:      services.NewAuthService(userService, userRepo, revoker, cfg),
		Users:     userService,
		Loans:     services.NewLoanService(loanRepo, transitionRepo, userRepo, notifier),
		Dashboard: services.NewDashboardService(loanRepo, userRepo),
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Credit App API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	middleware.Setup(app, cfg)
	routes.Setup(app, cfg, svc, handlers.NewHealthHandler(cfg.AppMode, checks))

	go gracefulShutdown(app)

	log.Info().Str("port", cfg.Port).Str("mode", cfg.AppMode).Msg("server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
	}
}

// gracefulShutdown stops accepting requests on SIGINT or SIGTERM.
// Deferred closers in main run once Listen returns.
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}

func closeRedis(rdb *redis.Client) {
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close redis")
	}
}
