package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	accountcmd "github.com/jinyngg/account/internal/command"
	"github.com/jinyngg/account/internal/config"
	"github.com/jinyngg/account/internal/handler"
	"github.com/jinyngg/account/internal/lock"
	accountqry "github.com/jinyngg/account/internal/query"
	"github.com/jinyngg/account/internal/repository"
	"github.com/jinyngg/account/shared/events"
	"github.com/jinyngg/account/shared/logging"
	"github.com/jinyngg/account/shared/middleware"
	redisClient "github.com/jinyngg/account/shared/redis"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}
	middleware.MustInitJWTSecret()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Database connection (write store)
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}
	if err := repository.Migrate(ctx, db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	// Redis connection (leases, read models, event streams)
	redis, err := redisClient.NewClient(ctx, redisClient.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redis.Close()

	locks, err := lock.NewCoordinator(lock.NewRedisStore(redis.Client), cfg.Lock, logger)
	if err != nil {
		logger.Fatal("invalid lock configuration", zap.Error(err))
	}

	// --- CQRS wiring ---
	publisher := events.NewPublisher(redis.Client)

	users := repository.NewUserRepository(db)
	accountWrites := repository.NewAccountWriteRepository(db)
	accountReads := repository.NewAccountReadRepository(db, redis.Client, logger)
	ledgerWrites := repository.NewTransactionWriteRepository(db)
	ledgerReads := repository.NewTransactionReadRepository(db, redis.Client, logger)
	transactor := repository.NewTransactor(db)

	engine := accountcmd.NewTransactionCommandService(
		accountWrites, users, ledgerWrites, transactor, ledgerReads, publisher, logger, cfg.CancelWindow,
	)
	accounts := accountcmd.NewAccountCommandService(accountWrites, users, accountReads, publisher, logger)

	transactionHandler := handler.NewTransactionHandler(
		accountcmd.NewGuardedTransactionService(engine, locks, logger),
		accountqry.NewTransactionQueryService(ledgerReads),
	)
	accountHandler := handler.NewAccountHandler(
		accountcmd.NewGuardedAccountService(accounts, locks, logger),
		accountqry.NewAccountQueryService(accountReads),
	)

	projector := accountqry.NewAccountProjector(accountReads, logger)
	for _, stream := range []string{events.TransactionEventsStream, events.AccountEventsStream} {
		subscriber := events.NewSubscriber(redis.Client, logger, events.SubscriberConfig{
			Group:    "account-projector-group",
			Consumer: "account-projector-1",
			Stream:   stream,
			Handler:  projector.HandleEvent,
		})
		go func(stream string) {
			if err := subscriber.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("subscriber stopped", zap.String("stream", stream), zap.Error(err))
			}
		}(stream)
	}

	// Setup router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.LoggingMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "component": "postgres"})
			return
		}
		if err := redis.Healthy(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "component": "redis"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := router.Group("", middleware.AuthMiddleware())
	{
		authed.POST("/transaction/use", transactionHandler.UseBalance)
		authed.POST("/transaction/cancel", transactionHandler.CancelBalance)
		authed.GET("/transaction/:transactionId", transactionHandler.GetTransaction)

		authed.POST("/account", accountHandler.CreateAccount)
		authed.DELETE("/account", accountHandler.DeleteAccount)
		authed.GET("/account", accountHandler.ListAccounts)
		authed.GET("/account/:id", accountHandler.GetAccount)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("account service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
			cancel()
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
}
