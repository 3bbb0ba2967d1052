package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tesoro/internal/config"
	"tesoro/internal/database"
	"tesoro/internal/logger"
	"tesoro/internal/mailer"
	"tesoro/internal/middleware"
	"tesoro/internal/server"
	"tesoro/internal/services"
	"tesoro/internal/session"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// @title           Tesoro API
// @version         1.0
// @description     Tesoro is a personal finance API for tracking accounts, transactions, budgets, debts and savings goals.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.InitWithOptions(logger.Options{Env: appConfig.Env, File: appConfig.LogFile})
	defer logger.Sync()
	log := logger.Get()

	if appConfig.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create database manager
	dbManager, err := database.NewManager(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	notifier, closeNotifier, err := newNotifier(appConfig)
	if err != nil {
		return err
	}
	defer closeNotifier()

	store, err := newSessionStore(ctx, appConfig)
	if err != nil {
		return err
	}

	tokens := middleware.NewTokenManager(appConfig.JWTSecret, appConfig.JWTExpirationDur, store)

	// Initialize services
	db := dbManager.DB()
	accountService := services.NewAccountService(db)
	router := server.New(server.Deps{
		Config: appConfig,
		Tokens: tokens,
		Services: server.Services{
			User:        services.NewUserService(db, notifier, appConfig.ActivationTokenTTL),
			Auth:        services.NewAuthService(db, tokens),
			Account:     accountService,
			Category:    services.NewCategoryService(db),
			Transaction: services.NewTransactionService(db, accountService),
			Budget:      services.NewBudgetService(db),
			Debt:        services.NewDebtService(db),
			Goal:        services.NewGoalService(db),
			Audit:       services.NewAuditService(db),
		},
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting Tesoro backend server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newNotifier picks the activation mail transport: the AMQP queue when
// configured, direct SMTP otherwise, and a logging fallback for development.
func newNotifier(cfg *config.Config) (mailer.Notifier, func(), error) {
	log := logger.Get()

	if cfg.AMQPURL != "" {
		queue, err := mailer.NewQueue(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mail queue: %w", err)
		}
		log.Infow("activation emails are queued", "queue", cfg.AMQPQueue)
		return queue, func() {
			if err := queue.Close(); err != nil {
				log.Warnf("mail queue close error: %v", err)
			}
		}, nil
	}

	if cfg.SMTPHost != "" {
		log.Infow("activation emails are sent over SMTP", "host", cfg.SMTPHost)
		return mailer.NewSMTPSender(smtpConfig(cfg)), func() {}, nil
	}

	log.Warn("No mail transport configured, activation links will only be logged")
	return mailer.LogNotifier{BaseURL: cfg.FrontendURL}, func() {}, nil
}

// newSessionStore uses Redis when an address is configured. The in-memory
// store only revokes sessions for this process.
func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	if cfg.RedisAddress == "" {
		logger.Get().Warn("REDIS_ADDRESS not set, revoked sessions are kept in memory")
		return session.NewMemoryStore(), nil
	}
	store, err := session.NewRedisStore(ctx, session.RedisOptions{
		Address:  cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session store: %w", err)
	}
	return store, nil
}

func smtpConfig(cfg *config.Config) mailer.SMTPConfig {
	return mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.EmailFrom,
		BaseURL:  cfg.FrontendURL,
		TokenTTL: cfg.ActivationTokenTTL,
	}
}
