package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"realty_backend/database"
	"realty_backend/internal/config"
	"realty_backend/internal/email"
	"realty_backend/internal/handlers"
	"realty_backend/internal/logger"
	"realty_backend/internal/middleware"
	"realty_backend/internal/payments"
	"realty_backend/internal/repositories"
	"realty_backend/internal/restdb"
	"realty_backend/internal/routes"
	"realty_backend/internal/services"
	"realty_backend/internal/storage"
	"realty_backend/internal/validator"
	"realty_backend/internal/workers"
	"realty_backend/pkg/apperrors"
	"realty_backend/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Run boots the whole application: config, database, services, HTTP server
// and background workers. It blocks until shutdown.
func Run() error {
	config.LoadConfig()
	cfg := config.GetConfig()

	logger.Init(cfg.Server.Env)
	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
		apperrors.SetDebug(false)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	store, err := storage.NewStorage(storage.Config{
		Type:       cfg.Storage.Type,
		BasePath:   cfg.Storage.BasePath,
		BaseURL:    cfg.Storage.BaseURL,
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		UseSSL:     cfg.Storage.UseSSL,
		PublicRead: cfg.Storage.PublicRead,
	})
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	wsManager := ws.NewManager()
	go wsManager.Run()

	container := services.NewServiceContainer(services.Deps{
		DB:       db,
		Searcher: newSearcher(cfg),
		Store:    store,
		Email:    newEmailProvider(cfg),
		Gateway:  newPaymentGateway(cfg),
		Notifier: wsManager,
	})
	wsManager.SetConversationAccess(container.Chat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := container.Auth.SeedFirstAdmin(ctx); err != nil {
		logger.Warn("admin seeding failed", "error", err.Error())
	}

	go workers.NewSubscriptionWorker(container.Billing, time.Hour).Run(ctx)

	router := setupRouter(container, wsManager)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func setupRouter(container *services.ServiceContainer, wsManager *ws.Manager) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.CORSMiddleware(),
	)

	appHandlers := handlers.NewAppHandlers(container, validator.New())
	routes.RegisterRoutes(router, appHandlers, ws.NewHandler(wsManager))
	return router
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.Server.Env == "development" {
		level = gormlogger.Info
	}
	return gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
}

// newSearcher picks the public read path. With a REST endpoint configured
// the probing resolver path is used; otherwise nil falls the listing
// service back to the ORM.
func newSearcher(cfg *config.Config) services.ListingSearcher {
	if cfg.Database.RestURL == "" {
		logger.Info("listing search using ORM path")
		return nil
	}
	logger.Info("listing search using REST path", "url", cfg.Database.RestURL)
	client := restdb.New(cfg.Database.RestURL, cfg.Database.RestKey)
	return repositories.NewRestListingReader(client)
}

func newEmailProvider(cfg *config.Config) email.Provider {
	if cfg.Email.SMTPHost == "" {
		return email.NewNoopProvider()
	}
	return email.NewSMTPProvider(email.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
	})
}

func newPaymentGateway(cfg *config.Config) payments.Gateway {
	return payments.NewStripeGateway(payments.StripeConfig{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		SuccessURL:    cfg.Stripe.SuccessURL,
		CancelURL:     cfg.Stripe.CancelURL,
	})
}
