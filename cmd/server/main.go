package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-maintenance/internal/auth"
	"github.com/ukydev/fleet-maintenance/internal/config"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/handlers"
	"github.com/ukydev/fleet-maintenance/internal/invoice"
	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"github.com/ukydev/fleet-maintenance/internal/middleware"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"github.com/ukydev/fleet-maintenance/internal/notify"
	"github.com/ukydev/fleet-maintenance/internal/workorder"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger := cfg.NewLogger()

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("Server stopped")
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.WithError(err).Warn("Failed to close store")
		}
	}()

	var events notify.Publisher = notify.Nop{}
	if cfg.MQTTBrokerURL != "" {
		pub, err := notify.NewMQTTPublisher(notify.MQTTConfig{
			BrokerURL:   cfg.MQTTBrokerURL,
			ClientID:    cfg.MQTTClientID,
			TopicPrefix: cfg.MQTTTopicPrefix,
		})
		if err != nil {
			return err
		}
		defer pub.Close()
		events = pub
		logger.WithField("broker", cfg.MQTTBrokerURL).Info("Publishing events over MQTT")
	}

	if cfg.UsesDefaultSecret() {
		logger.Warn("JWT_SECRET is not set, using the development default")
	}
	authService, err := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		return err
	}
	if err := ensureAdmin(ctx, cfg, store, authService, logger); err != nil {
		return err
	}

	workOrders := workorder.NewService(store, events, logger)
	invoices := invoice.NewService(store, events, logger).WithVarianceMode(cfg.VarianceMode)

	router := handlers.Router{
		Auth:       handlers.NewAuthHandler(authService, store, logger),
		WorkOrders: handlers.NewWorkOrderHandler(workOrders),
		Invoices:   handlers.NewInvoiceHandler(invoices),
		AuthMW:     middleware.NewAuthMiddleware(authService),
		RateLimit:  middleware.NewRateLimitMiddleware(nil),
		Logger:     logger,
	}
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(log.Fields{
			"port":          cfg.Port,
			"store":         cfg.StoreDriver,
			"variance_mode": cfg.VarianceMode,
		}).Info("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, logger log.FieldLogger) (db.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Warn("Using the in-memory store, data is lost on exit")
		return db.NewMemoryStore(), nil
	}

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	store := db.NewMongoStore(client, cfg.MongoDB)
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = store.Close(ctx)
		return nil, err
	}
	logger.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")
	return store, nil
}

// ensureAdmin creates the configured admin user unless it already exists.
func ensureAdmin(ctx context.Context, cfg *config.Config, users db.UserCollection, authService *auth.Service, logger log.FieldLogger) error {
	if cfg.AdminUsername == "" {
		return nil
	}
	_, err := users.FindUserByUsername(ctx, cfg.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, maintenance.ErrNotFound) {
		return err
	}

	if err := authService.ValidatePassword(cfg.AdminPassword); err != nil {
		return err
	}
	hash, err := authService.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	if err := users.InsertUser(ctx, models.User{
		TenantID:     cfg.AdminTenantID,
		Username:     cfg.AdminUsername,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}); err != nil {
		return err
	}
	logger.WithFields(log.Fields{
		"username":  cfg.AdminUsername,
		"tenant_id": cfg.AdminTenantID,
	}).Info("Created admin user")
	return nil
}
