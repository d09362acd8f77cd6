package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"threadline/internal/auth"
	"threadline/internal/config"
	"threadline/internal/database"
	"threadline/internal/handler"
	"threadline/internal/notify"
	"threadline/internal/repository"
	"threadline/internal/router"
	"threadline/internal/service"
	"threadline/internal/shipping"
	"threadline/internal/storage"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting threadline API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool and schema
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)

	// Resolve the shipping rate table: S3 key, local file, or built-in
	rates := loadShippingRates(ctx, cfg, logger)

	// Image store: S3 when enabled, local directory otherwise
	images, err := newImageStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize image store: %w", err)
	}

	// Outbound mail
	var notifier notify.Notifier = notify.Nop{}
	if cfg.SMTP.Enabled {
		notifier = notify.NewSMTPNotifier(cfg.SMTP, logger)
	} else {
		logger.Info().Msg("SMTP disabled, notifications are dropped")
	}

	authManager := auth.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, userRepo, rates, notifier, logger)
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	userService := service.NewUserService(userRepo, authManager, notifier, logger)

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(userService, logger)
	productHandler := handler.NewProductHandler(productService, logger)
	cartHandler := handler.NewCartHandler(cartService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	adminHandler := handler.NewAdminHandler(productService, orderService, userService, images, logger)

	// Initialize router
	mux := router.New(authHandler, productHandler, cartHandler, orderHandler, adminHandler, authManager, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// loadShippingRates resolves the city rate table. A configured S3 key or
// local file wins; any load failure falls back to the built-in table so a
// bad rates document never blocks checkout.
func loadShippingRates(ctx context.Context, cfg *config.Config, logger zerolog.Logger) shipping.Rates {
	var (
		loader shipping.Loader
		path   string
	)

	switch {
	case cfg.Shipping.RatesKey != "" && cfg.S3.Enabled:
		s3Loader, err := shipping.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialise S3 rates loader, using built-in shipping table")
			return shipping.DefaultTable()
		}
		loader, path = s3Loader, cfg.Shipping.RatesKey

	case cfg.Shipping.RatesFile != "":
		loader, path = shipping.NewFileLoader(logger), cfg.Shipping.RatesFile

	default:
		logger.Info().Msg("using built-in shipping table")
		return shipping.DefaultTable()
	}

	table, err := loader.Load(ctx, path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("failed to load shipping rates, using built-in shipping table")
		return shipping.DefaultTable()
	}
	return table
}

// newImageStore picks S3 when enabled, a local uploads directory otherwise.
func newImageStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (storage.ImageStore, error) {
	if cfg.S3.Enabled {
		return storage.NewS3Store(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
	}
	return storage.NewLocalStore("uploads", "/uploads", logger)
}
