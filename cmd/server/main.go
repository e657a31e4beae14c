package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opengallery/gallery/internal/config"
	"github.com/opengallery/gallery/internal/images"
	"github.com/opengallery/gallery/internal/middleware"
	"github.com/opengallery/gallery/internal/secrets"
	"github.com/opengallery/gallery/internal/storage"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	slog.Info("configuration loaded successfully",
		"store_driver", cfg.Store.Driver,
		"s3_bucket", cfg.Storage.S3Bucket,
		"server_port", cfg.Server.Port,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := hydrateSecrets(ctx, cfg); err != nil {
		cancel()
		log.Fatalf("failed to load secrets: %v", err)
	}

	// Initialize the record store and object storage once, before serving
	// any traffic.
	repo, closeRepo, err := images.NewRepositoryFromConfig(ctx, cfg)
	if err != nil {
		cancel()
		log.Fatalf("failed to initialize record store: %v", err)
	}
	defer func() {
		if err := closeRepo(context.Background()); err != nil {
			slog.Error("failed to close record store", "error", err)
		}
	}()

	store, err := storage.NewFromConfig(ctx, cfg.Storage)
	cancel()
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	svc := images.NewService(repo, store, cfg.Storage.ReadURLTTL, cfg.Storage.WriteURLTTL, cfg.Server.ServiceURL)
	uploads := images.NewUploadService(repo, store, cfg.Upload.Workers)

	// Set up HTTP routes
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(&cfg.CORS))
	images.NewHandler(svc, uploads).Register(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		slog.Info("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	// Wait for interrupt signal
	<-quit
	slog.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	} else {
		slog.Info("server gracefully stopped")
	}
}

// hydrateSecrets fills connection credentials from AWS Secrets Manager when
// the configuration names secrets for them.
func hydrateSecrets(ctx context.Context, cfg *config.Config) error {
	if cfg.Secrets.StoreSecretName == "" && cfg.Secrets.S3SecretName == "" {
		return nil
	}

	client, err := secrets.New(ctx, cfg.Secrets.Region)
	if err != nil {
		return err
	}

	if name := cfg.Secrets.StoreSecretName; name != "" {
		var s secrets.StoreSecret
		if err := client.GetJSON(ctx, name, &s); err != nil {
			return err
		}
		cfg.Store.MongoURI = s.ConnectionString
		if s.DatabaseName != "" {
			cfg.Store.MongoDatabase = s.DatabaseName
		}
		slog.Info("record store credentials loaded from secrets manager", "secret", name)
	}

	if name := cfg.Secrets.S3SecretName; name != "" {
		var s secrets.S3Secret
		if err := client.GetJSON(ctx, name, &s); err != nil {
			return err
		}
		cfg.Storage.S3AccessKey = s.AccessKey
		cfg.Storage.S3SecretKey = s.SecretKey
		if s.Region != "" {
			cfg.Storage.S3Region = s.Region
		}
		slog.Info("object storage credentials loaded from secrets manager", "secret", name)
	}

	return nil
}
