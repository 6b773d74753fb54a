package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hugh/go-crm/internal/api"
	"github.com/hugh/go-crm/internal/auth"
	"github.com/hugh/go-crm/internal/blob"
	"github.com/hugh/go-crm/internal/database"
	"github.com/hugh/go-crm/internal/metrics"
	"github.com/hugh/go-crm/pkg/config"
	"github.com/hugh/go-crm/pkg/crypto"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply schema migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db)

	logger.Info("starting crm server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
		"version", version,
	)

	if migrateOnStart {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
		logger.Info("schema migrated")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis is optional; without it rate limits are per process.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("failed to connect to Redis, continuing without it", "error", err)
			redisClient.Close()
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry(), cfg.JWT.Issuer)

	var external auth.TokenVerifier
	if cfg.OIDC.Enabled() {
		oidc, err := auth.NewOIDCVerifier(cfg.OIDC.JWKSURL, cfg.OIDC.Issuer, cfg.OIDC.Audience)
		if err != nil {
			return err
		}
		defer oidc.Close()
		external = oidc
		logger.Info("external identity provider enabled", "issuer", cfg.OIDC.Issuer)
	}

	store, err := openBlobStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	trustedProxies, err := cfg.RateLimit.TrustedProxyPrefixes()
	if err != nil {
		return err
	}

	// No mail transport: outside development accounts are verified with
	// "crm verify".
	var verification auth.VerificationSender
	if cfg.Server.IsDevelopment() {
		verification = auth.LogVerificationSender{Logger: logger}
	}

	m := metrics.New()
	m.RegisterDBPoolCollector(database.PoolStats(db))

	router := api.NewRouter(api.RouterConfig{
		DB:               db,
		Redis:            redisClient,
		Logger:           logger,
		JWTService:       jwtService,
		ExternalVerifier: external,
		Verification:     verification,
		Blob:             store,
		Metrics:          m,
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		RateLimitReqs:    cfg.RateLimit.Requests,
		RateLimitSecs:    cfg.RateLimit.WindowSeconds,
		TrustedProxies:   trustedProxies,
		MaxUploadBytes:   cfg.Storage.MaxUploadBytes(),
		SecureCookies:    !cfg.Server.IsDevelopment(),
	})
	defer router.Close()

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute, // uploads
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
	return nil
}

// openBlobStore builds the configured attachment store, sealing content with
// age when ENCRYPTION_KEY is set. The caller owns Close.
func openBlobStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (blob.Store, error) {
	var encryptor *crypto.Encryptor
	if cfg.Encryption.Key != "" {
		var err error
		encryptor, err = crypto.NewEncryptor(cfg.Encryption.Key)
		if err != nil {
			return nil, fmt.Errorf("creating encryptor: %w", err)
		}
	}

	store, err := blob.New(ctx, cfg.Storage, encryptor, logger)
	if err != nil {
		return nil, fmt.Errorf("opening blob store: %w", err)
	}
	return store, nil
}
