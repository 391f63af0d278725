// Package main is the entry point for the CurioLab API server.
//
// CurioLab serves skill-scoped educational articles for curious kids: a topic
// fans out into five educational dimensions, each dimension becomes a cached
// article at one of three depth tiers, and every article can be narrated.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: safety gating, cache keys, readability, progress merging
// - Application: use case orchestration (Commands/Queries)
// - Infrastructure: filesystem artifact cache, PostgreSQL, Redis, OpenAI
// - Interface: REST API handlers
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

	"github.com/curiolab/curio-hub/config"
	"github.com/curiolab/curio-hub/internal/application/command"
	"github.com/curiolab/curio-hub/internal/application/query"
	"github.com/curiolab/curio-hub/internal/domain/progress"
	"github.com/curiolab/curio-hub/internal/infrastructure/auth"
	"github.com/curiolab/curio-hub/internal/infrastructure/external/openai"
	"github.com/curiolab/curio-hub/internal/infrastructure/persistence/filestore"
	"github.com/curiolab/curio-hub/internal/infrastructure/persistence/postgres"
	"github.com/curiolab/curio-hub/internal/infrastructure/persistence/redis"
	"github.com/curiolab/curio-hub/internal/infrastructure/service"
	httpserver "github.com/curiolab/curio-hub/internal/interface/http"
	"github.com/curiolab/curio-hub/internal/interface/http/handlers"
	"github.com/curiolab/curio-hub/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	slogLog := setupSlog(cfg)

	log.Info("starting CurioLab API",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Bool("debug", cfg.App.Debug),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ARTIFACT CACHE (filesystem)
	// ─────────────────────────────────────────────────────────────────────────
	store, err := filestore.New(cfg.Cache.RootDir)
	if err != nil {
		return fmt.Errorf("failed to open artifact cache: %w", err)
	}
	log.Info("artifact cache ready", logger.String("root", store.Root()))

	// ─────────────────────────────────────────────────────────────────────────
	// 4. DATABASE (PostgreSQL, optional outside production)
	// ─────────────────────────────────────────────────────────────────────────
	var dbConn *postgres.Connection
	var progressRepo *postgres.ProgressRepository
	var userRepo *postgres.UserRepository

	if cfg.Database.URL != "" {
		log.Info("connecting to database...")
		dbConn, err = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			log.Info("closing database connection...")
			dbConn.Close()
		}()

		log.Info("running database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		progressRepo = postgres.NewProgressRepository(dbConn)
		userRepo = postgres.NewUserRepository(dbConn)
		log.Info("database ready")
	} else {
		log.Warn("DATABASE_URL not set, progress tracking and accounts disabled")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS (dimension cache, optional)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	dimensionCache := redis.NewDisabledDimensionCache()

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, dimension caching disabled", logger.Err(err))
		} else {
			defer redisCache.Close()
			dimensionCache = redis.NewDimensionCache(redisCache, cfg.Redis.DimensionTTL)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. OPENAI CLIENT (generation + speech synthesis)
	// ─────────────────────────────────────────────────────────────────────────
	providerCfg := openai.DefaultConfig()
	providerCfg.APIKey = cfg.OpenAI.APIKey
	providerCfg.BaseURL = cfg.OpenAI.BaseURL
	providerCfg.Model = cfg.OpenAI.Model
	providerCfg.TTSModel = cfg.OpenAI.TTSModel
	providerCfg.TTSVoice = cfg.OpenAI.TTSVoice
	providerCfg.RequestTimeout = cfg.OpenAI.RequestTimeout
	providerCfg.MaxRetries = cfg.OpenAI.MaxRetries
	providerCfg.RetryBaseDelay = cfg.OpenAI.RetryBaseDelay
	providerCfg.RetryMaxDelay = cfg.OpenAI.RetryMaxDelay
	providerCfg.RateLimit.RequestsPerMinute = cfg.OpenAI.RateLimit
	providerCfg.RateLimit.BurstSize = cfg.OpenAI.RateLimitBurst

	provider, err := openai.NewClient(providerCfg, slogLog)
	if err != nil {
		return fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. AUTH (bcrypt + JWT)
	// ─────────────────────────────────────────────────────────────────────────
	var tokenManager *auth.JWTManager
	if cfg.Auth.JWTSecret != "" {
		tokenManager = auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	} else {
		log.Warn("AUTH_JWT_SECRET not set, API runs unauthenticated")
	}
	hasher := auth.NewBcryptHasher(0)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	// The postgres repositories may be absent; the handlers treat a nil
	// repository as disabled bookkeeping.
	var progressPort = progressRepoOrNil(progressRepo)

	dimensionsCmd := command.NewGenerateDimensionsHandler(provider, dimensionCache, log)
	contentCmd := command.NewGenerateContentHandler(provider, store, progressPort, log)
	audioCmd := command.NewSynthesizeAudioHandler(provider, store, progressPort, log)

	var progressCmd *command.RecordProgressHandler
	var progressQuery *query.GetProgressHandler
	var registerCmd *command.RegisterUserHandler
	var loginCmd *command.LoginUserHandler

	if progressRepo != nil {
		progressCmd = command.NewRecordProgressHandler(progressRepo, log)
		progressQuery = query.NewGetProgressHandler(progressRepo)
	}
	if userRepo != nil && tokenManager != nil {
		registerCmd = command.NewRegisterUserHandler(userRepo, hasher, tokenManager, log)
		loginCmd = command.NewLoginUserHandler(userRepo, hasher, tokenManager, log)
	}

	statsQuery := query.NewGetCacheStatsHandler(store)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	health := handlers.NewCompositeHealthChecker(0)
	health.AddCheck("cache", func(ctx context.Context) error {
		_, err := store.Stats(ctx)
		return err
	})
	if dbConn != nil {
		health.AddCheck("database", dbConn.Ping)
	}
	if redisCache != nil {
		health.AddCheck("redis", redisCache.Ping)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute

	httpDeps := httpserver.Dependencies{
		GenerateDimensionsHandler: dimensionsCmd,
		GenerateContentHandler:    contentCmd,
		SynthesizeAudioHandler:    audioCmd,
		RecordProgressHandler:     progressCmd,
		RegisterUserHandler:       registerCmd,
		LoginUserHandler:          loginCmd,
		GetProgressHandler:        progressQuery,
		GetCacheStatsHandler:      statsQuery,
		ImageCatalog:              service.NewImageCatalog(),
		Logger:                    log,
		HealthChecker:             health,
	}
	if tokenManager != nil {
		httpDeps.TokenVerifier = tokenManager
	}

	server := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 11. RUN + GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
		close(errCh)
	}()

	log.Info("CurioLab API is running", logger.String("address", server.Address()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			log.Error("service error", logger.Err(err))
			return err
		}
	case <-ctx.Done():
	}

	log.Info("starting graceful shutdown...",
		logger.Duration("timeout", cfg.App.ShutdownTimeout))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", logger.Err(err))
		return err
	}

	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger configures the structured application logger.
func setupLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		opts.Level = logger.LevelDebug
	}
	return logger.New(opts)
}

// setupSlog configures the slog logger used by the external provider client.
func setupSlog(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}

// progressRepoOrNil converts a possibly-nil concrete repository into the
// domain interface without producing a non-nil interface holding a nil
// pointer.
func progressRepoOrNil(repo *postgres.ProgressRepository) progress.Repository {
	if repo == nil {
		return nil
	}
	return repo
}
