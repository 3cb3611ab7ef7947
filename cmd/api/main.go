package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"admin_console_backend/internal/adapters"
	"admin_console_backend/internal/adapters/storage"
	"admin_console_backend/internal/auth"
	"admin_console_backend/internal/email"
	"admin_console_backend/internal/exports"
	apphttp "admin_console_backend/internal/http"
	"admin_console_backend/internal/http/router"
	"admin_console_backend/internal/identity"
	"admin_console_backend/internal/leads"
	leadsrepo "admin_console_backend/internal/leads/repository"
	"admin_console_backend/internal/rules"
	"admin_console_backend/internal/tenants"
	"admin_console_backend/internal/worker"
	"admin_console_backend/platform/config"
	"admin_console_backend/platform/db"
	"admin_console_backend/platform/events"
	"admin_console_backend/platform/logger"
	"admin_console_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	sender := email.NewSender(cfg, log)

	// Redis backs the analytics cache and the rescore queue; both degrade
	// gracefully when it is absent.
	var redisClient *redis.Client
	if cfg.GetRedisURL() != "" {
		opt, err := redis.ParseURL(cfg.GetRedisURL())
		if err != nil {
			log.Error("invalid redis url", "error", err)
			panic("invalid redis url: " + err.Error())
		}
		redisClient = redis.NewClient(opt)
		defer redisClient.Close()
	} else {
		log.Warn("REDIS_URL not configured; analytics cache and background rescoring disabled")
	}

	var rescoreClient *worker.Client
	if redisClient != nil {
		c, err := worker.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize rescore client", "error", err)
			panic("failed to initialize rescore client: " + err.Error())
		}
		rescoreClient = c
		defer rescoreClient.Close()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	loginURL := cfg.GetAppBaseURL() + "/sign-in"

	rulesModule := rules.NewModule(pool, log)
	tenantsModule := tenants.NewModule(pool, log)
	identityModule := identity.NewModule(pool, eventBus, sender, loginURL, log)
	authModule := auth.NewModule(pool, identityModule.Repository(), cfg, sender, log)

	adminDirectory := adapters.NewAdminDirectoryAdapter(identityModule.Repository(), leadsrepo.New(pool))

	leadsDeps := leads.Deps{
		Rules:       rulesModule.RuleStore(),
		Tenants:     tenantsModule.TenantStore(),
		Provisioner: identityModule.Service(),
		Email:       sender,
		Admins:      adminDirectory,
		Redis:       redisClient,
	}
	if rescoreClient != nil {
		leadsDeps.Rescorer = rescoreClient
	}

	leadsModule, err := leads.NewModule(pool, eventBus, val, cfg, log, leadsDeps)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}

	modules := []apphttp.Module{
		authModule,
		identityModule,
		leadsModule,
		rulesModule,
		tenantsModule,
	}

	// Lead exports need object storage; the endpoint is simply absent when
	// MinIO is not configured.
	if cfg.IsStorageEnabled() {
		store, err := storage.NewMinIOStore(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure exports bucket", 5, 2*time.Second, func() error {
			return store.EnsureBucket(ctx, cfg.GetMinioBucketExports())
		}); err != nil {
			log.Error("failed to ensure exports bucket exists", "error", err, "bucket", cfg.GetMinioBucketExports())
			panic("failed to ensure exports bucket exists: " + err.Error())
		}
		modules = append(modules, exports.NewModule(leadsModule.Repository(), store, cfg.GetMinioBucketExports(), log))
		log.Info("storage service initialized", "exportsBucket", cfg.GetMinioBucketExports())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; lead exports disabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules:  modules,
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, lastErr)
}
