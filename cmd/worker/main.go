package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"admin_console_backend/internal/adapters"
	"admin_console_backend/internal/email"
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
	log.Info("starting rescore worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()
	sender := email.NewSender(cfg, log)

	// Worker-side lead scoring wiring (no HTTP handlers required).
	rulesModule := rules.NewModule(pool, log)
	tenantsModule := tenants.NewModule(pool, log)
	identityModule := identity.NewModule(pool, eventBus, sender, cfg.GetAppBaseURL()+"/sign-in", log)
	adminDirectory := adapters.NewAdminDirectoryAdapter(identityModule.Repository(), leadsrepo.New(pool))

	leadsModule, err := leads.NewModule(pool, eventBus, val, cfg, log, leads.Deps{
		Rules:       rulesModule.RuleStore(),
		Tenants:     tenantsModule.TenantStore(),
		Provisioner: identityModule.Service(),
		Email:       sender,
		Admins:      adminDirectory,
	})
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}

	scheduler, err := worker.NewScheduler(cfg, log)
	if err != nil {
		log.Error("failed to initialize scheduler", "error", err)
		panic("failed to initialize scheduler: " + err.Error())
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			log.Error("scheduler stopped", "error", err)
		}
	}()
	defer scheduler.Shutdown()

	w, err := worker.NewWorker(cfg, leadsModule.Service(), leadsModule.Repository(), log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	w.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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

	return errors.New(name + ": " + lastErr.Error())
}
