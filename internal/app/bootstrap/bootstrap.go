// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	policy "github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/adapters/gormstore"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/catalog"
	"github.com/jayandra06/euroasainn-ERP-sub000/internal/platform/config"
	"github.com/jayandra06/euroasainn-ERP-sub000/internal/platform/db"
)

// WorkerApp runs the boot-time legacy migration, the scheduled grant
// reconciliation pass, and the metrics endpoint.
type WorkerApp struct {
	module   policy.Module
	gormDB   *gorm.DB
	registry *prometheus.Registry
	schedule string
	addr     string
	logger   *slog.Logger
}

// BuildWorker loads configuration, connects the store, and wires the policy
// module. Any failure here is fatal: the process must not serve decisions.
func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg).With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.DBDSN) == "" {
		return nil, errors.New("DB_DSN is required")
	}

	gormDB, err := db.Connect(db.Config{Driver: cfg.DBDriver, DSN: cfg.DBDSN})
	if err != nil {
		return nil, err
	}

	store, err := gormstore.NewStore(gormDB, logger)
	if err != nil {
		_ = db.Close(gormDB)
		return nil, err
	}

	cat, err := catalog.Load()
	if err != nil {
		_ = db.Close(gormDB)
		return nil, err
	}

	registry := prometheus.NewRegistry()
	module, err := policy.NewModule(context.Background(), policy.Dependencies{
		GrantStore: store,
		Directory:  store,
		Catalog:    cat,
		Clock:      gormstore.SystemClock{},
		IDGen:      gormstore.UUIDGenerator{},
		Registry:   registry,
		Logger:     logger,
	})
	if err != nil {
		_ = db.Close(gormDB)
		return nil, err
	}

	return &WorkerApp{
		module:   module,
		gormDB:   gormDB,
		registry: registry,
		schedule: cfg.ReconcileSchedule,
		addr:     cfg.MetricsAddr,
		logger:   logger,
	}, nil
}

// Module exposes the wired policy module to in-process callers (the CRUD
// services and the seed command).
func (w *WorkerApp) Module() policy.Module {
	return w.module
}

// Run migrates legacy policy rows, schedules the reconciliation pass, and
// serves Prometheus metrics until the context is cancelled.
func (w *WorkerApp) Run(ctx context.Context) error {
	if _, err := w.module.MigratePolicies.Execute(ctx); err != nil {
		return err
	}

	scheduler := cron.New()
	_, err := scheduler.AddFunc(w.schedule, func() {
		if err := w.module.Reconciler.RunOnce(ctx); err != nil {
			w.logger.Error("reconciliation run failed",
				"event", "bootstrap_reconcile_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	})
	if err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(w.registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: w.addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"reconcile_schedule", w.schedule,
		"metrics_addr", w.addr,
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases the database pool.
func (w *WorkerApp) Close() error {
	return db.Close(w.gormDB)
}

func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
