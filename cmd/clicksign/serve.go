package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gisce/clicksign/internal/callback"
	"github.com/gisce/clicksign/internal/config"
	"github.com/gisce/clicksign/internal/logging"
	"github.com/gisce/clicksign/internal/metrics"
	"github.com/gisce/clicksign/internal/ratelimit"
	"github.com/gisce/clicksign/internal/server"
	"github.com/gisce/clicksign/internal/store"
)

func (a *app) serve(ctx context.Context) error {
	recorder := metrics.NewRecorder(prometheus.NewRegistry())
	a.observer = recorder

	storeLogger := a.logger.With(slog.String("component", "store_factory"))
	events := buildEventStore(storeLogger, a.cfg.Callback.Store)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := events.Close(closeCtx); err != nil {
			a.logger.Error("event store shutdown failed", slog.Any("error", err))
		}
	}()

	rl := a.cfg.Callback.RateLimit
	limiter := ratelimit.New(rl.RequestsPerSecond, rl.Burst, rl.IdleTTL())
	if limiter == nil {
		a.logger.Info("callback rate limiting disabled")
	}

	opts := callback.Options{
		Store:   events,
		Limiter: limiter,
		Metrics: recorder,
		Logger:  a.logger,
	}
	if strings.TrimSpace(a.cfg.User) != "" && strings.TrimSpace(a.cfg.Password) != "" {
		client, err := a.client()
		if err != nil {
			return err
		}
		opts.Fetcher = client.Signature
	} else {
		a.logger.Info("credentials not configured, signatory lookups answer from callbacks only")
	}
	listener, err := callback.New(opts)
	if err != nil {
		return err
	}

	if files := a.loader.Files(); len(files) > 0 {
		a.logger.Debug("watching configuration", slog.Any("files", files))
		watcher, err := a.loader.Watch(ctx, a.applyReload, func(err error) {
			a.logger.Error("configuration reload failed", slog.Any("error", err))
		})
		if err != nil {
			a.logger.Error("configuration watcher setup failed", slog.Any("error", err))
		} else {
			defer watcher.Stop()
		}
	}

	srv, err := server.New(a.cfg.Callback.Listen, a.logger, server.NewHandler(listener, recorder.Handler()))
	if err != nil {
		return err
	}
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.logger.Info("callback listener shutdown complete")
	return nil
}

// applyReload applies the settings that can change without a restart. Only the log
// level is live; everything else is reported.
func (a *app) applyReload(cfg config.Config) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		a.logger.Error("configuration reload rejected", slog.Any("error", err))
		return
	}
	if a.level.Level() != level {
		a.level.Set(level)
		a.logger.Info("log level changed", slog.String("level", level.String()))
	}
	if cfg.Callback != a.cfg.Callback || cfg.User != a.cfg.User || cfg.Password != a.cfg.Password {
		a.logger.Warn("listener settings changed, restart to apply")
	}
}

func buildEventStore(logger *slog.Logger, cfg config.StoreConfig) store.EventStore {
	retention := cfg.Retention()
	backend := strings.TrimSpace(strings.ToLower(cfg.Backend))
	switch backend {
	case "", "memory":
		logger.Info("using memory event store", slog.Duration("retention", retention))
		return store.NewMemory(retention)
	case "valkey":
		valkeyStore, err := store.NewValkey(store.ValkeyConfig{
			Address:  cfg.Valkey.Address,
			Username: cfg.Valkey.Username,
			Password: cfg.Valkey.Password,
			DB:       cfg.Valkey.DB,
			TLS: store.ValkeyTLSConfig{
				Enabled: cfg.Valkey.TLS.Enabled,
				CAFile:  cfg.Valkey.TLS.CAFile,
			},
			Retention: retention,
		})
		if err != nil {
			logger.Error("valkey event store initialization failed", slog.Any("error", err))
			logger.Info("falling back to memory event store")
			return store.NewMemory(retention)
		}
		logger.Info("using valkey event store", slog.String("address", cfg.Valkey.Address))
		return valkeyStore
	default:
		logger.Warn("unsupported event store backend, defaulting to memory", slog.String("backend", cfg.Backend))
		return store.NewMemory(retention)
	}
}
