package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/docpages/internal/config"
	"git.home.luguber.info/inful/docpages/internal/events"
	"git.home.luguber.info/inful/docpages/internal/inventory"
	"git.home.luguber.info/inful/docpages/internal/logfields"
	"git.home.luguber.info/inful/docpages/internal/metrics"
	"git.home.luguber.info/inful/docpages/internal/retry"
	"git.home.luguber.info/inful/docpages/internal/server/httpserver"
	"git.home.luguber.info/inful/docpages/internal/watch"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr  string `help:"Listen address, overrides server.address"`
	Watch bool   `short:"w" help:"Watch the content root and live-reload open pages"`
}

func (s *ServeCmd) Run(g *Global) error {
	cfg := *g.Config
	if s.Addr != "" {
		cfg.Server.Address = s.Addr
	}
	if s.Watch {
		cfg.Watch.Enabled = true
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunServe(ctx, &cfg, g.Logger)
}

// RunServe serves the site until ctx is done, then shuts everything down.
func RunServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var (
		reg      *prom.Registry
		recorder metrics.Recorder = metrics.NoopRecorder{}
	)
	if cfg.Metrics.Enabled {
		reg = prom.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder = metrics.NewPrometheusRecorder(reg)
	}

	parts, err := newSite(cfg, recorder, cfg.Watch.Enabled, logger)
	if err != nil {
		return err
	}

	var sched *inventory.Scheduler
	if cfg.Metrics.Enabled {
		sched, err = inventory.NewScheduler(parts.scanner, cfg.Metrics.InventoryInterval, recorder, logger)
		if err != nil {
			return err
		}
		sched.Start()
	}

	var hub *watch.LiveReloadHub
	if cfg.Watch.Enabled {
		hub = watch.NewLiveReloadHub(recorder)
		closePublisher, err := startWatcher(ctx, cfg, parts, hub, recorder, logger)
		if err != nil {
			hub.Shutdown()
			stopScheduler(sched, logger)
			return err
		}
		defer closePublisher()
	}

	opts := httpserver.Options{
		Composer:    parts.composer,
		Assets:      parts.assets,
		Recorder:    recorder,
		Registry:    reg,
		MetricsPath: cfg.Metrics.Path,
		Logger:      logger,
	}
	if hub != nil {
		opts.LiveReloadHub = hub
	}
	srv := httpserver.New(cfg.Server, opts)
	if err := srv.Start(ctx); err != nil {
		stopScheduler(sched, logger)
		return fmt.Errorf("start http server: %w", err)
	}
	logger.Info("Serving project pages",
		slog.String("addr", srv.Addr().String()),
		logfields.Path(cfg.Content.Root),
		slog.Bool("watch", cfg.Watch.Enabled),
		slog.Bool("metrics", cfg.Metrics.Enabled))

	<-ctx.Done()
	logger.Info("Shutdown signal received, stopping server...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stopCancel()
	stopScheduler(sched, logger)
	if err := srv.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// startWatcher wires the content watcher to the live reload hub and, when
// configured, to NATS. The returned func releases the NATS connection.
func startWatcher(ctx context.Context, cfg *config.Config, parts *siteParts, hub *watch.LiveReloadHub, recorder metrics.Recorder, logger *slog.Logger) (func(), error) {
	watcher, err := watch.NewWatcher(parts.scanner, cfg.Watch.Debounce, recorder, logger)
	if err != nil {
		return nil, err
	}
	hub.Broadcast(watch.Fingerprint(parts.scanner))
	watcher.OnChange(func(_ context.Context, c watch.Change) {
		hub.Broadcast(c.Fingerprint)
	})

	closePublisher := func() {}
	if cfg.Events.NATSURL != "" {
		r := cfg.Events.Retry
		maxRetries := 0
		if r.MaxRetries != nil {
			maxRetries = *r.MaxRetries
		}
		policy := retry.NewPolicy(retry.ParseMode(r.Backoff), r.Initial, r.Max, maxRetries)
		pub, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.Subject, policy, logger)
		if err != nil {
			// Live reload keeps working without the broker.
			logger.Warn("NATS unavailable, change events disabled", logfields.Error(err))
		} else {
			closePublisher = pub.Close
			watcher.OnChange(func(ctx context.Context, c watch.Change) {
				ev := events.ContentChanged{Fingerprint: c.Fingerprint, ChangedAt: c.ChangedAt}
				if err := pub.Publish(ctx, ev); err != nil {
					logger.Warn("Failed to publish content change", logfields.Error(err))
				}
			})
		}
	}

	go func() {
		if err := watcher.Run(ctx); err != nil {
			logger.Error("Content watcher stopped", logfields.Error(err))
		}
	}()
	return closePublisher, nil
}

func stopScheduler(s *inventory.Scheduler, logger *slog.Logger) {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		logger.Warn("Failed to stop inventory scheduler", logfields.Error(err))
	}
}
