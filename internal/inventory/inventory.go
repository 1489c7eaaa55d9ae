// Package inventory periodically counts the content tree and publishes the
// totals as gauges.
package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docpages/internal/content"
	"git.home.luguber.info/inful/docpages/internal/logfields"
	"git.home.luguber.info/inful/docpages/internal/metrics"
)

// Counts is one snapshot of the content tree.
type Counts struct {
	Projects int
	Pages    int
	Assets   int
}

// Count walks every project once.
func Count(scanner *content.Scanner) Counts {
	var c Counts
	for _, project := range scanner.Projects() {
		c.Projects++
		c.Pages += len(scanner.Pages(project))
		c.Assets += len(scanner.Assets(project))
	}
	return c
}

// Scheduler wraps a gocron scheduler running the inventory job.
type Scheduler struct {
	scheduler gocron.Scheduler
	scanner   *content.Scanner
	recorder  metrics.Recorder
	logger    *slog.Logger
}

// NewScheduler creates the scheduler and registers the job to run every
// interval, starting immediately.
func NewScheduler(scanner *content.Scanner, interval time.Duration, recorder metrics.Recorder, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	inv := &Scheduler{scheduler: s, scanner: scanner, recorder: metrics.OrNoop(recorder), logger: logger}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { inv.Run() }),
		gocron.WithName("content-inventory"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create inventory job: %w", err)
	}
	return inv, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("Starting content inventory scheduler")
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for a running job.
func (s *Scheduler) Stop(_ context.Context) error {
	s.logger.Info("Stopping content inventory scheduler")
	return s.scheduler.Shutdown()
}

// Run takes one snapshot and records it.
func (s *Scheduler) Run() Counts {
	c := Count(s.scanner)
	s.recorder.SetInventory(c.Projects, c.Pages, c.Assets)
	s.logger.Debug("Content inventory",
		slog.Int("projects", c.Projects),
		slog.Int("pages", c.Pages),
		slog.Int("assets", c.Assets),
		logfields.Path(s.scanner.Root()))
	return c
}
