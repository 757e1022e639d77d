// Package worker runs the background job pool: the periodic privacy probe
// and any on-demand probe jobs enqueued from the API.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"privuploads/internal/config"
	"privuploads/internal/probe"
	"privuploads/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"go.uber.org/zap/exp/zapslog"
)

// Options configures the background worker pool.
type Options struct {
	// ProbePeriod is the interval between scheduled privacy probes.
	ProbePeriod time.Duration
	// MaxWorkers bounds concurrent jobs in the default queue.
	MaxWorkers int
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		ProbePeriod: cfg.Probe.Period,
		MaxWorkers:  cfg.Worker.MaxWorkers,
	}
}

// Start registers the privacy check worker, schedules the periodic probe and
// starts the queue client. RunOnStart makes a fresh verdict land right after
// boot instead of waiting a full period.
func Start(ctx context.Context, dbPool *pgxpool.Pool, prober probe.Prober, options Options) (*river.Client[pgx.Tx], error) {
	workers := river.NewWorkers()
	river.AddWorker(workers, NewPrivacyCheckWorker(prober))

	riverClient, err := river.NewClient(riverpgxv5.New(dbPool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: options.MaxWorkers},
		},
		Workers: workers,
		Logger:  slog.New(zapslog.NewHandler(logger.Get(ctx).Core())),
		PeriodicJobs: []*river.PeriodicJob{
			river.NewPeriodicJob(
				river.PeriodicInterval(options.ProbePeriod),
				func() (river.JobArgs, *river.InsertOpts) {
					return probe.JobArgs{}, nil
				},
				&river.PeriodicJobOpts{RunOnStart: true},
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not create river queue client: %w", err)
	}

	if err := riverClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("could not start river queue client: %w", err)
	}

	return riverClient, nil
}
