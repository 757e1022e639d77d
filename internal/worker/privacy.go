package worker

import (
	"context"
	"fmt"

	"privuploads/internal/probe"
	"privuploads/pkg/logger"

	"github.com/riverqueue/river"
	"go.uber.org/zap"
)

// PrivacyCheckWorker is the River worker behind both the periodic probe and
// on-demand probe jobs. All the probing logic lives in the Prober; the worker
// only maps its outcome onto the job lifecycle.
type PrivacyCheckWorker struct {
	river.WorkerDefaults[probe.JobArgs]

	prober probe.Prober
}

// NewPrivacyCheckWorker constructs a PrivacyCheckWorker using the provided prober.
func NewPrivacyCheckWorker(prober probe.Prober) *PrivacyCheckWorker {
	return &PrivacyCheckWorker{prober: prober}
}

// Work runs one privacy check. An undetermined outcome (nil verdict) is a
// normal completion, not a failure: retrying would not make a missing
// directory or an unreachable host more determined.
func (w *PrivacyCheckWorker) Work(ctx context.Context, job *river.Job[probe.JobArgs]) error {
	ctx = logger.WithFields(ctx, zap.Int64("jobID", job.ID))

	verdict, err := w.prober.Check(ctx)
	if err != nil {
		logger.Error(ctx, "error in privacy check", zap.Error(err))

		return fmt.Errorf("could not check uploads privacy: %w", err)
	}

	if verdict == nil {
		logger.Info(ctx, "privacy check was inconclusive")

		return nil
	}

	return nil
}
