package storage

import (
	"context"

	"github.com/riverqueue/river"
)

// JobStorage defines the minimal interface for enqueueing background jobs.
// Implementations persist the job into the underlying queue backend; args
// contains the job payload and opts can customize insertion behavior (queue
// name, delay, uniqueness). Inserts are atomic with respect to a surrounding
// transaction when the backend supports it.
type JobStorage interface {
	// AddJob enqueues a new job with the given arguments. The boolean result
	// reports whether a job was actually inserted; false means an equivalent
	// unique job already exists.
	AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error)
}
