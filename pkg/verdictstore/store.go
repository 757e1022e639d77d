// Package verdictstore holds the cached outcome of privacy probes. It is the
// only mutable shared state in the core: the probe writes verdicts with a
// TTL, operator-facing readers take copies, and puts are last-write-wins
// through the backend's atomic operations.
//
//go:generate mockgen -package mockverdictstore -source=store.go -destination=mock/mockverdictstore.go *
package verdictstore

import (
	"context"
	"time"

	"privuploads/pkg/domain"
)

// Store is a TTL-bounded cache of privacy verdicts keyed by a stable
// per-instance identifier.
type Store interface {
	// Get returns the cached verdict for key, or nil when no valid entry exists.
	// Implementations must self-heal corrupt entries by invalidating them and
	// reporting a miss instead of returning an error.
	Get(ctx context.Context, key string) (*domain.PrivacyVerdict, error)
	// Put stores the verdict under key for the given TTL, replacing any
	// previous entry.
	Put(ctx context.Context, key string, verdict domain.PrivacyVerdict, ttl time.Duration) error
	// Invalidate removes the entry for key. Removing a missing key is not an error.
	Invalidate(ctx context.Context, key string) error
}
