package probe

import (
	"context"

	"privuploads/pkg/domain"
)

// Prober checks whether the private uploads directory is actually blocked
// from the outside and reports the cached result.
//
//go:generate mockgen -package mockprobe -source=interface.go -destination=mock/mockprobe.go *
type Prober interface {
	// Check probes the private directory from the outside and caches the
	// verdict. A nil verdict with a nil error means the result is
	// undetermined: the directory is missing or empty, or the probe request
	// never completed.
	Check(ctx context.Context) (*domain.PrivacyVerdict, error)

	// LastChecked returns the cached verdict without probing. On a cache miss
	// it schedules a background probe and returns nil.
	LastChecked(ctx context.Context) (*domain.PrivacyVerdict, error)
}
