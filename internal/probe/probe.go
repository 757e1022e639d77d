// Package probe verifies from the outside that the private uploads directory
// is actually blocked. It requests a URL under the private root the way an
// anonymous visitor would and classifies the response status; the verdict is
// cached with a TTL and refreshed by a periodic background job.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"privuploads/internal/config"
	"privuploads/internal/uploads"
	"privuploads/pkg/domain"
	"privuploads/pkg/logger"
	"privuploads/pkg/storage"
	"privuploads/pkg/verdictstore"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Probe result labels recorded on the probe counter.
const (
	resultPrivate      = "private"
	resultPublic       = "public"
	resultUndetermined = "undetermined"
)

// Options configure how the privacy probe requests the private directory and
// how long its verdicts live.
type Options struct {
	// Timeout bounds the outbound probe request.
	Timeout time.Duration
	// VerdictTTL is how long a cached verdict stays valid. It should exceed
	// the probe period so a fresh verdict always lands before the old one
	// expires.
	VerdictTTL time.Duration
	// PrivateStatusCodes are the response statuses counted as "blocked".
	// Empty falls back to domain.DefaultPrivateStatusCodes.
	PrivateStatusCodes []int
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Timeout:            cfg.Probe.Timeout,
		VerdictTTL:         cfg.Probe.VerdictTTL,
		PrivateStatusCodes: cfg.Probe.PrivateStatusCodes,
	}
}

// Deps are the collaborators the probe service needs.
type Deps struct {
	// Settings locates the private directory on disk and its public URL.
	Settings uploads.Settings
	// Store caches verdicts between probes.
	Store verdictstore.Store
	// Storage enqueues background probe jobs on cache misses.
	Storage storage.JobStorage
	// HTTPClient performs the outbound request. When nil a client that does
	// not follow redirects is used: a redirect is itself evidence the
	// directory is protected, so the probe must observe it.
	HTTPClient *http.Client
	// Meter records probe metrics. The global (no-op by default) meter is
	// used when nil.
	Meter metric.Meter
}

type service struct {
	options    Options
	settings   uploads.Settings
	store      verdictstore.Store
	storage    storage.JobStorage
	httpClient *http.Client
	checks     metric.Int64Counter
}

// New creates a Prober.
func New(deps Deps, options Options) (Prober, error) {
	if deps.HTTPClient == nil {
		deps.HTTPClient = &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	if len(options.PrivateStatusCodes) == 0 {
		options.PrivateStatusCodes = domain.DefaultPrivateStatusCodes
	}

	meter := deps.Meter
	if meter == nil {
		meter = otel.Meter("privuploads/probe")
	}

	checks, err := meter.Int64Counter("privuploads_probe_checks_total",
		metric.WithDescription("Privacy probe runs by result."))
	if err != nil {
		return nil, fmt.Errorf("could not create probe counter: %w", err)
	}

	return &service{
		options:    options,
		settings:   deps.Settings,
		store:      deps.Store,
		storage:    deps.Storage,
		httpClient: deps.HTTPClient,
		checks:     checks,
	}, nil
}

// Check probes the private directory once. When the directory is missing or
// empty there is nothing to protect: the cached verdict is invalidated and no
// new one is written. A transport failure likewise leaves the cache untouched,
// so a stale-but-real verdict is never replaced by a guess.
func (s *service) Check(ctx context.Context) (*domain.PrivacyVerdict, error) {
	target, err := s.probeTarget(ctx)
	if err != nil {
		return nil, err
	}
	if target == "" {
		s.count(ctx, resultUndetermined)
		if err := s.store.Invalidate(ctx, s.settings.VerdictCacheKey()); err != nil {
			return nil, fmt.Errorf("could not invalidate verdict: %w", err)
		}

		return nil, nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.options.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create probe request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// The directory's exposure is unknown, not known-public. Leave any
		// cached verdict in place and report undetermined.
		logger.Info(ctx, "privacy probe request failed", zap.String("url", target), zap.Error(err))
		s.count(ctx, resultUndetermined)

		return nil, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	verdict := domain.NewPrivacyVerdict(target, resp.StatusCode, s.options.PrivateStatusCodes, time.Now().UTC())
	if err := s.store.Put(ctx, s.settings.VerdictCacheKey(), verdict, s.options.VerdictTTL); err != nil {
		return nil, fmt.Errorf("could not store verdict: %w", err)
	}

	result := resultPublic
	if verdict.IsPrivate {
		result = resultPrivate
	}
	s.count(ctx, result)
	logger.Info(ctx, "privacy probe completed",
		zap.String("url", target),
		zap.Int("statusCode", verdict.StatusCode),
		zap.Bool("isPrivate", verdict.IsPrivate))

	return &verdict, nil
}

// LastChecked returns the cached verdict. A miss schedules a background probe
// through the job queue and reports nil: requests never wait on an outbound
// probe, and the unique job guarantees at most one is outstanding.
func (s *service) LastChecked(ctx context.Context) (*domain.PrivacyVerdict, error) {
	verdict, err := s.store.Get(ctx, s.settings.VerdictCacheKey())
	if err != nil {
		return nil, fmt.Errorf("could not read verdict: %w", err)
	}
	if verdict != nil {
		return verdict, nil
	}

	added, err := s.storage.AddJob(ctx, JobArgs{}, nil)
	if err != nil {
		return nil, fmt.Errorf("could not schedule probe job: %w", err)
	}
	if added {
		logger.Debug(ctx, "scheduled privacy probe")
	}

	return nil, nil
}

// probeTarget picks the URL to request: the first readable regular file in
// the private directory, or the bare directory URL when the directory has
// entries but none is a readable file. Empty means there is nothing to probe.
func (s *service) probeTarget(ctx context.Context) (string, error) {
	dir, err := s.settings.PrivateDir()
	if err != nil {
		return "", fmt.Errorf("could not resolve private uploads root: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		logger.Debug(ctx, "private uploads directory does not exist", zap.String("dir", dir))

		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("could not list %s: %w", dir, err)
	}
	if len(entries) == 0 {
		logger.Debug(ctx, "private uploads directory is empty", zap.String("dir", dir))

		return "", nil
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		file, err := os.Open(dir + "/" + entry.Name())
		if err != nil {
			continue
		}
		_ = file.Close()

		return s.settings.PrivateURL() + url.PathEscape(entry.Name()), nil
	}

	return s.settings.PrivateURL(), nil
}

func (s *service) count(ctx context.Context, result string) {
	s.checks.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
