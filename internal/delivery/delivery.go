// Package delivery serves files from the private uploads root. The web server
// blocks direct access to the private directory and rewrites those requests to
// this service carrying the relative path in a query parameter; the service
// authorizes the caller and streams the file with conditional-cache support.
package delivery

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"privuploads/internal/uploads"
	"privuploads/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Request outcomes recorded on the delivery counter.
const (
	outcomeServed      = "served"
	outcomeNotModified = "not_modified"
	outcomeForbidden   = "forbidden"
	outcomeNotFound    = "not_found"
	outcomeError       = "error"
)

// Service delivers private files. It terminates a request in exactly one of
// five states: forbidden, server error, not found, not modified, or a full
// streamed response.
type Service struct {
	settings  uploads.Settings
	authorize AuthorizationCheck
	cache     *ConditionalCacheEvaluator
	requests  metric.Int64Counter
}

// Options configures the delivery service.
type Options struct {
	// Settings locates the private root and names the query key.
	Settings uploads.Settings
	// Authorize grants or denies access to every delivery request.
	Authorize AuthorizationCheck
	// Meter records delivery metrics. The global (no-op by default) meter is
	// used when nil.
	Meter metric.Meter
}

// NewService creates a delivery service.
func NewService(options Options) (*Service, error) {
	meter := options.Meter
	if meter == nil {
		meter = otel.Meter("privuploads/delivery")
	}

	requests, err := meter.Int64Counter("privuploads_delivery_requests_total",
		metric.WithDescription("Private file delivery requests by outcome."))
	if err != nil {
		return nil, err
	}

	return &Service{
		settings:  options.Settings,
		authorize: options.Authorize,
		cache:     NewConditionalCacheEvaluator(),
		requests:  requests,
	}, nil
}

// Handler intercepts requests carrying the file query parameter and serves
// the named private file. All other requests fall through to next.
func (s *Service) Handler(next http.Handler) http.Handler {
	key := s.settings.FileQueryKey()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if !query.Has(key) {
			next.ServeHTTP(w, r)

			return
		}

		s.serveFile(w, r, query.Get(key))
	})
}

// serveFile runs the delivery state machine for the requested relative path.
// Authorization happens before any filesystem access, and the forbidden
// response never reveals whether the file exists.
func (s *Service) serveFile(w http.ResponseWriter, r *http.Request, relativePath string) {
	ctx := r.Context()

	if err := s.authorize(r); err != nil {
		logger.Debug(ctx, "refused private file request", zap.Error(err))
		s.count(r, outcomeForbidden)
		http.Error(w, "Forbidden", http.StatusForbidden)

		return
	}

	root, err := s.settings.PrivateDir()
	if err != nil {
		logger.Error(ctx, "could not resolve private uploads root", zap.Error(err))
		s.count(r, outcomeError)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	clean := uploads.SanitizePath(relativePath)
	fullPath := filepath.Join(root, filepath.FromSlash(clean))

	info, err := os.Stat(fullPath)
	if err != nil || !info.Mode().IsRegular() {
		s.count(r, outcomeNotFound)
		http.NotFound(w, r)

		return
	}

	mtime := info.ModTime()
	if s.cache.NotModified(r, mtime) {
		s.cache.SetValidators(w, mtime)
		s.count(r, outcomeNotModified)
		w.WriteHeader(http.StatusNotModified)

		return
	}

	file, err := os.Open(fullPath)
	if err != nil {
		logger.Warn(ctx, "could not open private file", zap.String("path", clean), zap.Error(err))
		s.count(r, outcomeNotFound)
		http.NotFound(w, r)

		return
	}
	defer func() {
		_ = file.Close()
	}()

	s.cache.SetValidators(w, mtime)
	w.Header().Set("Content-Type", uploads.DetectContentType(info.Name(), fullPath))
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))

	s.count(r, outcomeServed)
	if _, err := io.Copy(w, file); err != nil {
		// Headers are already written; nothing to do beyond noting the abort.
		logger.Debug(ctx, "private file stream aborted", zap.String("path", clean), zap.Error(err))
	}
}

func (s *Service) count(r *http.Request, outcome string) {
	s.requests.Add(r.Context(), 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
