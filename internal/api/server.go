// Package api configures and exposes the HTTP server: the file delivery
// route, the v1 admin API, metrics, pprof and related middleware.
package api

import (
	"fmt"
	"net/http"
	"time"

	"privuploads/internal/api/handler/v1handler"
	"privuploads/internal/config"
	"privuploads/internal/delivery"
	"privuploads/internal/uploads"
	"privuploads/pkg/controller"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Options holds configuration for the HTTP server and its dependencies.
// It is typically created from a config.Config via NewOptions.
// All durations are used to configure server timeouts, and zero values
// should be considered as using the defaults provided by net/http where applicable.
type Options struct {
	// Addr is the TCP address the server listens on, e.g. ":8080".
	Addr string
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
	// RequestTimeout is applied via http.TimeoutHandler to the admin API only;
	// the delivery route streams file bodies and must not be buffered by a
	// timeout handler.
	RequestTimeout time.Duration
	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing the request header's keys and values, including the request line.
	MaxHeaderBytes int
	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
}

// NewOptions constructs an Options value from the provided application configuration.
// It maps HTTP server-related settings from config.Config to the Options used by the API server.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Addr:              cfg.HTTP.Addr,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MetricsPath:       cfg.HTTP.MetricsPath,
	}
}

// Deps are the collaborators the HTTP server wires together.
type Deps struct {
	v1handler.Deps

	// Settings locates the private uploads root for the delivery route.
	Settings uploads.Settings
	// Authorize guards both file delivery and the admin API.
	Authorize delivery.AuthorizationCheck
	// Meter records HTTP-facing metrics, typically from NewMeterProvider.
	Meter metric.Meter
}

// NewMeterProvider creates an OpenTelemetry meter provider whose metrics are
// exported through the default Prometheus registry, i.e. the /metrics
// endpoint served by NewServer.
func NewMeterProvider() (*sdkmetric.MeterProvider, error) {
	exp, err := otelprom.New(otelprom.WithRegisterer(prometheus.DefaultRegisterer))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)), nil
}

// NewServer wires up and returns a configured *http.Server using the provided Options.
// It sets up:
// - Prometheus metrics endpoint (MetricsPath)
// - v1 admin API routes behind the authorization check and a request timeout
// - pprof endpoints for profiling
// - the file delivery route, intercepting requests that carry the file query key
// It also wraps the handler chain with CORS and logging middlewares.
func NewServer(deps Deps, opts Options) (*http.Server, error) {
	mux := http.NewServeMux()

	// prometheus metrics server
	mux.Handle(opts.MetricsPath, promhttp.Handler())

	// v1 admin api
	v1 := v1handler.New(deps.Deps)
	mux.Handle("/v1/",
		http.TimeoutHandler(v1.Mux(deps.Authorize), opts.RequestTimeout, `{"error":"request timed out"}`))

	// pprof
	mux.Handle("/debug/pprof/", controller.PprofMux())

	// file delivery intercepts any request carrying the file query key; the
	// rest fall through to the mux
	deliverySvc, err := delivery.NewService(delivery.Options{
		Settings:  deps.Settings,
		Authorize: deps.Authorize,
		Meter:     deps.Meter,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create delivery service: %w", err)
	}
	handler := deliverySvc.Handler(mux)

	// cors
	handler = controller.WithCORS(handler)

	// logger
	handler = controller.WithLogger(handler)

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
	}, nil
}
