package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
// It contains settings for the environment, HTTP server, database and Redis
// connections, the private uploads layout, and the privacy probe.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response.
		// File delivery streams bodies, so this is deliberately generous.
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"5m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout bounds request handling on the admin API. File delivery
		// is not subject to it so large downloads can stream.
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"30s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
	} `yaml:"http"`

	// Uploads describes the private uploads root and how it maps to URLs.
	Uploads struct {
		// Identifier names this private uploads instance. It determines the delivery
		// query key ("{identifier}-private-uploads-file", underscores become hyphens)
		// and the verdict cache key.
		Identifier string `env:"UPLOADS_IDENTIFIER" env-default:"default" yaml:"identifier"`
		// BaseDir is the uploads base directory on disk; the private root lives
		// under it at {baseDir}/{subdirectory}.
		BaseDir string `env:"UPLOADS_BASE_DIR" env-default:"/var/www/uploads" yaml:"baseDir"`
		// BaseURL is the public URL corresponding to BaseDir. The web server is
		// expected to block {baseURL}/{subdirectory}/ — the probe verifies that.
		BaseURL string `env:"UPLOADS_BASE_URL" env-default:"http://localhost/uploads" yaml:"baseURL"`
		// Subdirectory is the private root's directory name under BaseDir.
		Subdirectory string `env:"UPLOADS_SUBDIRECTORY" env-default:"private" yaml:"subdirectory"`
	} `yaml:"uploads"`

	// Probe configures the outbound privacy self-check.
	Probe struct {
		// Timeout bounds the outbound GET. Kept short: the target is this server itself.
		Timeout time.Duration `env:"PROBE_TIMEOUT" env-default:"2s" yaml:"timeout"`
		// Period is how often the recurring probe job runs.
		Period time.Duration `env:"PROBE_PERIOD" env-default:"1h" yaml:"period"`
		// VerdictTTL is how long a verdict stays cached. Slightly longer than Period
		// so the cache never goes empty between scheduled runs under normal operation.
		VerdictTTL time.Duration `env:"PROBE_VERDICT_TTL" env-default:"61m" yaml:"verdictTTL"`
		// PrivateStatusCodes lists the HTTP statuses classified as "private".
		// Empty means the default set {301, 302, 401, 403, 404}.
		PrivateStatusCodes []int `env:"PROBE_PRIVATE_STATUS_CODES" yaml:"privateStatusCodes"`
	} `yaml:"probe"`

	// Worker configures the background job pool.
	Worker struct {
		// MaxWorkers bounds concurrent jobs in the default queue.
		MaxWorkers int `env:"WORKER_MAX_WORKERS" env-default:"10" yaml:"maxWorkers"`
	} `yaml:"worker"`

	// JWT configures the default authorization check for delivery and admin endpoints.
	JWT struct {
		// PublicKey is the PEM-encoded RSA public key used to verify bearer tokens.
		PublicKey string `env:"JWT_PUBLIC_KEY" yaml:"publicKey"`
		// PrivateKey is the PEM-encoded RSA private key, only needed by the jwt subcommand.
		PrivateKey string `env:"JWT_PRIVATE_KEY" yaml:"privateKey"`
		// AdminRole is the role claim value that grants access to private files.
		AdminRole string `env:"JWT_ADMIN_ROLE" env-default:"administrator" yaml:"adminRole"`
	} `yaml:"jwt"`

	// Database contains all database connection related configurations
	Database struct {
		// Username for database authentication
		Username string `env:"DATABASE_USERNAME" env-default:"myuser" yaml:"username"`
		// Password for database authentication
		Password string `env:"DATABASE_PASSWORD" env-default:"mypassword" yaml:"password"`
		// Host is the database server hostname or IP address
		Host string `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		// Port is the database server port number
		Port int `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		// SslMode defines the SSL mode for the database connection
		SslMode string `env:"DATABASE_SSL_MODE" env-default:"disable" yaml:"sslMode"`
		// DatabaseName is the name of the database to connect to
		DatabaseName string `env:"DATABASE_NAME" env-default:"privuploads" yaml:"name"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"10" yaml:"maxOpenConnections"`
		// MaxIdleConnections limits the number of connections in the idle connection pool
		MaxIdleConnections int `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"8" yaml:"maxIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	// Redis contains the verdict cache connection settings.
	Redis struct {
		// Addr is the Redis host:port
		Addr string `env:"REDIS_ADDR" env-default:"localhost:6379" yaml:"addr"`
		// Password for Redis authentication, empty when auth is disabled
		Password string `env:"REDIS_PASSWORD" yaml:"password"`
		// DB is the Redis logical database number
		DB int `env:"REDIS_DB" env-default:"0" yaml:"db"`
	} `yaml:"redis"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
func Load(configPath string) (*Config, error) {
	var cfg Config
	err := cleanenv.ReadConfig(configPath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}
