package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	APIBaseURL         string        `envconfig:"API_BASE_URL" default:"http://127.0.0.1:8000/api"`
	APITimeout         time.Duration `envconfig:"API_TIMEOUT" default:"15s"`
	APIServiceUser     string        `envconfig:"API_SERVICE_USER"`
	APIServicePassword string        `envconfig:"API_SERVICE_PASSWORD"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionName   string        `envconfig:"SESSION_NAME" default:"panel_session"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"12h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	DashboardCacheTTL time.Duration `envconfig:"DASHBOARD_CACHE_TTL" default:"1m"`
	GotenbergURL      string        `envconfig:"GOTENBERG_URL"`
	PageSize          int           `envconfig:"PAGE_SIZE" default:"10"`
	RateLimit         int           `envconfig:"RATE_LIMIT" default:"120"`
	WorkerMetricsAddr string        `envconfig:"WORKER_METRICS_ADDR" default:":9091"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if cfg.PageSize <= 0 {
		return nil, errors.New("page size must be positive")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// HasServiceAccount reports whether the worker can sign in to the API.
func (c *Config) HasServiceAccount() bool {
	return c != nil && c.APIServiceUser != "" && c.APIServicePassword != ""
}
