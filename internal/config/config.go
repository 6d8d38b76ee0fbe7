package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds runtime configuration for the quiz client.
type App struct {
	Name string `env:"APP_NAME" envDefault:"wikiquiz"`
	Env  string `env:"APP_ENV" envDefault:"development"`

	API     API
	Session Session
	Metrics Metrics
}

// API captures the backend endpoint configuration.
type API struct {
	BaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8000/api"`
	// Generation covers scraping plus LLM time, so it gets its own
	// longer timeout.
	Timeout         time.Duration `env:"API_HTTP_TIMEOUT" envDefault:"15s"`
	GenerateTimeout time.Duration `env:"API_GENERATE_TIMEOUT" envDefault:"90s"`
}

// Session groups attempt-engine tuning.
type Session struct {
	// AutoAdvanceDelay keeps the just-selected option visible before the
	// engine moves on or submits.
	AutoAdvanceDelay time.Duration `env:"AUTO_ADVANCE_DELAY" envDefault:"700ms"`
}

// Metrics controls the optional operator-facing endpoint.
type Metrics struct {
	Addr string `env:"METRICS_ADDR"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
