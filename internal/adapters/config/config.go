package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"hermes/pkg/errors"
)

type Config struct {
	App           AppConfig
	Server        ServerConfig
	Quotes        QuotesConfig
	News          NewsConfig
	Assistant     AssistantConfig
	Approval      ApprovalConfig
	ErrorTracking ErrorTrackingConfig
	Workers       WorkerConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"hermes"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// QuotesConfig configures the quote provider fallback chain.
// The plausibility bounds are heuristics carried over from the dashboard
// prototype; they are env-tunable because their fit for all securities
// is unverified.
type QuotesConfig struct {
	Symbols []string `envconfig:"QUOTE_SYMBOLS" default:"AAPL,GOOGL,MSFT,TSLA,NVDA"`

	// Provider endpoints. The chart API is reached through a CORS relay
	// so the same URL works from browser-hosted deployments.
	YahooRelayURL   string `envconfig:"QUOTE_YAHOO_RELAY_URL" default:"https://api.allorigins.win/get"`
	YahooChartURL   string `envconfig:"QUOTE_YAHOO_CHART_URL" default:"https://query1.finance.yahoo.com/v8/finance/chart"`
	AlphaVantageURL string `envconfig:"QUOTE_ALPHA_VANTAGE_URL" default:"https://www.alphavantage.co"`
	AlphaVantageKey string `envconfig:"QUOTE_ALPHA_VANTAGE_KEY" default:"demo"`
	FMPBaseURL      string `envconfig:"QUOTE_FMP_URL" default:"https://financialmodelingprep.com"`
	FMPKey          string `envconfig:"QUOTE_FMP_KEY" default:"demo"`

	// Pacing between provider requests, shared across the whole cycle
	// to stay under upstream rate limits.
	RequestDelay   time.Duration `envconfig:"QUOTE_REQUEST_DELAY" default:"2s"`
	RequestTimeout time.Duration `envconfig:"QUOTE_REQUEST_TIMEOUT" default:"15s"`

	// Plausibility bounds for accepting a quote.
	MaxPrice       float64 `envconfig:"QUOTE_MAX_PRICE" default:"10000"`
	MaxChangeRatio float64 `envconfig:"QUOTE_MAX_CHANGE_RATIO" default:"0.5"`
}

type NewsConfig struct {
	BaseURL        string        `envconfig:"NEWS_BASE_URL" default:"https://content.guardianapis.com"`
	APIKey         string        `envconfig:"NEWS_API_KEY" default:"test"`
	Query          string        `envconfig:"NEWS_QUERY" default:"finance OR stocks OR markets OR economy"`
	Section        string        `envconfig:"NEWS_SECTION" default:"business"`
	MaxItems       int           `envconfig:"NEWS_MAX_ITEMS" default:"10"`
	RequestTimeout time.Duration `envconfig:"NEWS_REQUEST_TIMEOUT" default:"15s"`

	// Plausible publication window; timestamps outside it are replaced
	// with a randomized recent one.
	MaxAge       time.Duration `envconfig:"NEWS_MAX_AGE" default:"2160h"`        // 90 days
	MaxFutureAge time.Duration `envconfig:"NEWS_MAX_FUTURE_AGE" default:"8760h"` // 1 year
}

type AssistantConfig struct {
	BaseURL        string        `envconfig:"ASSISTANT_BASE_URL" default:"http://localhost:11434"`
	Model          string        `envconfig:"ASSISTANT_MODEL" default:"llama3.2:1b"`
	Temperature    float64       `envconfig:"ASSISTANT_TEMPERATURE" default:"0.7"`
	MaxTokens      int           `envconfig:"ASSISTANT_MAX_TOKENS" default:"150"`
	RequestTimeout time.Duration `envconfig:"ASSISTANT_REQUEST_TIMEOUT" default:"60s"`
	HealthTimeout  time.Duration `envconfig:"ASSISTANT_HEALTH_TIMEOUT" default:"5s"`
}

type ApprovalConfig struct {
	ManagerName  string `envconfig:"APPROVAL_MANAGER_NAME" default:"John Smith"`
	ManagerTitle string `envconfig:"APPROVAL_MANAGER_TITLE" default:"Relationship Manager"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// WorkerConfig contains intervals for the background refresh workers.
// Defaults match what the upstream APIs tolerate on free tiers.
type WorkerConfig struct {
	QuoteRefreshInterval time.Duration `envconfig:"WORKER_QUOTE_REFRESH_INTERVAL" default:"15m"`
	NewsRefreshInterval  time.Duration `envconfig:"WORKER_NEWS_REFRESH_INTERVAL" default:"30m"`

	QuoteRefreshEnabled bool `envconfig:"WORKER_QUOTE_REFRESH_ENABLED" default:"true"`
	NewsRefreshEnabled  bool `envconfig:"WORKER_NEWS_REFRESH_ENABLED" default:"true"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
