package app

import (
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/hotprices/internal/fetch"
	"github.com/xenking/hotprices/internal/stores"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/87.0.4280.88 Safari/537.36"

// Config holds the application configuration, loadable from environment
// variables (HOTPRICES_ prefix) and an optional YAML config file. Run-level
// options (store, day, quick mode) are CLI flags, not configuration.
type Config struct {
	OutputDir string `default:"output" usage:"Directory for capture archives and the canonical history file"`
	DataDir   string `default:"static/data" usage:"Directory for public per-store data exports"`
	HTTP      HTTPConfig
	Retry     RetryConfig
}

// HTTPConfig controls the retailer HTTP clients.
type HTTPConfig struct {
	UserAgent string        `usage:"User-Agent header sent to retailer APIs"`
	Timeout   time.Duration `default:"30s" usage:"Per-request timeout"`
}

// RetryConfig controls the exponential-backoff retry policy applied to every
// outbound request.
type RetryConfig struct {
	MaxAttempts int           `default:"10"   usage:"Attempts per request before giving up"`
	MaxBackoff  time.Duration `default:"120s" usage:"Backoff ceiling between attempts"`
}

// LoadConfig loads configuration from environment variables and YAML files.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		// Flag parsing stays with the CLI layer; letting aconfig parse
		// os.Args would reject cobra's flags.
		SkipFlags: true,
		EnvPrefix: "HOTPRICES",
		Files:     []string{"config.yaml", "/etc/hotprices/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	if cfg.HTTP.UserAgent == "" {
		cfg.HTTP.UserAgent = defaultUserAgent
	}
	if cfg.Retry.MaxAttempts < 1 {
		return nil, errors.New("retry max attempts must be at least 1")
	}
	return &cfg, nil
}

// ClientConfig derives the store client settings from the configuration.
func (c *Config) ClientConfig() stores.ClientConfig {
	return stores.ClientConfig{
		UserAgent: c.HTTP.UserAgent,
		Timeout:   c.HTTP.Timeout,
		Retry: fetch.RetryPolicy{
			MaxAttempts: c.Retry.MaxAttempts,
			MaxBackoff:  c.Retry.MaxBackoff,
		},
	}
}
