package engine

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/accudio/llm-cohere/pkg/providers/cohere"
)

const (
	// DefaultKind is the plugin kind of providers that do not name one.
	DefaultKind = "cohere"

	// FallbackModel is used when neither the request nor the config names a model.
	FallbackModel = cohere.GenerateModelID
)

// Config is the top-level engine configuration.
type Config struct {
	DefaultModel string           `yaml:"default_model"`
	Providers    []ProviderConfig `yaml:"providers"`
	Log          LogConfig        `yaml:"log"`
}

// ProviderConfig describes one plugin instance.
type ProviderConfig struct {
	Name    string            `yaml:"name"`
	Kind    string            `yaml:"kind"`     // Plugin kind, default "cohere".
	BaseURL string            `yaml:"base_url"` // Empty means the plugin's default.
	Timeout string            `yaml:"timeout"`  // Duration string, e.g. "60s".
	Headers map[string]string `yaml:"headers,omitempty"`
}

// LogConfig controls the CLI's slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error.
	Format string `yaml:"format"` // text or json.
}

// DefaultConfig is used when no config file exists: a single cohere provider
// with default settings.
func DefaultConfig() Config {
	return Config{
		Providers: []ProviderConfig{{Name: DefaultKind, Kind: DefaultKind}},
		Log:       LogConfig{Level: "warn", Format: "text"},
	}
}

// LoadConfig reads a YAML file and returns a Config.
// Environment variables referenced as ${VAR} or $VAR in the YAML are expanded
// before parsing, so secrets and endpoints can live in the environment
// (e.g. loaded from a .env file) rather than in the file itself.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("engine: load config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("engine: parse config: %w", err)
	}

	cfg.applyDefaults()

	return cfg, nil
}

// LoadConfigOrDefault is LoadConfig, except that a missing file yields
// DefaultConfig.
func LoadConfigOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	return LoadConfig(path)
}

func (c *Config) applyDefaults() {
	for i := range c.Providers {
		if c.Providers[i].Kind == "" {
			c.Providers[i].Kind = DefaultKind
		}
		if c.Providers[i].Name == "" {
			c.Providers[i].Name = c.Providers[i].Kind
		}
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	names := make(map[string]struct{}, len(c.Providers))
	for _, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("engine: config: provider name is required")
		}
		if _, dup := names[p.Name]; dup {
			return fmt.Errorf("engine: config: duplicate provider name %q", p.Name)
		}
		names[p.Name] = struct{}{}

		if p.Kind == "" {
			return fmt.Errorf("engine: config: provider %q: kind is required", p.Name)
		}
		if _, err := p.timeout(); err != nil {
			return fmt.Errorf("engine: config: provider %q: %w", p.Name, err)
		}
	}

	if c.Log.Level != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
			return fmt.Errorf("engine: config: log level %q: %w", c.Log.Level, err)
		}
	}

	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("engine: config: log format %q must be text or json", c.Log.Format)
	}

	return nil
}

// providers returns the configured providers, or the default cohere provider
// when none are configured.
func (c Config) providers() []ProviderConfig {
	if len(c.Providers) == 0 {
		return DefaultConfig().Providers
	}
	return c.Providers
}

// timeout parses Timeout. Zero means the plugin's default.
func (p ProviderConfig) timeout() (time.Duration, error) {
	if p.Timeout == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", p.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", p.Timeout)
	}

	return d, nil
}
