package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the newsquant binaries.
type Config struct {
	Upstream Upstream `yaml:"upstream"`
	Scan     Scan     `yaml:"scan"`
	Web      Web      `yaml:"web"`
	Logging  Logging  `yaml:"logging"`
}

// Upstream locates the scan API.
type Upstream struct {
	BaseURL string   `yaml:"base_url"`
	Timeout Duration `yaml:"timeout"`
}

// Scan lists the selectable periods and industries.
type Scan struct {
	Periods       []Option `yaml:"periods"`
	Industries    []Option `yaml:"industries"`
	DefaultPeriod string   `yaml:"default_period"`
	AllIndustries string   `yaml:"all_industries"`
}

// Option is one selectable value and the label shown for it.
type Option struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// Web holds the browser front end listener configuration.
type Web struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
	Burst           int    `yaml:"burst"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Duration is a time.Duration written as a Go duration string in YAML.
type Duration time.Duration

// UnmarshalYAML parses values such as "30s" or "1m30s".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Values returns the option values in order.
func Values(opts []Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}

// Addr returns the web listen address.
func (w Web) Addr() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns a configuration that works against a local scan API.
func Default() *Config {
	return &Config{
		Upstream: Upstream{
			BaseURL: "http://localhost:8000",
			Timeout: Duration(30 * time.Second),
		},
		Scan: Scan{
			Periods: []Option{
				{Value: "1d", Label: "Past day"},
				{Value: "1w", Label: "Past week"},
				{Value: "1m", Label: "Past month"},
			},
			Industries: []Option{
				{Value: "all", Label: "All industries"},
				{Value: "fnb", Label: "Food & beverage"},
				{Value: "tech", Label: "Technology"},
			},
			DefaultPeriod: "1d",
			AllIndustries: "all",
		},
		Web: Web{
			Host:            "0.0.0.0",
			Port:            8080,
			RateLimitPerMin: 60,
			Burst:           5,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the YAML configuration file at the given path on top of
// Default, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default (with
// environment overrides) when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
		if err := applyEnvOverrides(cfg); err != nil {
			return nil, err
		}
		return cfg, cfg.Validate()
	}
	return cfg, err
}

// Validate checks the invariants the binaries rely on.
func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return errors.New("upstream.base_url must be set")
	}
	if len(c.Scan.Periods) == 0 {
		return errors.New("scan.periods must list at least one period")
	}
	for _, p := range c.Scan.Periods {
		if p.Value == "" {
			return errors.New("scan.periods: empty value")
		}
	}
	if c.Scan.DefaultPeriod == "" {
		c.Scan.DefaultPeriod = c.Scan.Periods[0].Value
	}
	found := false
	for _, p := range c.Scan.Periods {
		if p.Value == c.Scan.DefaultPeriod {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("scan.default_period %q is not one of scan.periods", c.Scan.DefaultPeriod)
	}
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		return fmt.Errorf("web.port %d out of range", c.Web.Port)
	}
	return nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set. A value that cannot
// be parsed is an error.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("NEWSQUANT_UPSTREAM_URL"); v != "" {
		cfg.Upstream.BaseURL = v
	}

	if v := os.Getenv("NEWSQUANT_WEB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NEWSQUANT_WEB_PORT %q: not a port number", v)
		}
		cfg.Web.Port = port
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	return nil
}
