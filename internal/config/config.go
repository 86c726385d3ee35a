package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// nested keys: DOCWEB_SERVER__PORT sets server.port.
const EnvPrefix = "DOCWEB_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (DOCWEB_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: DOCWEB_TITLE -> title, DOCWEB_SERVER__PORT -> server.port.
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Index == "" {
		return fmt.Errorf("index is required")
	}
	if !strings.HasSuffix(c.Index, ".md") {
		return fmt.Errorf("index %q must be a .md file", c.Index)
	}

	if c.SummaryMD == "" {
		return fmt.Errorf("summary_md is required")
	}

	if c.DocsDir == "" && c.BaseURL == "" {
		return fmt.Errorf("docs_dir is required when base_url is not set")
	}

	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid base_url %q: must be an http(s) URL", c.BaseURL)
		}
	}

	if c.LogLevel != "" && !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", c.LogLevel)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535")
	}

	if c.Scroll.IntervalMS < 0 {
		return fmt.Errorf("scroll.interval_ms must be non-negative")
	}

	if c.Scroll.BackTopThreshold < 0 {
		return fmt.Errorf("scroll.backtop_threshold must be non-negative")
	}

	return nil
}

// ScrollInterval returns the animation frame delay.
func (c *Config) ScrollInterval() time.Duration {
	return time.Duration(c.Scroll.IntervalMS) * time.Millisecond
}
