// Package config loads run settings from a YAML file. Command line flags
// take precedence over everything here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	SNMP    SNMP    `yaml:"snmp"`
	Output  Output  `yaml:"output"`
	Control Control `yaml:"control"`
	Log     Log     `yaml:"log"`
}

type SNMP struct {
	Timeout time.Duration `yaml:"timeout"`
	Retries int           `yaml:"retries"`
	Port    uint16        `yaml:"port"`
	Verbose bool          `yaml:"verbose,omitempty"`
}

type Output struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // "csv", "json" or "both"
}

type Control struct {
	Host  string `yaml:"host"`
	Port  int    `yaml:"port"`
	Token string `yaml:"token,omitempty"`
}

type Log struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

var defaultConfig = Config{
	SNMP: SNMP{
		Timeout: 3 * time.Second,
		Retries: 1,
		Port:    161,
	},
	Output: Output{
		Format: "csv",
	},
	Control: Control{
		Host: "127.0.0.1",
		Port: 8791,
	},
	Log: Log{
		Level: "info",
	},
}

// Default returns the built-in settings.
func Default() Config {
	return defaultConfig
}

// Load reads a config file. With an empty path the default locations are
// probed; when none exists the built-in defaults apply. An explicit path
// that cannot be read is an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if path == "" {
		candidates := []string{
			"/etc/wirecheck/config.yaml",
			filepath.Join(os.Getenv("HOME"), ".config/wirecheck/config.yaml"),
			"wirecheck.yaml",
		}
		for _, c := range candidates {
			if _, err := os.Stat(c); err == nil {
				path = c
				break
			}
		}
	}
	if path == "" {
		return defaultConfig, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if explicit {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		return defaultConfig, nil
	}

	cfg := defaultConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Output.Format {
	case "csv", "json", "both":
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	if c.SNMP.Timeout <= 0 {
		return fmt.Errorf("snmp timeout must be positive")
	}
	if c.SNMP.Retries < 0 {
		return fmt.Errorf("snmp retries must not be negative")
	}
	return nil
}
