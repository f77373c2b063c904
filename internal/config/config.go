package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// DemoConfig describes one unit of work run by resgroup-demo.
type DemoConfig struct {
	Broker   string   `toml:"broker"`
	Queue    string   `toml:"queue"`
	Messages int      `toml:"messages"`
	LogLevel string   `toml:"log_level"`
	Timing   bool     `toml:"timing"`
	FailOn   FailOn   `toml:"fail_on"`
}

// FailOn lists the handle kinds whose release or creation should fail.
type FailOn struct {
	Close  []string `toml:"close"`
	Create []string `toml:"create"`
}

var validKinds = map[string]bool{
	"connection": true,
	"session":    true,
	"consumer":   true,
	"producer":   true,
}

func Default() DemoConfig {
	return DemoConfig{
		Broker:   "local",
		Queue:    "orders",
		Messages: 3,
		LogLevel: "info",
	}
}

// LoadDemoConfig reads a TOML file. An empty path returns the defaults.
func LoadDemoConfig(path string) (DemoConfig, error) {
	cfg := Default()
	if path != "" {
		if err := loadToml(path, &cfg); err != nil {
			return DemoConfig{}, err
		}
	}
	applyDefaults(&cfg)
	if err := ValidateDemoConfig(cfg); err != nil {
		return DemoConfig{}, err
	}
	return cfg, nil
}

// ParseDemoConfig decodes TOML held in memory.
func ParseDemoConfig(data string) (DemoConfig, error) {
	cfg := Default()
	if _, err := toml.Decode(data, &cfg); err != nil {
		return DemoConfig{}, fmt.Errorf("config parse failed: %w", err)
	}
	applyDefaults(&cfg)
	if err := ValidateDemoConfig(cfg); err != nil {
		return DemoConfig{}, err
	}
	return cfg, nil
}

func ValidateDemoConfig(cfg DemoConfig) error {
	if cfg.Messages < 0 {
		return fmt.Errorf("messages must not be negative (got %d)", cfg.Messages)
	}
	for _, kind := range append(append([]string{}, cfg.FailOn.Close...), cfg.FailOn.Create...) {
		if !validKinds[kind] {
			return fmt.Errorf("unknown handle kind %q", kind)
		}
	}
	return nil
}

func applyDefaults(cfg *DemoConfig) {
	cfg.Broker = strings.TrimSpace(cfg.Broker)
	if cfg.Broker == "" {
		cfg.Broker = "local"
	}
	cfg.Queue = strings.TrimSpace(cfg.Queue)
	if cfg.Queue == "" {
		cfg.Queue = "orders"
	}
	for i, kind := range cfg.FailOn.Close {
		cfg.FailOn.Close[i] = strings.ToLower(strings.TrimSpace(kind))
	}
	for i, kind := range cfg.FailOn.Create {
		cfg.FailOn.Create[i] = strings.ToLower(strings.TrimSpace(kind))
	}
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if _, err := toml.Decode(string(data), out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}
