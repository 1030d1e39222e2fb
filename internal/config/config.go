// Package config handles reading and writing ~/.dayflow/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/dayflow/internal/provider"
)

// Config is the top-level structure for config.yaml.
type Config struct {
	Version  int               `yaml:"version"`
	Server   ServerConfig      `yaml:"server"`
	Provider provider.Settings `yaml:"provider"`
	Session  SessionConfig     `yaml:"session"`
	History  HistoryConfig     `yaml:"history"`
	Log      LogConfig         `yaml:"log"`
}

// ServerConfig controls the HTTP capability surface.
type ServerConfig struct {
	Address         string `yaml:"address"`
	ReadTimeout     int    `yaml:"read_timeout"`     // seconds
	WriteTimeout    int    `yaml:"write_timeout"`    // seconds
	ShutdownTimeout int    `yaml:"shutdown_timeout"` // seconds
}

// SessionConfig locates the focus session state file.
type SessionConfig struct {
	StatePath string `yaml:"state_path"`
}

// HistoryConfig locates the focus history database.
type HistoryConfig struct {
	DBPath string `yaml:"db_path"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // json | text
}

const (
	configDirName  = ".dayflow"
	configFileName = "config.yaml"
)

// Dir returns the dayflow config directory, ~/.dayflow by default. The
// DAYFLOW_HOME environment variable overrides it.
func Dir() (string, error) {
	if dir := os.Getenv("DAYFLOW_HOME"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, configDirName), nil
}

// Load reads config.yaml from dir, falling back to defaults when the file
// does not exist. The provider API key is resolved from the environment when
// the file carries none.
func Load(dir string) (*Config, error) {
	cfg := Default(dir)

	path := filepath.Join(dir, configFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Write writes cfg to config.yaml in dir, creating the directory if needed.
func Write(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dir, configFileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Default returns a Config populated with sensible defaults, with state
// files anchored under dir.
func Default(dir string) *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     30,
			WriteTimeout:    300,
			ShutdownTimeout: 15,
		},
		Provider: provider.Settings{
			Name: "anthropic",
		},
		Session: SessionConfig{
			StatePath: filepath.Join(dir, "session.json"),
		},
		History: HistoryConfig{
			DBPath: filepath.Join(dir, "history.db"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
