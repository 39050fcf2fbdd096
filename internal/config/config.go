// Package config loads tutor's settings from a .env file, an optional TOML
// file and the environment, in increasing order of precedence.
//
// The only required value is the Hugging Face token (HF_TOKEN). It is read
// from the environment or .env only, never from the TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"tutor/internal/dispatch"
	"tutor/internal/modes"
	"tutor/internal/provider"
)

const (
	EnvToken   = "HF_TOKEN"
	EnvBaseURL = "TUTOR_BASE_URL"
)

var ErrMissingToken = errors.New("HF_TOKEN not set: add your Hugging Face token to the environment or a .env file")

type Config struct {
	Token string `toml:"-"`

	// BaseURL is the OpenAI-compatible endpoint the client talks to.
	BaseURL string `toml:"base_url"`
	// Models overrides the fallback candidates; order is priority.
	Models []string `toml:"models"`
	// DefaultMode is the mode selected at startup.
	DefaultMode string `toml:"default_mode"`
	// LogFile receives debug logs while the TUI owns the terminal.
	LogFile string `toml:"log_file"`
}

func Default() *Config {
	return &Config{
		BaseURL:     provider.DefaultBaseURL,
		Models:      append([]string(nil), dispatch.DefaultCandidates...),
		DefaultMode: modes.Default().Name,
		LogFile:     "tutor-debug.log",
	}
}

// ConfigDir returns the tutor directory under the user's config dir.
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, herr := os.UserHomeDir()
		if herr != nil {
			return "", err
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "tutor"), nil
}

// ConfigPath returns the default TOML path, or "" if no config dir exists.
func ConfigPath() string {
	dir, err := ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// LoadDotenv loads path (".env" when empty) without overriding variables
// that are already set. A missing file is not an error.
func LoadDotenv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// empty or missing) and environment overrides. It does not validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) ApplyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv(EnvToken)); v != "" {
		c.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		c.BaseURL = v
	}
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.DefaultMode == "" {
		c.DefaultMode = def.DefaultMode
	}
	models := c.Models[:0]
	for _, m := range c.Models {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	c.Models = models
}

// Validate reports the first problem that prevents startup.
func (c *Config) Validate() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	if len(c.Models) == 0 {
		return errors.New("config: models must list at least one candidate")
	}
	if _, err := modes.Lookup(c.DefaultMode); err != nil {
		return fmt.Errorf("config: default_mode: %w", err)
	}
	return nil
}
