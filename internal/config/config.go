package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultProfile is the profile name a fresh config starts with.
const DefaultProfile = "default"

// DefaultListenAddr is where `lcs serve` binds unless configured otherwise.
const DefaultListenAddr = "127.0.0.1:8321"

// Config is the flat LCS configuration. Database selection is explicit:
// commands resolve the active profile to a path at wiring time, never
// per-request.
type Config struct {
	Version       string            `json:"version"`
	ActiveProfile string            `json:"active_profile"`
	Profiles      map[string]string `json:"profiles"` // profile name -> sqlite path
	ListenAddr    string            `json:"listen_addr,omitempty"`
	DefaultActor  string            `json:"default_actor,omitempty"` // username assumed by CLI commands
}

// Dir returns the config directory (~/.lcs).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".lcs"), nil
}

// Load reads config.json from dir. Returns error if no config found -
// caller should handle accordingly (usually by suggesting `lcs db init`).
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]string)
	}

	return &cfg, nil
}

// Save writes config.json to dir, creating the directory if needed.
func Save(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// LoadOrInit loads the config from dir, creating a default one when the
// file does not exist yet.
func LoadOrInit(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg = Default(dir)
	if err := Save(dir, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a fresh config with a single profile pointing at
// dir/lcs.db.
func Default(dir string) *Config {
	return &Config{
		Version:       "1",
		ActiveProfile: DefaultProfile,
		Profiles: map[string]string{
			DefaultProfile: filepath.Join(dir, "lcs.db"),
		},
		ListenAddr: DefaultListenAddr,
	}
}

// ActiveDBPath resolves the active profile to its database path.
func (c *Config) ActiveDBPath() (string, error) {
	path, ok := c.Profiles[c.ActiveProfile]
	if !ok {
		return "", fmt.Errorf("active profile %q has no database path", c.ActiveProfile)
	}
	return path, nil
}

// Listen returns the configured listen address or the default.
func (c *Config) Listen() string {
	if c.ListenAddr == "" {
		return DefaultListenAddr
	}
	return c.ListenAddr
}
