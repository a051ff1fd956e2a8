package config

import (
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
)

// ProviderEnv overrides the active provider URL when set.
const ProviderEnv = "WALLET_PROVIDER_URL"

// FileName is the config file created in the user's home directory.
const FileName = ".charm-transfer-config.json"

// Config represents the application configuration
type Config struct {
	Providers            []Provider `json:"providers"`
	SupportedChains      []int64    `json:"supported_chains"`
	PollIntervalMs       int        `json:"poll_interval_ms"`
	SignMessage          string     `json:"sign_message"`
	DesktopNotifications bool       `json:"desktop_notifications"`
	Logger               bool       `json:"logger"`
}

// Provider is a wallet endpoint speaking eth_requestAccounts.
type Provider struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

// DefaultPath returns the config location in the home directory, falling
// back to the working directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(home, FileName)
}

// Load reads the config from the specified path
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}

	return cfg, nil
}

// Save writes the config to the specified path
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write config %s", path)
	}
	return nil
}

// DefaultConfig returns a new configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		Providers: []Provider{
			{
				Name:   "Frame",
				URL:    "http://127.0.0.1:1248",
				Active: true,
			},
		},
		SupportedChains:      []int64{11155111},
		PollIntervalMs:       12000,
		SignMessage:          "👋",
		DesktopNotifications: false,
		Logger:               false,
	}
}

// LoadOrCreate loads config from path, or creates a default one if not found.
// An unreadable file yields the defaults without touching the file.
func LoadOrCreate(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		return cfg, Save(path, cfg)
	}

	cfg, err := Load(path)
	if err != nil {
		return DefaultConfig(), err
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if len(c.Providers) == 0 {
		c.Providers = def.Providers
	}
	if c.PollIntervalMs <= 0 {
		c.PollIntervalMs = def.PollIntervalMs
	}
	if c.SignMessage == "" {
		c.SignMessage = def.SignMessage
	}
}

// ActiveProvider returns the provider marked active, or the first one.
func (c Config) ActiveProvider() Provider {
	for _, p := range c.Providers {
		if p.Active {
			return p
		}
	}
	if len(c.Providers) > 0 {
		return c.Providers[0]
	}
	return Provider{}
}

// ProviderURL resolves the endpoint to dial: flag, then env, then file.
func (c Config) ProviderURL(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(ProviderEnv); env != "" {
		return env
	}
	return c.ActiveProvider().URL
}

// ChainIDs converts SupportedChains for the connector.
func (c Config) ChainIDs() []*big.Int {
	ids := make([]*big.Int, 0, len(c.SupportedChains))
	for _, id := range c.SupportedChains {
		ids = append(ids, big.NewInt(id))
	}
	return ids
}

// PollInterval returns the event polling period.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}
