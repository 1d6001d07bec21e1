// Package config loads the settings shared by all commands.
//
// Values are layered: built-in defaults, then the YAML config file, then
// environment variables. Command-line flags are applied on top by the cmd
// package before Validate is called.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/devnullvoid/pvetui-stats/internal/domain"
	"github.com/devnullvoid/pvetui-stats/internal/store"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full application configuration.
type Config struct {
	GitHub GitHubConfig `yaml:"github"`
	Cache  CacheConfig  `yaml:"cache"`
	Server ServerConfig `yaml:"server"`
}

// GitHubConfig selects the tracked repository and how to reach the API.
type GitHubConfig struct {
	Owner  string `yaml:"owner"`
	Repo   string `yaml:"repo"`
	Token  string `yaml:"token"`
	APIURL string `yaml:"api_url"`
}

// CacheConfig selects the store backend and the freshness window.
type CacheConfig struct {
	Store string        `yaml:"store"`
	Path  string        `yaml:"path"`
	TTL   time.Duration `yaml:"ttl"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Listen        string `yaml:"listen"`
	AllowedOrigin string `yaml:"allowed_origin"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		GitHub: GitHubConfig{
			Owner: "devnullvoid",
			Repo:  "pvetui",
		},
		Cache: CacheConfig{
			Store: store.BackendFile,
			TTL:   domain.DefaultTTL,
		},
		Server: ServerConfig{
			Listen:        ":8080",
			AllowedOrigin: "*",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// configPath and the environment. A .env file in the working directory is
// loaded first; existing environment variables win over it.
func Load(configPath string) (*Config, error) {
	// Missing .env files are normal.
	_ = godotenv.Load(".env")

	cfg := Default()
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Expand environment variables in the YAML content
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setString("GITHUB_TOKEN", &c.GitHub.Token)
	setString("PVETUI_STATS_OWNER", &c.GitHub.Owner)
	setString("PVETUI_STATS_REPO", &c.GitHub.Repo)
	setString("PVETUI_STATS_API_URL", &c.GitHub.APIURL)
	setString("PVETUI_STATS_STORE", &c.Cache.Store)
	setString("PVETUI_STATS_STORE_PATH", &c.Cache.Path)
	setString("PVETUI_STATS_LISTEN", &c.Server.Listen)
	setString("PVETUI_STATS_ALLOWED_ORIGIN", &c.Server.AllowedOrigin)

	if v := os.Getenv("PVETUI_STATS_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: PVETUI_STATS_TTL: %v", ErrInvalid, err)
		}
		c.Cache.TTL = ttl
	}
	return nil
}

// Validate checks the final configuration.
func (c *Config) Validate() error {
	if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
		return fmt.Errorf("%w: github owner and repo are required", ErrInvalid)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("%w: cache ttl must be positive, got %s", ErrInvalid, c.Cache.TTL)
	}
	switch c.Cache.Store {
	case store.BackendFile, store.BackendSQLite, store.BackendMemory:
	default:
		return fmt.Errorf("%w: unknown cache store %q", ErrInvalid, c.Cache.Store)
	}
	return nil
}
