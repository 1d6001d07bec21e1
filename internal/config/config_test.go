package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	testCases := []struct {
		name        string
		content     string
		env         map[string]string
		expected    func() *Config
		expectError bool
	}{
		{
			name:     "no file yields defaults",
			expected: Default,
		},
		{
			name: "file overrides defaults",
			content: `
github:
  owner: someone
  repo: something
  api_url: https://ghe.example.com/api/v3
cache:
  store: sqlite
  path: /var/lib/pvetui-stats/stats.db
  ttl: 15m
server:
  listen: 127.0.0.1:9000
`,
			expected: func() *Config {
				cfg := Default()
				cfg.GitHub.Owner = "someone"
				cfg.GitHub.Repo = "something"
				cfg.GitHub.APIURL = "https://ghe.example.com/api/v3"
				cfg.Cache.Store = "sqlite"
				cfg.Cache.Path = "/var/lib/pvetui-stats/stats.db"
				cfg.Cache.TTL = 15 * time.Minute
				cfg.Server.Listen = "127.0.0.1:9000"
				return cfg
			},
		},
		{
			name:    "environment wins over file and is expanded inside it",
			content: "github:\n  token: ${STATS_TEST_TOKEN}\ncache:\n  ttl: 2h\n",
			env: map[string]string{
				"STATS_TEST_TOKEN":   "from-file",
				"PVETUI_STATS_TTL":   "30m",
				"PVETUI_STATS_STORE": "memory",
			},
			expected: func() *Config {
				cfg := Default()
				cfg.GitHub.Token = "from-file"
				cfg.Cache.TTL = 30 * time.Minute
				cfg.Cache.Store = "memory"
				return cfg
			},
		},
		{
			name:        "malformed ttl in environment",
			env:         map[string]string{"PVETUI_STATS_TTL": "soon"},
			expectError: true,
		},
		{
			name:        "malformed yaml",
			content:     "github: [",
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("GITHUB_TOKEN", "")
			for key, value := range tc.env {
				t.Setenv(key, value)
			}
			path := ""
			if tc.content != "" {
				path = writeConfig(t, tc.content)
			}

			cfg, err := Load(path)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected(), cfg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(cfg *Config)
		valid  bool
	}{
		{name: "defaults", mutate: func(cfg *Config) {}, valid: true},
		{name: "empty owner", mutate: func(cfg *Config) { cfg.GitHub.Owner = "" }},
		{name: "empty repo", mutate: func(cfg *Config) { cfg.GitHub.Repo = "" }},
		{name: "zero ttl", mutate: func(cfg *Config) { cfg.Cache.TTL = 0 }},
		{name: "unknown store", mutate: func(cfg *Config) { cfg.Cache.Store = "redis" }},
		{name: "sqlite store", mutate: func(cfg *Config) { cfg.Cache.Store = "sqlite" }, valid: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalid)
			}
		})
	}
}
