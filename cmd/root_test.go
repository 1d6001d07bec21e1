package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devnullvoid/pvetui-stats/internal/config"
	"github.com/devnullvoid/pvetui-stats/internal/metrics"
)

func TestLoadConfig_FlagsOverrideDefaults(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	require.NoError(t, statsCmd.ParseFlags([]string{
		"--owner", "someone",
		"--repo", "something",
		"--store", "memory",
		"--ttl", "5m",
		"--api-url", "https://ghe.example.com/api/v3",
	}))

	cfg, err := loadConfig(statsCmd)
	require.NoError(t, err)

	assert.Equal(t, "someone", cfg.GitHub.Owner)
	assert.Equal(t, "something", cfg.GitHub.Repo)
	assert.Equal(t, "memory", cfg.Cache.Store)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "https://ghe.example.com/api/v3", cfg.GitHub.APIURL)

	svc, st, err := newStatsService(cfg, metrics.NoopRecorder{}, newLogger(statsCmd))
	require.NoError(t, err)
	defer st.Close()
	assert.Equal(t, 5*time.Minute, svc.TTL())
}

func TestLoadConfig_RejectsInvalidFlags(t *testing.T) {
	require.NoError(t, cacheShowCmd.ParseFlags([]string{"--store", "redis"}))

	_, err := loadConfig(cacheShowCmd)
	assert.ErrorIs(t, err, config.ErrInvalid)
}
