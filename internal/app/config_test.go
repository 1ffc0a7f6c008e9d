package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, "http://127.0.0.1:8000/api", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
	assert.Equal(t, time.Minute, cfg.DashboardCacheTTL)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Empty(t, cfg.GotenbergURL)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.HasServiceAccount())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("APP_ENV", "production")
	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("API_SERVICE_USER", "worker")
	t.Setenv("API_SERVICE_PASSWORD", "clave")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 25, cfg.PageSize)
	assert.True(t, cfg.HasServiceAccount())
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "c")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("PAGE_SIZE", "0")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestTestModeFlag(t *testing.T) {
	t.Setenv("PANEL_TEST_MODE", "1")
	RefreshTestMode()
	assert.True(t, InTestMode())
	t.Setenv("PANEL_TEST_MODE", "")
	RefreshTestMode()
	assert.False(t, InTestMode())
}
