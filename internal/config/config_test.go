package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "public", cfg.Server.StaticDir)

	assert.False(t, cfg.AI.Enabled())
	assert.False(t, cfg.Azure.Configured())

	assert.Empty(t, cfg.Endpoints.Entries)
	assert.Equal(t, 5*time.Second, cfg.Endpoints.Timeout)

	assert.Equal(t, 85.0, cfg.Local.CPUWarn)
	assert.Equal(t, 90.0, cfg.Local.MemWarn)
	assert.Equal(t, 90.0, cfg.Local.DiskWarn)

	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, 10, cfg.Session.MaxTurns)

	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoadServerAddrForms(t *testing.T) {
	t.Setenv("PORT", "9090")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)

	t.Setenv("PORT", "127.0.0.1:9090")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)

	t.Setenv("PORT", "not a port")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadCustomEndpoints(t *testing.T) {
	t.Setenv("CUSTOM_ENDPOINTS", `[{"name":"api","url":"http://api.local/health"},{"name":"db","url":"http://db.local/ping"}]`)
	t.Setenv("CUSTOM_ENDPOINT_TIMEOUT_SEC", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	require.Len(t, cfg.Endpoints.Entries, 2)
	assert.Equal(t, "api", cfg.Endpoints.Entries[0].Name)
	assert.Equal(t, "http://db.local/ping", cfg.Endpoints.Entries[1].URL)
	assert.Equal(t, 2500*time.Millisecond, cfg.Endpoints.Timeout)
}

func TestLoadRejectsMalformedEndpointsJSON(t *testing.T) {
	t.Setenv("CUSTOM_ENDPOINTS", `{"name":"not-a-list"}`)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CUSTOM_ENDPOINTS")
}

func TestLoadSessionOverrides(t *testing.T) {
	t.Setenv("SESSION_TTL_MIN", "15")
	t.Setenv("CHAT_HISTORY_TURNS", "4")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 4, cfg.Session.MaxTurns)

	// Non-positive turn counts fall back to the default.
	t.Setenv("CHAT_HISTORY_TURNS", "0")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Session.MaxTurns)
}

func TestLoadThresholdOverrideAndError(t *testing.T) {
	t.Setenv("LOCAL_CPU_WARN", "70")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 70.0, cfg.Local.CPUWarn)

	t.Setenv("LOCAL_CPU_WARN", "hot")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOCAL_CPU_WARN")
}

func TestLoadCORSOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://ops.example.com ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:3000", "https://ops.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestAIConfigEnabled(t *testing.T) {
	assert.False(t, AIConfig{Model: "m"}.Enabled())
	assert.False(t, AIConfig{APIKey: "k"}.Enabled())
	assert.True(t, AIConfig{Model: "m", APIKey: "k"}.Enabled())
	assert.True(t, AIConfig{Model: "m", AccessKey: "ak", SecretKey: "sk"}.Enabled())
	assert.False(t, AIConfig{Model: "m", AccessKey: "ak"}.Enabled())
}
