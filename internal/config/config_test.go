package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 5, cfg.LoginLimit)
	assert.Equal(t, 5*time.Second, cfg.LoginWindow)
	assert.Equal(t, 5, cfg.OTPMaxAttempts)
	assert.True(t, cfg.EnforceCSRF)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "127.0.0.1:9090", cfg.MetricsAddr)
}

func TestLoadMetricsAddr(t *testing.T) {
	cfg, err := Load(nil, envMap(map[string]string{"REFOUNDLY_METRICS_ADDR": "10.0.0.5:9100"}))
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5:9100", cfg.MetricsAddr)

	cfg, err = Load([]string{"-metrics-addr", ""}, envMap(nil))
	require.NoError(t, err)
	assert.Empty(t, cfg.MetricsAddr, "an empty flag disables the listener")

	_, err = Load([]string{"-a", ":9090", "-metrics-addr", ":9090"}, envMap(nil))
	assert.Error(t, err)
}

func TestLoadEnvThenFlags(t *testing.T) {
	env := envMap(map[string]string{
		"REFOUNDLY_ADDR":          ":9000",
		"REFOUNDLY_DB":            "/tmp/env.db",
		"REFOUNDLY_SESSION_TTL":   "30m",
		"REFOUNDLY_LOGIN_LIMIT":   "3",
		"REFOUNDLY_ENFORCE_CSRF":  "false",
		"REFOUNDLY_MAX_UPLOAD_MB": "2",
		"REFOUNDLY_S3_BUCKET":     "images",
	})

	cfg, err := Load([]string{"-a", ":9100"}, env)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Addr, "flags override the environment")
	assert.Equal(t, "/tmp/env.db", cfg.DBPath)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 3, cfg.LoginLimit)
	assert.False(t, cfg.EnforceCSRF)
	assert.Equal(t, int64(2<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "images", cfg.S3Bucket)
}

func TestLoadRejectsBadValues(t *testing.T) {
	_, err := Load(nil, envMap(map[string]string{"REFOUNDLY_SESSION_TTL": "soon"}))
	assert.Error(t, err)

	_, err = Load([]string{"-log-level", "loud"}, envMap(nil))
	assert.Error(t, err)

	_, err = Load([]string{"extra"}, envMap(nil))
	assert.Error(t, err)

	_, err = Load(nil, envMap(map[string]string{"REFOUNDLY_LOGIN_LIMIT": "0"}))
	assert.Error(t, err)
}
