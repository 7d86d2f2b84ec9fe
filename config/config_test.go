package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envOf(nil), nil)
	require.NoError(t, err)

	assert.Equal(t, Defaults(), cfg)
	assert.False(t, cfg.AuthEnabled())
}

func TestFromEnv_EnvironmentThenFlags(t *testing.T) {
	// GIVEN: Environment settings for every variable
	// WHEN: A -port flag is also passed
	// THEN: The flag wins for port, the environment for the rest

	env := envOf(map[string]string{
		"PORT":             "9000",
		"DB_PATH":          "/tmp/plan.db",
		"JWT_SECRET":       "s3cret",
		"REFRESH_INTERVAL": "30s",
		"ALLOWED_ORIGINS":  "https://a.example, https://b.example,",
	})

	cfg, err := FromEnv(env, []string{"-port", "7000"})
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "/tmp/plan.db", cfg.DBPath)
	assert.True(t, cfg.AuthEnabled())
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestFromEnv_InvalidInterval(t *testing.T) {
	_, err := FromEnv(envOf(map[string]string{"REFRESH_INTERVAL": "soon"}), nil)
	assert.Error(t, err)

	_, err = FromEnv(envOf(map[string]string{"REFRESH_INTERVAL": "-1m"}), nil)
	assert.Error(t, err)
}

func TestFromEnv_UnknownFlag(t *testing.T) {
	_, err := FromEnv(envOf(nil), []string{"-verbose"})
	assert.Error(t, err)
}
