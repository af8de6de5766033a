package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("POSTGRES_USER", "app")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "moviepass")
	t.Setenv("TMDB_API_KEY", "tmdb-key")
	t.Setenv("JWT_SECRET", "jwt-secret")
}

func TestNew(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REDIS_DB", "3")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "app", cfg.Postgres.User)
	assert.Equal(t, "disable", cfg.Postgres.SSLMode)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.BaseURL)
	assert.Equal(t, "en-US", cfg.TMDB.Language)
	assert.Equal(t, "jwt-secret", cfg.Auth.JWTSecret)
}

func TestNew_RedisDBDefaultsToZero(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REDIS_DB", "")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestNew_InvalidRedisDB(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := New()
	assert.Error(t, err)
}

func TestNew_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := New()
	assert.Error(t, err)
}
