package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/recommender")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.RecommendationTTL)
	assert.Equal(t, 30, cfg.RetentionDays)
	assert.Equal(t, 6, cfg.SweepIntervalHours)
	assert.Equal(t, 0, cfg.MinScore)
	assert.False(t, cfg.StrictAvoidKeywords)
	assert.True(t, cfg.JSONLogs)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("RECOMMENDATION_TTL_HOURS", "48")
	t.Setenv("RETENTION_DAYS", "14")
	t.Setenv("MIN_MATCH_SCORE", "35")
	t.Setenv("STRICT_AVOID_KEYWORDS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 48*time.Hour, cfg.RecommendationTTL)
	assert.Equal(t, 14, cfg.RetentionDays)
	assert.Equal(t, 35, cfg.MinScore)
	assert.True(t, cfg.StrictAvoidKeywords)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"ttl not a number", "RECOMMENDATION_TTL_HOURS", "soon"},
		{"ttl zero", "RECOMMENDATION_TTL_HOURS", "0"},
		{"retention negative", "RETENTION_DAYS", "-1"},
		{"min score above range", "MIN_MATCH_SCORE", "101"},
		{"strict not boolean", "STRICT_AVOID_KEYWORDS", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
