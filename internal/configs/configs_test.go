package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("HISTORY_CAPACITY", "")
	t.Setenv("PROFANITY_WORDS", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Port)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Equal(t, DefaultHistoryCapacity, cfg.HistoryCapacity)
	assert.Equal(t, DefaultProfanityWords, cfg.ProfanityWords)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("HISTORY_CAPACITY", "50")
	t.Setenv("PROFANITY_WORDS", "alpha, beta ,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 50, cfg.HistoryCapacity)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.ProfanityWords)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("PORT", "80")
	_, err = LoadConfig()
	assert.Error(t, err)

	t.Setenv("PORT", "8080")
	t.Setenv("HISTORY_CAPACITY", "0")
	_, err = LoadConfig()
	assert.Error(t, err)
}
