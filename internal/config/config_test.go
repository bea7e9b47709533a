package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "direct_demo", cfg.PositiveResponseMode)
	assert.Equal(t, 800*time.Millisecond, cfg.TypingDelay)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CONFLICT_RETRIES", "7")
	t.Setenv("FLOW_TYPING_DELAY", "1500ms")
	t.Setenv("POSITIVE_RESPONSE_MODE", "via_replied")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.ConflictRetries)
	assert.Equal(t, 1500*time.Millisecond, cfg.TypingDelay)
	assert.Equal(t, "via_replied", cfg.PositiveResponseMode)
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	base := Config{
		StoreBackend:         StoreMemory,
		ConflictPolicy:       "retry",
		PositiveResponseMode: "direct_demo",
		LanguageFallback:     "english",
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.StoreBackend = "sqlite"
	assert.Error(t, bad.Validate())

	bad = base
	bad.StoreBackend = StorePostgres
	assert.Error(t, bad.Validate(), "postgres requires DATABASE_URL")

	bad = base
	bad.ConflictPolicy = "merge"
	assert.Error(t, bad.Validate())

	bad = base
	bad.PositiveResponseMode = "skip"
	assert.Error(t, bad.Validate())

	bad = base
	bad.LanguageFallback = "guess"
	assert.Error(t, bad.Validate())
}
