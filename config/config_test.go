package config_test

import (
	"testing"
	"time"

	"CourierBot/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "token")
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("FIREBASE_DATABASE_URL", "")

		cfg, err := config.Load()
		require.NoError(t, err)
		assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
		assert.Equal(t, 20*time.Second, cfg.ProviderTimeout)
		assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
		assert.Equal(t, 3, cfg.VisionMaxCorrectableErrors)
		assert.Equal(t, 1000, cfg.FundsTopUpAmount)
		assert.False(t, cfg.VisionEnabled())
		assert.False(t, cfg.Firebase.Enabled())
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "token")
		t.Setenv("GEMINI_API_KEY", "key")
		t.Setenv("SESSION_TTL", "30m")
		t.Setenv("VISION_MAX_CORRECTABLE_ERRORS", "5")
		t.Setenv("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "/tmp/sa.json")
		t.Setenv("FIREBASE_DATABASE_URL", "https://x.firebaseio.com")
		t.Setenv("LOG_PRETTY", "true")

		cfg, err := config.Load()
		require.NoError(t, err)
		assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
		assert.Equal(t, 5, cfg.VisionMaxCorrectableErrors)
		assert.True(t, cfg.VisionEnabled())
		assert.True(t, cfg.Firebase.Enabled())
		assert.True(t, cfg.LogPretty)
	})

	t.Run("missing token", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "")
		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "token")
		t.Setenv("PROVIDER_TIMEOUT", "soon")
		_, err := config.Load()
		assert.ErrorContains(t, err, "PROVIDER_TIMEOUT")
	})
}
