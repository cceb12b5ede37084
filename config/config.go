package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken string

	GeminiAPIKey string
	GeminiModel  string

	ProviderBaseURL string
	ProviderTimeout time.Duration

	Firebase FirebaseConfig
	DataDir  string

	SessionTTL      time.Duration
	SessionCapacity int

	VisionMaxCorrectableErrors int
	FundsTopUpAmount           int

	HealthAddr string
	LogLevel   string
	LogPretty  bool
}

type FirebaseConfig struct {
	ServiceAccountKeyPath string
	DatabaseURL           string
}

// Enabled reports whether both Firebase settings are present.
func (f FirebaseConfig) Enabled() bool {
	return f.ServiceAccountKeyPath != "" && f.DatabaseURL != ""
}

// VisionEnabled reports whether photo extraction can be offered.
func (c *Config) VisionEnabled() bool {
	return c.GeminiAPIKey != ""
}

// Load reads the environment, after loading a .env file when one exists. Only a
// missing bot token is an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:     env("TELEGRAM_BOT_TOKEN"),
		GeminiAPIKey: env("GEMINI_API_KEY"),
		GeminiModel:  firstNonEmpty(env("GEMINI_MODEL"), "gemini-2.5-flash"),

		ProviderBaseURL: firstNonEmpty(env("PROVIDER_BASE_URL"), "https://yolpak-api.shinypi.net"),

		Firebase: FirebaseConfig{
			ServiceAccountKeyPath: env("FIREBASE_SERVICE_ACCOUNT_KEY_PATH"),
			DatabaseURL:           env("FIREBASE_DATABASE_URL"),
		},
		DataDir: firstNonEmpty(env("DATA_DIR"), "."),

		HealthAddr: env("HEALTH_ADDR"),
		LogLevel:   firstNonEmpty(env("LOG_LEVEL"), "info"),
	}
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}

	var err error
	if cfg.ProviderTimeout, err = duration("PROVIDER_TIMEOUT", 20*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = duration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SessionCapacity, err = integer("SESSION_CAPACITY", 10000); err != nil {
		return nil, err
	}
	if cfg.VisionMaxCorrectableErrors, err = integer("VISION_MAX_CORRECTABLE_ERRORS", 3); err != nil {
		return nil, err
	}
	if cfg.FundsTopUpAmount, err = integer("FUNDS_TOP_UP_AMOUNT", 1000); err != nil {
		return nil, err
	}
	if raw := env("LOG_PRETTY"); raw != "" {
		if cfg.LogPretty, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("invalid LOG_PRETTY %q: %w", raw, err)
		}
	}
	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func duration(key string, def time.Duration) (time.Duration, error) {
	raw := env(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, raw)
	}
	return d, nil
}

func integer(key string, def int) (int, error) {
	raw := env(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", key, raw)
	}
	return n, nil
}
