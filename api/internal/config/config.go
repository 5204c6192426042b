package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"invoice-extractor/api/internal/gemini"
)

type Config struct {
	Port string

	GoogleAPIKey string
	GeminiModel  string

	ExtractTimeout time.Duration

	DatabaseURL string
	CacheMaxAge time.Duration

	TelegramBotToken string
	WebhookURL       string
}

// ModelConfig returns the generation settings for the configured model.
func (c *Config) ModelConfig() gemini.ModelConfig {
	return gemini.DefaultModelConfig(c.GeminiModel)
}

// LoadDotEnv reads .env into the process environment when it exists.
// Variables already set win.
func LoadDotEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env: %v", err)
	}
}

func mustEnv(k string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		log.Fatalf("missing required env %s", k)
	}
	return v
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	v := getEnv(k, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: bad %s=%q, using %s", k, v, def)
		return def
	}
	return d
}

// APIKey returns GOOGLE_API_KEY, falling back to GEMINI_API_KEY.
func APIKey() string {
	if v := getEnv("GOOGLE_API_KEY", ""); v != "" {
		return v
	}
	return getEnv("GEMINI_API_KEY", "")
}

// Load reads the environment. Missing API key is fatal.
func Load() *Config {
	LoadDotEnv()
	key := APIKey()
	if key == "" {
		log.Fatalf("missing required env GOOGLE_API_KEY")
	}
	return &Config{
		Port: getEnv("PORT", "8000"),

		GoogleAPIKey: key,
		GeminiModel:  getEnv("GEMINI_MODEL", gemini.DefaultModel),

		ExtractTimeout: getDuration("EXTRACT_TIMEOUT", 180*time.Second),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		CacheMaxAge: getDuration("CACHE_MAX_AGE", 24*time.Hour),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),
	}
}

// MustTelegramToken returns TELEGRAM_BOT_TOKEN or exits.
func (c *Config) MustTelegramToken() string {
	if c.TelegramBotToken != "" {
		return c.TelegramBotToken
	}
	return mustEnv("TELEGRAM_BOT_TOKEN")
}
