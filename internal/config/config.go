package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	UploadsDir  string
	Port        string
	LogLevel    string

	// Gemini configuration. Everything the LLM client needs is injected from
	// here; there are no compile-time constants for any of these knobs.
	GeminiAPIKey   string
	GeminiModel    string
	GeminiEndpoint string
	LLMTimeout     time.Duration
	LLMMaxRetries  int
	LLMBaseDelay   time.Duration
}

// Load reads the environment, optionally seeded from a .env file. A missing
// .env is not an error; real environment variables always win.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		// Fall back to the parent directory for `go run ./cmd/...` layouts.
		_ = godotenv.Load("../../.env")
	}

	return &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		UploadsDir:  envOr("UPLOADS_DIR", "./uploads"),
		Port:        envOr("PORT", "8080"),
		LogLevel:    envOr("LOG_LEVEL", "info"),

		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiEndpoint: envOr("GEMINI_ENDPOINT", "https://generativelanguage.googleapis.com/v1beta"),
		LLMTimeout:     envDuration("LLM_TIMEOUT", 60*time.Second),
		LLMMaxRetries:  envInt("LLM_MAX_RETRIES", 5),
		LLMBaseDelay:   envDuration("LLM_BASE_DELAY", 1*time.Second),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
