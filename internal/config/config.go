// Package config loads configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Narrator providers.
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// Config holds runtime settings.
type Config struct {
	ListenAddr        string        `validate:"required"`
	CourseTitle       string        `validate:"required"`
	ClassSize         int           `validate:"min=1,max=500"`
	TickMin           time.Duration `validate:"gt=0"`
	TickMax           time.Duration `validate:"gtefield=TickMin"`
	InterventionDelay time.Duration `validate:"gte=0"`
	NarratorProvider  string        `validate:"oneof=groq openai gemini none"`
	NarratorModel     string
	GroqAPIKey        string
	OpenAIAPIKey      string
	GoogleAPIKey      string
	LogLevel          string `validate:"oneof=debug info warn error"`
}

// Load reads an optional .env file and env vars, applies defaults, and validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg := Config{
		ListenAddr:       os.Getenv("LISTEN_ADDR"),
		CourseTitle:      os.Getenv("COURSE_TITLE"),
		NarratorProvider: os.Getenv("NARRATOR_PROVIDER"),
		NarratorModel:    os.Getenv("NARRATOR_MODEL"),
		GroqAPIKey:       os.Getenv("GROQ_API_KEY"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		GoogleAPIKey:     os.Getenv("GOOGLE_API_KEY"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
	}

	cfg.ClassSize = getEnvInt("CLASS_SIZE", 16)
	cfg.TickMin = getEnvDuration("TICK_MIN", 3*time.Second)
	cfg.TickMax = getEnvDuration("TICK_MAX", 5*time.Second)
	cfg.InterventionDelay = getEnvDuration("INTERVENTION_DELAY", 2*time.Second)

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.CourseTitle == "" {
		cfg.CourseTitle = "CS101 - Introduction to AI"
	}
	if cfg.NarratorProvider == "" {
		cfg.NarratorProvider = ProviderGroq
	}
	if cfg.NarratorModel == "" {
		cfg.NarratorModel = defaultModel(cfg.NarratorProvider)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// NarratorKey returns the API key for the configured provider, or "" when none is set.
func (c Config) NarratorKey() string {
	switch c.NarratorProvider {
	case ProviderGroq:
		return c.GroqAPIKey
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderGemini:
		return c.GoogleAPIKey
	default:
		return ""
	}
}

// SlogLevel maps LogLevel to a slog level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderGemini:
		return "gemini-2.5-flash"
	default:
		return "llama-3.3-70b-versatile"
	}
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
		slog.Warn("invalid integer in environment, using default", "key", key, "val", val, "default", defaultVal)
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		slog.Warn("invalid duration in environment, using default", "key", key, "val", val, "default", defaultVal)
	}
	return defaultVal
}
