package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all runtime settings for the moderation service.
type Config struct {
	AppPort   string
	DSN       string
	JWTSecret string

	// ML model serving endpoint. Empty means no external classifier is
	// configured and the heuristic fallback scorer is used for every call.
	ModelAPIURL   string
	ModelAPIToken string
	ModelTimeout  time.Duration

	ToxicityThreshold float64

	// Path to a profanity wordlist file. Empty means the embedded list.
	WordlistPath string
}

// Load reads configuration from a .env file (if present) and the process
// environment. Call LoadRemote first if remote config bootstrap is wanted.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug(".env file not found, using system environment variables")
	}

	cfg := &Config{
		AppPort:           getEnv("APP_PORT", "5014"),
		DSN:               os.Getenv("MYSQL_DSN"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		ModelAPIURL:       os.Getenv("MODEL_API_URL"),
		ModelAPIToken:     os.Getenv("MODEL_API_TOKEN"),
		WordlistPath:      os.Getenv("PROFANITY_WORDLIST"),
		ToxicityThreshold: 0.7,
		ModelTimeout:      10 * time.Second,
	}

	if cfg.DSN == "" {
		return nil, fmt.Errorf("config: MYSQL_DSN not set in environment")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-only"
	}

	if v := os.Getenv("TOXICITY_THRESHOLD"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil || t < 0 || t > 1 {
			return nil, fmt.Errorf("config: invalid TOXICITY_THRESHOLD %q", v)
		}
		cfg.ToxicityThreshold = t
	}

	if v := os.Getenv("MODEL_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("config: invalid MODEL_TIMEOUT_SECONDS %q", v)
		}
		cfg.ModelTimeout = time.Duration(secs) * time.Second
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
