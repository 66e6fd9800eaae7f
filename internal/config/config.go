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
	// Server
	Port     string
	Env      string // development, staging, production
	LogLevel string

	// Financial Modeling Prep
	FMPAPIKey      string
	FMPBaseURL     string
	StatementLimit int
	FMPRPS         int
	FetchTimeout   time.Duration
	CacheTTL       time.Duration

	// Compare
	MaxCompareTickers  int
	CompareConcurrency int

	// Render sessions
	SessionMax  int
	SessionIdle time.Duration

	// Search history (optional)
	DatabaseURL string

	// Firebase (optional, scopes search history per user)
	FirebaseProjectID       string
	FirebaseCredentialsFile string

	// Rate Limiting
	RateLimitRPS int

	// CORS
	AllowedOrigins []string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first but never overrides variables already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		FMPAPIKey:               getEnv("FMP_API_KEY", ""),
		FMPBaseURL:              strings.TrimRight(getEnv("FMP_BASE_URL", "https://financialmodelingprep.com/api/v3"), "/"),
		StatementLimit:          getEnvInt("STATEMENT_LIMIT", 5),
		FMPRPS:                  getEnvInt("FMP_RPS", 5),
		FetchTimeout:            getEnvDuration("FETCH_TIMEOUT", 20*time.Second),
		CacheTTL:                getEnvDuration("CACHE_TTL", 10*time.Minute),
		MaxCompareTickers:       getEnvInt("MAX_COMPARE_TICKERS", 6),
		CompareConcurrency:      getEnvInt("COMPARE_CONCURRENCY", 3),
		SessionMax:              getEnvInt("SESSION_MAX", 1000),
		SessionIdle:             getEnvDuration("SESSION_IDLE", 30*time.Minute),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		RateLimitRPS:            getEnvInt("RATE_LIMIT_RPS", 10),
		AllowedOrigins:          getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
	}

	if cfg.FMPAPIKey == "" {
		return nil, fmt.Errorf("FMP_API_KEY is required")
	}
	if cfg.StatementLimit < 1 {
		return nil, fmt.Errorf("STATEMENT_LIMIT must be at least 1, got %d", cfg.StatementLimit)
	}
	if cfg.MaxCompareTickers < 2 {
		return nil, fmt.Errorf("MAX_COMPARE_TICKERS must be at least 2, got %d", cfg.MaxCompareTickers)
	}
	if cfg.CompareConcurrency < 1 {
		cfg.CompareConcurrency = 1
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma separated variable, dropping empty entries.
func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
