package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string
	JWTExpiry time.Duration

	// AI proxy
	AIProxyPort  string
	GeminiAPIKey string
	GeminiModel  string
	MaxHistory   int

	// Observability (optional)
	SentryDSN string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	return &Config{
		AppName: envString("APP_NAME", "MoneyWise"),
		AppEnv:  envString("APP_ENV", "development"),
		Port:    envString("PORT", "8080"),

		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/moneywise.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		JWTSecret: envRequired("JWT_SECRET"),
		JWTExpiry: envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days

		AIProxyPort:  envString("AI_PROXY_PORT", "3001"),
		GeminiAPIKey: envString("GEMINI_API_KEY", ""),
		GeminiModel:  envString("GEMINI_MODEL", "gemini-2.5-pro"),
		MaxHistory:   envInt("AI_MAX_HISTORY", 10),

		SentryDSN: envString("SENTRY_DSN", ""),
	}
}

// LoadAIProxy is Load without the server-only required vars. The proxy has no
// database and no JWT of its own; it only needs the Gemini credentials.
func LoadAIProxy() *Config {
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	return &Config{
		AppName: envString("APP_NAME", "MoneyWise"),
		AppEnv:  envString("APP_ENV", "development"),

		AIProxyPort:  envString("AI_PROXY_PORT", "3001"),
		GeminiAPIKey: envRequired("GEMINI_API_KEY"),
		GeminiModel:  envString("GEMINI_MODEL", "gemini-2.5-pro"),
		MaxHistory:   envInt("AI_MAX_HISTORY", 10),

		SentryDSN: envString("SENTRY_DSN", ""),
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
