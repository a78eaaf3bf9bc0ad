package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the full runtime configuration for the server.
type Config struct {
	Environment string
	Host        string
	Port        string

	// Database
	DBDriver    string // "postgres" or "sqlite"
	PostgresDSN string
	SQLitePath  string

	// Auth
	DeviceTokens  []string
	RedisAddr     string
	RedisPassword string

	// ASR provider. An empty APIKey selects the deterministic mock.
	ASRBaseURL      string
	ASRAPIKey       string
	PollInterval    time.Duration
	PollMaxFailures int
	MockPollsToDone int

	// Object storage
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// Summarization
	OpenAIAPIKey string
	SummaryModel string
}

// LoadEnv loads environment variables from a .env file if one exists.
// Missing files are not an error; variables may be set system-wide.
func LoadEnv() error {
	envPaths := []string{".env", ".env.local", "../.env"}
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			break
		}
	}
	return nil
}

// FromEnv builds a Config from environment variables with sensible defaults
// for local development.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Environment: getEnvOrDefault("LYRE_ENV", "development"),
		Host:        getEnvOrDefault("LYRE_HOST", "0.0.0.0"),
		Port:        getEnvOrDefault("LYRE_PORT", "8080"),

		DBDriver:    getEnvOrDefault("LYRE_DB_DRIVER", "sqlite"),
		PostgresDSN: os.Getenv("LYRE_POSTGRES_DSN"),
		SQLitePath:  getEnvOrDefault("LYRE_SQLITE_PATH", "data/lyre.db"),

		RedisAddr:     os.Getenv("LYRE_REDIS_ADDR"),
		RedisPassword: os.Getenv("LYRE_REDIS_PASSWORD"),

		ASRBaseURL: getEnvOrDefault("ASR_BASE_URL", "https://api.speechflow.example.com"),
		ASRAPIKey:  strings.TrimSpace(os.Getenv("ASR_API_KEY")),

		MinioEndpoint:  getEnvOrDefault("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnvOrDefault("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getEnvOrDefault("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    getEnvOrDefault("MINIO_BUCKET", "lyre-recordings"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",

		OpenAIAPIKey: strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		SummaryModel: getEnvOrDefault("LYRE_SUMMARY_MODEL", "gpt-4o-mini"),
	}

	if tokens := os.Getenv("LYRE_DEVICE_TOKENS"); tokens != "" {
		for _, t := range strings.Split(tokens, ",") {
			if t = strings.TrimSpace(t); t != "" {
				cfg.DeviceTokens = append(cfg.DeviceTokens, t)
			}
		}
	}

	var err error
	cfg.PollInterval, err = getEnvDuration("LYRE_POLL_INTERVAL", 5*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.PollMaxFailures, err = getEnvInt("LYRE_POLL_MAX_FAILURES", 240)
	if err != nil {
		return nil, err
	}
	cfg.MockPollsToDone, err = getEnvInt("LYRE_MOCK_POLLS_TO_DONE", 3)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on configuration that cannot possibly work.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("LYRE_POSTGRES_DSN is required when LYRE_DB_DRIVER=postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("LYRE_SQLITE_PATH must not be empty")
		}
	default:
		return fmt.Errorf("unsupported LYRE_DB_DRIVER %q (want postgres or sqlite)", c.DBDriver)
	}

	if c.PollInterval < time.Second {
		return fmt.Errorf("LYRE_POLL_INTERVAL %s is below the 1s minimum", c.PollInterval)
	}
	if c.PollMaxFailures < 1 {
		return fmt.Errorf("LYRE_POLL_MAX_FAILURES must be at least 1")
	}

	if c.OpenAIAPIKey != "" && !strings.HasPrefix(c.OpenAIAPIKey, "sk-") {
		return fmt.Errorf("invalid OPENAI_API_KEY format: must start with 'sk-'")
	}
	return nil
}

// UseMockProvider reports whether the deterministic mock ASR provider should
// be used instead of the remote client.
func (c *Config) UseMockProvider() bool {
	return c.ASRAPIKey == ""
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
