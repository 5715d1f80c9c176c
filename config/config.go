package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Database DatabaseConfig
	LLM      LLMConfig
	Storage  StorageConfig
	Broker   BrokerConfig
	Sentry   SentryConfig
	Logging  LoggingConfig
	Uploads  UploadConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	RateLimit float64
}

type AuthConfig struct {
	JWTSecret      string
	TokenExpiryHrs int
}

type DatabaseConfig struct {
	// postgres or sqlite
	Driver   string
	Username string
	Password string
	Host     string
	Port     string
	Name     string
	Path     string
}

type LLMConfig struct {
	DefaultProvider string

	GeminiAPIKey      string
	GeminiModel       string
	GeminiVisionModel string

	GroqAPIKey      string
	GroqBaseURL     string
	GroqModel       string
	GroqVisionModel string

	OllamaURL         string
	OllamaModel       string
	OllamaVisionModel string
}

type StorageConfig struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	BucketName      string
}

type BrokerConfig struct {
	Address string
}

type SentryConfig struct {
	DSN string
}

type LoggingConfig struct {
	Level string
	File  string
}

type UploadConfig struct {
	TmpDir string
}

// Load reads the environment (and .env when present) and validates it.
func Load() (*Config, error) {
	cfg := LoadEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadEnv is Load without validation, for tools that only need part of the
// configuration.
func LoadEnv() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:      getEnv("PORT", "8083"),
			Env:       getEnv("ENV", "local"),
			RateLimit: getEnvFloat("RATE_LIMIT", 3),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", ""),
			TokenExpiryHrs: getEnvInt("TOKEN_EXPIRY_HOURS", 24*7),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Username: getEnv("DB_USERNAME", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "dripmate"),
			Path:     getEnv("DB_PATH", "dripmate.db"),
		},
		LLM: LLMConfig{
			DefaultProvider:   strings.ToLower(getEnv("DEFAULT_LLM", "groq")),
			GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
			GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			GeminiVisionModel: getEnv("GEMINI_VISION_MODEL", "gemini-2.5-flash"),
			GroqAPIKey:        getEnv("GROQ_API_KEY", ""),
			GroqBaseURL:       getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1/"),
			GroqModel:         getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
			GroqVisionModel:   getEnv("GROQ_VISION_MODEL", "meta-llama/llama-4-scout-17b-16e-instruct"),
			OllamaURL:         getEnv("OLLAMA_URL", "http://localhost:11434/api/generate"),
			OllamaModel:       getEnv("OLLAMA_MODEL", "llama3:8b"),
			OllamaVisionModel: getEnv("OLLAMA_VISION_MODEL", "llava"),
		},
		Storage: StorageConfig{
			AccountID:       getEnv("R2_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			AccessKeySecret: getEnv("R2_ACCESS_KEY_SECRET", ""),
			BucketName:      getEnv("R2_BUCKET_NAME", ""),
		},
		Broker: BrokerConfig{
			Address: getEnv("ASYNC_BROKER_ADDRESS", "localhost:6379"),
		},
		Sentry: SentryConfig{
			DSN: getEnv("SENTRY_DSN", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Uploads: UploadConfig{
			TmpDir: getEnv("UPLOAD_TMP_DIR", os.TempDir()),
		},
	}
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.LLM.DefaultProvider {
	case "groq", "gemini", "ollama":
	default:
		return fmt.Errorf("unsupported DEFAULT_LLM %q", c.LLM.DefaultProvider)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
