package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// OpenAI (transcription + extraction)
	OpenAIAPIKey    string
	OpenAIChatModel string
	WhisperModel    string

	// Gemini fallback for extraction (optional)
	GeminiAPIKey  string
	GeminiModelID string

	// Content cache
	CacheBackend string // "file" or "redis"
	CacheDir     string
	CacheTTL     time.Duration

	// Durable audio store
	AudioStoreBackend string // "local" or "s3"
	AudioPersistDir   string
	AudioBucket       string

	// Session state
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	SessionTTL    time.Duration

	// AWS (S3 audio store)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Web search collaborator (optional)
	SearchAPIKey string

	MaxUploadBytes int
}

// ConfigurationError reports a missing required credential or setting.
// It is fatal at startup; there is no retry.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Setting, e.Reason)
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIChatModel: getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		WhisperModel:    getEnv("WHISPER_MODEL", "whisper-1"),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModelID: getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),

		CacheBackend: strings.ToLower(strings.TrimSpace(getEnv("CACHE_BACKEND", "file"))),
		CacheDir:     getEnv("CACHE_DIR", ".local/cache/conversations"),
		CacheTTL:     getEnvAsDuration("CACHE_TTL", 0),

		AudioStoreBackend: strings.ToLower(strings.TrimSpace(getEnv("AUDIO_STORE_BACKEND", "local"))),
		AudioPersistDir:   getEnv("AUDIO_PERSIST_DIR", ".local/data/audio"),
		AudioBucket:       getEnv("AUDIO_BUCKET", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 24*time.Hour),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		SearchAPIKey: getEnv("SEARCH_API_KEY", ""),

		MaxUploadBytes: getEnvAsInt("MAX_UPLOAD_BYTES", 25<<20),
	}
}

// Validate checks required settings. Failures are fatal at startup.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OpenAIAPIKey) == "" {
		return &ConfigurationError{Setting: "OPENAI_API_KEY", Reason: "required for transcription and extraction"}
	}
	switch c.CacheBackend {
	case "file", "redis":
	default:
		return &ConfigurationError{Setting: "CACHE_BACKEND", Reason: fmt.Sprintf("unknown backend %q", c.CacheBackend)}
	}
	switch c.AudioStoreBackend {
	case "local":
	case "s3":
		if c.AudioBucket == "" {
			return &ConfigurationError{Setting: "AUDIO_BUCKET", Reason: "required when AUDIO_STORE_BACKEND=s3"}
		}
	default:
		return &ConfigurationError{Setting: "AUDIO_STORE_BACKEND", Reason: fmt.Sprintf("unknown backend %q", c.AudioStoreBackend)}
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
