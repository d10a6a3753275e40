package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerPort string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	LogLevel   string

	// Generative AI
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	AITimeout     time.Duration

	// Moderation policy
	ModerationCacheTTL   time.Duration
	ModerationFailClosed bool

	// Media storage
	StorageBackend string // "local" | "s3"
	UploadDir      string
	S3Region       string
	S3Bucket       string
}

func Load() *Config {
	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "baraza"),
		DBPassword: getEnv("DB_PASSWORD", "baraza_dev_password"),
		DBName:     getEnv("DB_NAME", "baraza"),
		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-change-me"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-pro"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		AITimeout:     getDuration("AI_TIMEOUT", 10*time.Second),

		ModerationCacheTTL:   getDuration("MODERATION_CACHE_TTL", 5*time.Minute),
		ModerationFailClosed: getBool("MODERATION_FAIL_CLOSED", false),

		StorageBackend: getEnv("STORAGE_BACKEND", "local"),
		UploadDir:      getEnv("UPLOAD_DIR", "static/uploads"),
		S3Region:       getEnv("S3_REGION", "eu-west-1"),
		S3Bucket:       getEnv("S3_BUCKET", ""),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}

	return d
}

func getBool(key string, fallback bool) bool {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}

	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}

	return b
}
