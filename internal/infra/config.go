package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv         string
	Port           string
	DatabaseURL    string
	RedisURL       string
	JWTSecret      string
	StoragePath    string
	StorageBaseURL string
	GeoIPDBPath    string
	AllowedOrigins []string

	GeminiAPIKey  string
	GeminiBaseURL string
	PlanModel     string
	ImageModel    string
	VideoModel    string

	GuestLimit    int
	GuestQuotaTTL time.Duration

	BatchWorkers      int
	VideoPollInterval time.Duration
	VideoPollMax      int
	FilePollInterval  time.Duration
	FilePollMax       int
	CacheTTL          time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. The write timeout default is generous because a
// generate request blocks until planning, the image batch and an optional
// video poll (up to ten minutes) have all finished.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		StoragePath:    getEnv("STORAGE_PATH", "./static"),
		StorageBaseURL: getEnv("STORAGE_BASE_URL", "http://localhost:8080/static"),
		GeoIPDBPath:    os.Getenv("GEOIP_DB_PATH"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		PlanModel:     getEnv("PLAN_MODEL", "gemini-3-pro-preview"),
		ImageModel:    getEnv("IMAGE_MODEL", "gemini-3-pro-image-preview"),
		VideoModel:    getEnv("VIDEO_MODEL", "veo-3.1-generate-preview"),

		GuestLimit:    getEnvInt("GUEST_LIMIT", 15),
		GuestQuotaTTL: time.Hour * time.Duration(getEnvInt("GUEST_QUOTA_TTL_HOURS", 24)),

		BatchWorkers:      getEnvInt("BATCH_WORKERS", 5),
		VideoPollInterval: time.Second * time.Duration(getEnvInt("VIDEO_POLL_INTERVAL_SECONDS", 5)),
		VideoPollMax:      getEnvInt("VIDEO_POLL_MAX", 120),
		FilePollInterval:  time.Second * time.Duration(getEnvInt("FILE_POLL_INTERVAL_SECONDS", 1)),
		FilePollMax:       getEnvInt("FILE_POLL_MAX", 60),
		CacheTTL:          time.Second * time.Duration(getEnvInt("PROMPT_CACHE_TTL_SECONDS", 3600)),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 900)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
