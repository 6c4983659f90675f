package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env                string
	HTTPAddr           string
	LogLevel           string
	DatabaseURL        string
	JWTSecret          string
	RabbitMQURL        string
	RabbitMQWorkerMode string
	RedisURL           string
	CorsAllowedOrigins []string

	ReportCacheTTL  time.Duration
	DefaultCurrency string
	DefaultTimezone string

	ObjectStoreEndpoint        string
	ObjectStoreRegion          string
	ObjectStoreAccessKeyID     string
	ObjectStoreSecretAccessKey string
	ObjectStoreBucket          string
	ObjectStorePublicBaseURL   string
	ObjectStoreStorageClass    string
}

// envAliases lists legacy variable names accepted for a key, in priority
// order after the key itself.
var envAliases = map[string][]string{
	"OBJECT_STORE_ENDPOINT":          {"R2_S3_ENDPOINT"},
	"OBJECT_STORE_REGION":            {"R2_REGION"},
	"OBJECT_STORE_ACCESS_KEY_ID":     {"R2_ACCESS_KEY_ID"},
	"OBJECT_STORE_SECRET_ACCESS_KEY": {"R2_SECRET_ACCESS_KEY"},
	"OBJECT_STORE_BUCKET":            {"R2_BUCKET"},
	"OBJECT_STORE_PUBLIC_BASE_URL":   {"R2_PUBLIC_BASE_URL"},
	"OBJECT_STORE_STORAGE_CLASS":     {"R2_STORAGE_CLASS"},
}

// New returns a viper instance with defaults, environment lookups and the
// legacy R2_* aliases registered. Command line flags bind onto it.
func New() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", ":8087")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_WORKER_MODE", "daemon")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("REPORT_CACHE_TTL", 5*time.Minute)
	v.SetDefault("DEFAULT_CURRENCY", "AUD")
	v.SetDefault("DEFAULT_TIMEZONE", "Asia/Jakarta")
	v.SetDefault("OBJECT_STORE_REGION", "auto")
	v.SetDefault("OBJECT_STORE_STORAGE_CLASS", "STANDARD")

	for key, aliases := range envAliases {
		_ = v.BindEnv(append([]string{key, key}, aliases...)...)
	}
	return v
}

func FromViper(v *viper.Viper) Config {
	cfg := Config{
		Env:                getString(v, "APP_ENV"),
		HTTPAddr:           getString(v, "HTTP_ADDR"),
		LogLevel:           getString(v, "LOG_LEVEL"),
		DatabaseURL:        getString(v, "DATABASE_URL"),
		JWTSecret:          getString(v, "JWT_SECRET"),
		RabbitMQURL:        getString(v, "RABBITMQ_URL"),
		RabbitMQWorkerMode: getString(v, "RABBITMQ_WORKER_MODE"),
		RedisURL:           getString(v, "REDIS_URL"),
		CorsAllowedOrigins: splitCSV(getString(v, "CORS_ALLOWED_ORIGINS")),
		ReportCacheTTL:     v.GetDuration("REPORT_CACHE_TTL"),
		DefaultCurrency:    getString(v, "DEFAULT_CURRENCY"),
		DefaultTimezone:    getString(v, "DEFAULT_TIMEZONE"),

		// Object store (Cloudflare R2 / S3-compatible)
		ObjectStoreEndpoint:        getString(v, "OBJECT_STORE_ENDPOINT"),
		ObjectStoreRegion:          getString(v, "OBJECT_STORE_REGION"),
		ObjectStoreAccessKeyID:     getString(v, "OBJECT_STORE_ACCESS_KEY_ID"),
		ObjectStoreSecretAccessKey: getString(v, "OBJECT_STORE_SECRET_ACCESS_KEY"),
		ObjectStoreBucket:          getString(v, "OBJECT_STORE_BUCKET"),
		ObjectStorePublicBaseURL:   getString(v, "OBJECT_STORE_PUBLIC_BASE_URL"),
		ObjectStoreStorageClass:    getString(v, "OBJECT_STORE_STORAGE_CLASS"),
	}

	if cfg.ReportCacheTTL <= 0 {
		cfg.ReportCacheTTL = 5 * time.Minute
	}

	// Back-compat: allow R2_ACCOUNT_ID -> endpoint
	if cfg.ObjectStoreEndpoint == "" {
		if accountID := getString(v, "R2_ACCOUNT_ID"); accountID != "" {
			cfg.ObjectStoreEndpoint = "https://" + accountID + ".r2.cloudflarestorage.com"
		}
	}

	return cfg
}

func getString(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
