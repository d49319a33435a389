package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config アプリケーション設定
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Log       LogConfig
	S3        S3Config
}

// ServerConfig サーバー設定
type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// StoreConfig データストア設定
type StoreConfig struct {
	Driver          string // "postgres" または "memory"
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// AuthConfig 管理者認証設定
type AuthConfig struct {
	AdminEmail        string
	AdminPassword     string
	AdminPasswordHash string
	JWTSecret         string
	JWTExpiresIn      time.Duration
}

// RateLimitConfig レート制限設定
type RateLimitConfig struct {
	Enabled        bool
	MaxRequests    int
	Window         time.Duration
	SubmitRequests int
	SubmitWindow   time.Duration
	SweepInterval  time.Duration
}

// RedisConfig Redis設定（Addrが空の場合はメモリ上でレート制限を行う）
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LogConfig ログ設定
type LogConfig struct {
	Level          string
	Directory      string
	UploadEnabled  bool
	UploadMaxAge   time.Duration
	UploadInterval time.Duration
}

// S3Config S3設定
type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	UseSSL          bool
}

// ErrMissingStoreURL データストアのURLが設定されていない
var ErrMissingStoreURL = errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")

// ErrMissingJWTSecret JWTシークレットが設定されていない
var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

// LoadConfig .envファイルと環境変数から設定を読み込み
func LoadConfig() *Config {
	// .envが存在しない場合は環境変数のみを使用
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  getListEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Store: StoreConfig{
			Driver:          getEnv("STORE_DRIVER", "postgres"),
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getIntEnv("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DATABASE_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDurationEnv("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
			AutoMigrate:     getBoolEnv("DATABASE_AUTO_MIGRATE", false),
		},
		Auth: AuthConfig{
			AdminEmail:        getEnv("ADMIN_EMAIL", ""),
			AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
			AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			JWTSecret:         getEnv("JWT_SECRET", ""),
			JWTExpiresIn:      getDurationEnv("JWT_EXPIRES_IN", 12*time.Hour),
		},
		RateLimit: RateLimitConfig{
			Enabled:        getBoolEnv("RATE_LIMIT_ENABLED", true),
			MaxRequests:    getIntEnv("RATE_LIMIT_MAX_REQUESTS", 100),
			Window:         getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
			SubmitRequests: getIntEnv("RATE_LIMIT_SUBMIT_REQUESTS", 5),
			SubmitWindow:   getDurationEnv("RATE_LIMIT_SUBMIT_WINDOW", 10*time.Minute),
			SweepInterval:  getDurationEnv("RATE_LIMIT_SWEEP_INTERVAL", 5*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Log: LogConfig{
			Level:          getEnv("LOG_LEVEL", "info"),
			Directory:      getEnv("LOG_DIRECTORY", "logs"),
			UploadEnabled:  getBoolEnv("LOG_UPLOAD_ENABLED", false),
			UploadMaxAge:   getDurationEnv("LOG_UPLOAD_MAX_AGE", 24*time.Hour),
			UploadInterval: getDurationEnv("LOG_UPLOAD_INTERVAL", 1*time.Hour),
		},
		S3: S3Config{
			Endpoint:        getEnv("S3_ENDPOINT", "http://localhost:9000"), // MinIO用のデフォルト
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", "minioadmin"),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", "minioadmin"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", "resource-share-logs"),
			UseSSL:          getBoolEnv("S3_USE_SSL", false),
		},
	}
}

// Validate 起動に必須な設定をチェック
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "postgres":
		if c.Store.URL == "" {
			return ErrMissingStoreURL
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported STORE_DRIVER: %q", c.Store.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return ErrMissingJWTSecret
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.MaxRequests <= 0 || c.RateLimit.SubmitRequests <= 0 {
			return fmt.Errorf("rate limit request counts must be positive")
		}
		if c.RateLimit.Window <= 0 || c.RateLimit.SubmitWindow <= 0 {
			return fmt.Errorf("rate limit windows must be positive")
		}
	}

	return nil
}

// getEnv 環境変数を取得（デフォルト値付き）
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv 環境変数をboolで取得
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getIntEnv 環境変数をintで取得
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getListEnv カンマ区切りの環境変数をスライスで取得
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

// getDurationEnv 環境変数をtime.Durationで取得
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
