package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables (.env optional)
type Config struct {
	App       AppConfig
	Log       LogConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	MinIO     MinIOConfig
	PayPal    PayPalConfig
	KoFi      KoFiConfig
	Google    GoogleConfig
	Coins     CoinConfig
	RateLimit RateLimitConfig
	Jobs      JobConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	FrontendURL string
}

type LogConfig struct {
	Level string
	File  string
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Database    string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// URL trả về DSN dạng postgres:// dùng chung cho pgx, lib/pq và migrate
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  int // minutes
	RefreshTokenExpiry int // hours
}

type MinIOConfig struct {
	Endpoint  string // localhost:9000
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// =====================================================
// PAYMENT PROVIDERS
// =====================================================

type PayPalConfig struct {
	ClientID  string
	Secret    string
	BaseURL   string // https://api-m.sandbox.paypal.com
	ReturnURL string
	CancelURL string
	Currency  string
}

type KoFiConfig struct {
	VerificationToken string
	CoinsPerUnit      int // coins credited per 1.00 of currency
}

type GoogleConfig struct {
	ClientID          string
	ClientSecret      string
	RedirectURL       string
	ImportConcurrency int
}

// CoinConfig gom các tham số kinh tế của coin
type CoinConfig struct {
	AuthorSharePercent int // phần trăm coin tác giả nhận khi chapter được mở khóa
	MaxChapterCost     int64
	MinDonation        int64
	PackagesFile       string // rỗng = dùng catalog embedded
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type JobConfig struct {
	CleanupRetentionDays   int
	ViewFlushInterval      time.Duration
	SubscriptionPeriodDays int
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using system environment variables")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "NovelHub API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnvInt("DB_PORT", 5432),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", ""),
			Database:    getEnv("DB_NAME", "novelhub"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenExpiry:  getEnvInt("JWT_ACCESS_EXPIRY", 60),
			RefreshTokenExpiry: getEnvInt("JWT_REFRESH_EXPIRY", 72),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "novelhub"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		PayPal: PayPalConfig{
			ClientID:  getEnv("PAYPAL_CLIENT_ID", ""),
			Secret:    getEnv("PAYPAL_SECRET", ""),
			BaseURL:   getEnv("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
			ReturnURL: getEnv("PAYPAL_RETURN_URL", "http://localhost:3000/coins/success"),
			CancelURL: getEnv("PAYPAL_CANCEL_URL", "http://localhost:3000/coins/cancel"),
			Currency:  getEnv("PAYPAL_CURRENCY", "USD"),
		},
		KoFi: KoFiConfig{
			VerificationToken: getEnv("KOFI_VERIFICATION_TOKEN", ""),
			CoinsPerUnit:      getEnvInt("KOFI_COINS_PER_UNIT", 100),
		},
		Google: GoogleConfig{
			ClientID:          getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret:      getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:       getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/gdrive/callback"),
			ImportConcurrency: getEnvInt("GDRIVE_IMPORT_CONCURRENCY", 4),
		},
		Coins: CoinConfig{
			AuthorSharePercent: getEnvInt("COIN_AUTHOR_SHARE_PERCENT", 100),
			MaxChapterCost:     int64(getEnvInt("COIN_MAX_CHAPTER_COST", 1000)),
			MinDonation:        int64(getEnvInt("COIN_MIN_DONATION", 1)),
			PackagesFile:       getEnv("COIN_PACKAGES_FILE", ""),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvFloat("RATE_LIMIT_RPS", 5),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 10),
		},
		Jobs: JobConfig{
			CleanupRetentionDays:   getEnvInt("NOTIFICATION_RETENTION_DAYS", 30),
			ViewFlushInterval:      getEnvDuration("VIEW_FLUSH_INTERVAL", 5*time.Minute),
			SubscriptionPeriodDays: getEnvInt("SUBSCRIPTION_PERIOD_DAYS", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	if c.Coins.AuthorSharePercent < 0 || c.Coins.AuthorSharePercent > 100 {
		return fmt.Errorf("COIN_AUTHOR_SHARE_PERCENT must be between 0 and 100")
	}
	if c.KoFi.CoinsPerUnit <= 0 {
		return fmt.Errorf("KOFI_COINS_PER_UNIT must be positive")
	}

	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}

		if c.PayPal.ClientID == "" {
			log.Warn().Msg("PAYPAL_CLIENT_ID not set - coin purchases will not work")
		}
		if c.KoFi.VerificationToken == "" {
			log.Warn().Msg("KOFI_VERIFICATION_TOKEN not set - Ko-fi webhook will reject all calls")
		}
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
