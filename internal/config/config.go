package config

import (
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション設定を表す
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Gateway    GatewayConfig
	Settlement SettlementConfig
	Mail       MailConfig
	Sweeper    SweeperConfig
}

// ServerConfig はサーバー設定
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig はデータベース設定
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig はRedis設定
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// GatewayConfig は決済ゲートウェイ設定
type GatewayConfig struct {
	StoreID       string
	StorePassword string
	PaymentAPI    string
	ValidationAPI string
	SuccessURL    string
	FailURL       string
	CancelURL     string
	Timeout       time.Duration
}

// SettlementConfig は精算設定
// HostShareRate と AdminShareRate の合計は1.0でなければならない
// AdminLedgerID は加算先となる単一の管理者台帳行を明示的に指定する
type SettlementConfig struct {
	HostShareRate  float64
	AdminShareRate float64
	AdminLedgerID  string
}

// Valid は分配率の整合性を返す
func (c *SettlementConfig) Valid() bool {
	const epsilon = 1e-9
	sum := c.HostShareRate + c.AdminShareRate
	return sum > 1.0-epsilon && sum < 1.0+epsilon &&
		c.HostShareRate >= 0 && c.AdminShareRate >= 0
}

// MailConfig は請求書メール送信設定
type MailConfig struct {
	SMTPHost string
	SMTPPort string
	From     string
	Username string
	Password string
}

// SweeperConfig は滞留PENDING決済の掃除設定
type SweeperConfig struct {
	Enabled  bool
	Interval time.Duration
	MaxAge   time.Duration
}

// Load は環境変数から設定を読み込む
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "event_booking"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Gateway: GatewayConfig{
			StoreID:       getEnv("SSL_STORE_ID", ""),
			StorePassword: getEnv("SSL_STORE_PASSWORD", ""),
			PaymentAPI:    getEnv("SSL_PAYMENT_API", "https://sandbox.sslcommerz.com/gwprocess/v4/api.php"),
			ValidationAPI: getEnv("SSL_VALIDATION_API", "https://sandbox.sslcommerz.com/validator/api/validationserverAPI.php"),
			SuccessURL:    getEnv("SSL_SUCCESS_URL", "http://localhost:8080/api/v1/payments/success"),
			FailURL:       getEnv("SSL_FAIL_URL", "http://localhost:8080/api/v1/payments/fail"),
			CancelURL:     getEnv("SSL_CANCEL_URL", "http://localhost:8080/api/v1/payments/cancel"),
			Timeout:       getDurationEnv("SSL_TIMEOUT", 15*time.Second),
		},
		Settlement: SettlementConfig{
			HostShareRate:  getFloatEnv("SETTLEMENT_HOST_SHARE_RATE", 0.9),
			AdminShareRate: getFloatEnv("SETTLEMENT_ADMIN_SHARE_RATE", 0.1),
			AdminLedgerID:  getEnv("SETTLEMENT_ADMIN_LEDGER_ID", ""),
		},
		Mail: MailConfig{
			SMTPHost: getEnv("SMTP_HOST", ""),
			SMTPPort: getEnv("SMTP_PORT", "587"),
			From:     getEnv("SMTP_FROM", "no-reply@event-booking.local"),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
		},
		Sweeper: SweeperConfig{
			Enabled:  getBoolEnv("SWEEPER_ENABLED", true),
			Interval: getDurationEnv("SWEEPER_INTERVAL", 5*time.Minute),
			MaxAge:   getDurationEnv("SWEEPER_MAX_AGE", 24*time.Hour),
		},
	}
}

// DSN はPostgreSQL接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Addr はRedis接続アドレスを返す
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
