package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// セッションストアバックエンドの種別
const (
	SessionStoreMySQL = "mysql"
	SessionStoreRedis = "redis"
)

// Config アプリケーション全体の設定
type Config struct {
	Server        ServerConfig
	Provider      ProviderConfig
	Webhook       WebhookConfig
	SessionStore  SessionStoreConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	API           APIAuthConfig
	OpenTelemetry OpenTelemetryConfig
	Environment   string
}

// ServerConfig サーバー設定
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// ProviderConfig 決済プロバイダー設定
type ProviderConfig struct {
	BaseURL           string
	ClientID          string
	ClientSecret      string
	RequestTimeout    time.Duration
	TokenExpiryMargin time.Duration
}

// WebhookConfig Webhookコールバック設定
// PublicBaseURLはプロキシ越しでも到達可能な外部公開URLを明示的に注入する
// （受信リクエストのHostヘッダーからの推測は行わない）
type WebhookConfig struct {
	PublicBaseURL string
	EventName     string
}

// CallbackURL プロバイダーに登録するコールバックURLを返す
func (c *WebhookConfig) CallbackURL() string {
	return strings.TrimSuffix(c.PublicBaseURL, "/") + "/webhook"
}

// SessionStoreConfig セッションストア設定
type SessionStoreConfig struct {
	Backend    string
	SessionTTL time.Duration
}

// DatabaseConfig データベース設定
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// RedisConfig Redis設定
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// APIAuthConfig 公開APIのAPIキー認証設定
// Webhookエンドポイントはプロバイダーが呼ぶため対象外
type APIAuthConfig struct {
	Enabled    bool
	APIKey     string
	AllowedIPs []string
}

// OpenTelemetryConfig OpenTelemetry設定
type OpenTelemetryConfig struct {
	Enabled         bool
	ServiceName     string
	ServiceVersion  string
	OTLPEndpoint    string
	OTLPInsecure    bool
	TraceExporter   string // "otlp", "stdout"
	MetricsExporter string // "otlp", "stdout"
}

// Load 設定を読み込む
func Load() (*Config, error) {
	// .envファイルを読み込む（存在しない場合は無視）
	_ = godotenv.Load()

	env := getEnv("ENVIRONMENT", "development")

	cfg := &Config{
		Environment: env,
		Server: ServerConfig{
			Port:         getEnvAsInt("SERVER_PORT", 3000),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Provider: ProviderConfig{
			BaseURL:           getEnv("PROVIDER_BASE_URL", "https://sandbox-api-baasic.transfero.com"),
			ClientID:          getEnv("PROVIDER_CLIENT_ID", ""),
			ClientSecret:      getEnv("PROVIDER_CLIENT_SECRET", ""),
			RequestTimeout:    getEnvAsDuration("PROVIDER_REQUEST_TIMEOUT", 10*time.Second),
			TokenExpiryMargin: getEnvAsDuration("PROVIDER_TOKEN_EXPIRY_MARGIN", 30*time.Second),
		},
		Webhook: WebhookConfig{
			PublicBaseURL: getEnv("WEBHOOK_PUBLIC_BASE_URL", ""),
			EventName:     getEnv("WEBHOOK_EVENT_NAME", "depositorder.created"),
		},
		SessionStore: SessionStoreConfig{
			Backend:    getEnv("SESSION_STORE", SessionStoreMySQL),
			SessionTTL: getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 3306),
			User:            getEnv("DB_USER", "root"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "stellar_pay"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 10*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		API: APIAuthConfig{
			Enabled:    getEnvAsBool("API_KEY_ENABLED", false),
			APIKey:     getEnv("API_KEY", ""),
			AllowedIPs: getEnvAsSlice("API_ALLOWED_IPS"),
		},
		OpenTelemetry: OpenTelemetryConfig{
			Enabled:         getEnvAsBool("OTEL_ENABLED", true),
			ServiceName:     getEnv("OTEL_SERVICE_NAME", "stellar-pay"),
			ServiceVersion:  getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
			OTLPInsecure:    getEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			TraceExporter:   getEnv("OTEL_TRACES_EXPORTER", "otlp"),
			MetricsExporter: getEnv("OTEL_METRICS_EXPORTER", "otlp"),
		},
	}

	// 必須設定の検証
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate 設定の検証
func (c *Config) validate() error {
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("PROVIDER_BASE_URL is required")
	}
	if c.Provider.ClientID == "" {
		return fmt.Errorf("PROVIDER_CLIENT_ID is required")
	}
	if c.Provider.ClientSecret == "" {
		return fmt.Errorf("PROVIDER_CLIENT_SECRET is required")
	}
	if c.Webhook.PublicBaseURL == "" {
		return fmt.Errorf("WEBHOOK_PUBLIC_BASE_URL is required")
	}
	switch c.SessionStore.Backend {
	case SessionStoreMySQL:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	case SessionStoreRedis:
		if c.Redis.Host == "" {
			return fmt.Errorf("REDIS_HOST is required")
		}
	default:
		return fmt.Errorf("unsupported session store backend: %s", c.SessionStore.Backend)
	}
	if c.API.Enabled && c.API.APIKey == "" {
		return fmt.Errorf("API_KEY is required when API_KEY_ENABLED is true")
	}
	return nil
}

// DSN データベース接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address Redis接続アドレスを返す
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv 環境変数を取得（デフォルト値付き）
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt 環境変数を整数として取得
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool 環境変数を真偽値として取得
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration 環境変数を時間として取得
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice 環境変数をカンマ区切りのスライスとして取得
func getEnvAsSlice(key string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return nil
	}
	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
