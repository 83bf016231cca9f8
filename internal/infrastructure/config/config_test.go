package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequiredEnv 必須環境変数を設定
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PROVIDER_CLIENT_ID", "client123")
	t.Setenv("PROVIDER_CLIENT_SECRET", "secret123")
	t.Setenv("WEBHOOK_PUBLIC_BASE_URL", "https://pay.example.com")
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "https://sandbox-api-baasic.transfero.com", cfg.Provider.BaseURL)
	assert.Equal(t, "client123", cfg.Provider.ClientID)
	assert.Equal(t, 10*time.Second, cfg.Provider.RequestTimeout)
	assert.Equal(t, 30*time.Second, cfg.Provider.TokenExpiryMargin)
	assert.Equal(t, "depositorder.created", cfg.Webhook.EventName)
	assert.Equal(t, SessionStoreMySQL, cfg.SessionStore.Backend)
	assert.Equal(t, 24*time.Hour, cfg.SessionStore.SessionTTL)
	assert.False(t, cfg.API.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("PROVIDER_REQUEST_TIMEOUT", "3s")
	t.Setenv("WEBHOOK_EVENT_NAME", "depositorder.settled")
	t.Setenv("API_KEY_ENABLED", "true")
	t.Setenv("API_KEY", "key123")
	t.Setenv("API_ALLOWED_IPS", "10.0.0.1, 10.0.0.2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, SessionStoreRedis, cfg.SessionStore.Backend)
	assert.Equal(t, time.Hour, cfg.SessionStore.SessionTTL)
	assert.Equal(t, 3*time.Second, cfg.Provider.RequestTimeout)
	assert.Equal(t, "depositorder.settled", cfg.Webhook.EventName)
	assert.True(t, cfg.API.Enabled)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.API.AllowedIPs)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T)
		wantMsg string
	}{
		{
			name: "異常系: クライアントIDなし",
			setup: func(t *testing.T) {
				t.Setenv("PROVIDER_CLIENT_ID", "")
				t.Setenv("PROVIDER_CLIENT_SECRET", "secret123")
				t.Setenv("WEBHOOK_PUBLIC_BASE_URL", "https://pay.example.com")
			},
			wantMsg: "PROVIDER_CLIENT_ID is required",
		},
		{
			name: "異常系: クライアントシークレットなし",
			setup: func(t *testing.T) {
				t.Setenv("PROVIDER_CLIENT_ID", "client123")
				t.Setenv("PROVIDER_CLIENT_SECRET", "")
				t.Setenv("WEBHOOK_PUBLIC_BASE_URL", "https://pay.example.com")
			},
			wantMsg: "PROVIDER_CLIENT_SECRET is required",
		},
		{
			name: "異常系: Webhook公開URLなし",
			setup: func(t *testing.T) {
				t.Setenv("PROVIDER_CLIENT_ID", "client123")
				t.Setenv("PROVIDER_CLIENT_SECRET", "secret123")
				t.Setenv("WEBHOOK_PUBLIC_BASE_URL", "")
			},
			wantMsg: "WEBHOOK_PUBLIC_BASE_URL is required",
		},
		{
			name: "異常系: 未知のセッションストア",
			setup: func(t *testing.T) {
				setRequiredEnv(t)
				t.Setenv("SESSION_STORE", "memcached")
			},
			wantMsg: "unsupported session store backend",
		},
		{
			name: "異常系: APIキー認証有効なのにキーなし",
			setup: func(t *testing.T) {
				setRequiredEnv(t)
				t.Setenv("API_KEY_ENABLED", "true")
				t.Setenv("API_KEY", "")
			},
			wantMsg: "API_KEY is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup(t)
			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestWebhookConfig_CallbackURL(t *testing.T) {
	cfg := &WebhookConfig{PublicBaseURL: "https://pay.example.com"}
	assert.Equal(t, "https://pay.example.com/webhook", cfg.CallbackURL())

	cfg = &WebhookConfig{PublicBaseURL: "https://pay.example.com/"}
	assert.Equal(t, "https://pay.example.com/webhook", cfg.CallbackURL())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := &DatabaseConfig{
		Host:     "db.local",
		Port:     3306,
		User:     "app",
		Password: "pw",
		Database: "stellar_pay",
	}
	assert.Equal(t, "app:pw@tcp(db.local:3306)/stellar_pay?charset=utf8mb4&parseTime=True&loc=Local", cfg.DSN())
}

func TestRedisConfig_Address(t *testing.T) {
	cfg := &RedisConfig{Host: "cache.local", Port: 6379}
	assert.Equal(t, "cache.local:6379", cfg.Address())
}
