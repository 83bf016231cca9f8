package transfero

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/jonathanbff/stellar-pay/internal/domain/provider"
	"github.com/jonathanbff/stellar-pay/internal/infrastructure/config"
	otelinfra "github.com/jonathanbff/stellar-pay/internal/infrastructure/observability/otel"
)

// tokenResponse トークンエンドポイントのレスポンス
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// TokenSource プロバイダーのアクセストークンキャッシュ
// 再取得はsingleflightで合流させ、同時リクエストが重複したトークン取得を
// 発行しないようにする。取得失敗時は古いトークンを残さない
type TokenSource struct {
	http    *resty.Client
	cfg     *config.ProviderConfig
	logger  *otelinfra.Logger
	metrics *otelinfra.Metrics
	tracer  trace.Tracer

	mu    sync.Mutex
	token *provider.AccessToken
	group singleflight.Group
}

// NewTokenSource 新しいTokenSourceを作成
func NewTokenSource(cfg *config.ProviderConfig, logger *otelinfra.Logger, metrics *otelinfra.Metrics) *TokenSource {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.RequestTimeout)

	return &TokenSource{
		http:    httpClient,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		tracer:  otel.Tracer("transfero-token-source"),
	}
}

// Token 有効なベアラートークンを返す
// キャッシュが有効な間はネットワーク呼び出しを行わない
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	if token := s.cached(); token != "" {
		return token, nil
	}

	v, err, _ := s.group.Do("token", func() (interface{}, error) {
		// 待機中に別の呼び出しが取得済みの場合がある
		if token := s.cached(); token != "" {
			return token, nil
		}

		fresh, err := s.refresh(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.token = fresh
		s.mu.Unlock()

		return fresh.Value(), nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate キャッシュ中のトークンを破棄
func (s *TokenSource) Invalidate() {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()
}

// cached 有効なキャッシュ済みトークンを返す（なければ空文字）
func (s *TokenSource) cached() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != nil && !s.token.Expired(s.cfg.TokenExpiryMargin) {
		return s.token.Value()
	}
	return ""
}

// refresh クライアントクレデンシャルグラントでトークンを取得
func (s *TokenSource) refresh(ctx context.Context) (*provider.AccessToken, error) {
	ctx, span := s.tracer.Start(ctx, "TokenSource.refresh")
	defer span.End()

	s.logger.Info(ctx, "Refreshing provider access token", nil)

	var tokenResp tokenResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{
			"client_id":     s.cfg.ClientID,
			"client_secret": s.cfg.ClientSecret,
			"grant_type":    "client_credentials",
		}).
		SetResult(&tokenResp).
		Post("/auth/token")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.metrics.RecordTokenRefresh(ctx, false)
		return nil, fmt.Errorf("%w: %v", provider.ErrAuthenticationFailed, err)
	}

	if resp.StatusCode() != http.StatusOK || tokenResp.AccessToken == "" {
		err := fmt.Errorf("%w: token endpoint returned status %d", provider.ErrAuthenticationFailed, resp.StatusCode())
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Provider token refresh failed", err, map[string]interface{}{
			"status_code": resp.StatusCode(),
		})
		s.metrics.RecordTokenRefresh(ctx, false)
		return nil, err
	}

	expiresIn := time.Duration(tokenResp.ExpiresIn) * time.Second
	if expiresIn <= 0 {
		// expires_inを返さないレスポンスに対する保守的なデフォルト
		expiresIn = 5 * time.Minute
	}

	s.metrics.RecordTokenRefresh(ctx, true)
	s.logger.Info(ctx, "Provider access token refreshed", map[string]interface{}{
		"expires_in_seconds": int64(expiresIn.Seconds()),
	})

	return provider.NewAccessToken(tokenResp.AccessToken, expiresIn), nil
}
