package transfero

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonathanbff/stellar-pay/internal/domain/provider"
	"github.com/jonathanbff/stellar-pay/internal/infrastructure/config"
	otelinfra "github.com/jonathanbff/stellar-pay/internal/infrastructure/observability/otel"
)

// Client Transfero BaaS APIクライアント
// トークンの取得とキャッシュはTokenSourceに委譲し、自身では保持しない
type Client struct {
	http    *resty.Client
	tokens  provider.TokenSource
	logger  *otelinfra.Logger
	metrics *otelinfra.Metrics
	tracer  trace.Tracer
}

// NewClient 新しいClientを作成
func NewClient(cfg *config.ProviderConfig, tokens provider.TokenSource, logger *otelinfra.Logger, metrics *otelinfra.Metrics) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.RequestTimeout)

	return &Client{
		http:    httpClient,
		tokens:  tokens,
		logger:  logger,
		metrics: metrics,
		tracer:  otel.Tracer("transfero-client"),
	}
}

// CreateDepositQR 入金用QRコードを作成
// レスポンスボディは解釈せずそのまま返す。失敗時の自動リトライは行わない
// （プロバイダー側に重複した決済インテントを作るリスクがあるため）
func (c *Client) CreateDepositQR(ctx context.Context, accountID string, amount float64) (json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, "TransferoClient.CreateDepositQR")
	defer span.End()

	span.SetAttributes(
		attribute.String("account_id", accountID),
		attribute.Float64("amount", amount),
	)

	token, err := c.tokens.Token(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(token).
		SetBody(map[string]float64{"amount": amount}).
		Post(fmt.Sprintf("/api/v2.0/accounts/%s/depositDynamicQRCode", url.PathEscape(accountID)))
	c.metrics.RecordProviderRequest(ctx, "create_deposit_qr", time.Since(start).Seconds(), err == nil && resp != nil && resp.IsSuccess())

	if err != nil {
		reqErr := c.transportError(err)
		span.RecordError(reqErr)
		span.SetStatus(otelcodes.Error, reqErr.Error())
		c.logger.Error(ctx, "QR code creation call failed", reqErr, map[string]interface{}{
			"account_id": accountID,
		})
		return nil, reqErr
	}

	if !resp.IsSuccess() {
		reqErr := c.responseError(resp)
		span.RecordError(reqErr)
		span.SetStatus(otelcodes.Error, reqErr.Error())
		c.logger.Error(ctx, "QR code creation rejected by provider", reqErr, map[string]interface{}{
			"account_id":  accountID,
			"status_code": resp.StatusCode(),
		})
		return nil, reqErr
	}

	c.logger.Info(ctx, "QR code created", map[string]interface{}{
		"account_id": accountID,
	})

	// レスポンスボディをそのまま呼び出し元へ引き渡す
	payload := make(json.RawMessage, len(resp.Body()))
	copy(payload, resp.Body())
	return payload, nil
}

// SubscribeWebhook 入金通知のコールバックURLを登録
// プロバイダーが既登録を理由に409を返した場合は成功として扱う
func (c *Client) SubscribeWebhook(ctx context.Context, accountID, callbackURL, eventName string) error {
	ctx, span := c.tracer.Start(ctx, "TransferoClient.SubscribeWebhook")
	defer span.End()

	span.SetAttributes(
		attribute.String("account_id", accountID),
		attribute.String("event_name", eventName),
	)

	token, err := c.tokens.Token(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(token).
		SetBody(map[string]string{
			"url":   callbackURL,
			"event": eventName,
		}).
		Post(fmt.Sprintf("/callback/v2.0/subscribe/depositorders/accounts/%s", url.PathEscape(accountID)))
	c.metrics.RecordProviderRequest(ctx, "subscribe_webhook", time.Since(start).Seconds(), err == nil && resp != nil && resp.IsSuccess())

	if err != nil {
		reqErr := c.transportError(err)
		span.RecordError(reqErr)
		span.SetStatus(otelcodes.Error, reqErr.Error())
		c.logger.Error(ctx, "Webhook subscription call failed", reqErr, map[string]interface{}{
			"account_id": accountID,
		})
		return reqErr
	}

	if resp.StatusCode() == http.StatusConflict {
		// 既に同じ購読が存在する。呼び出し元から見て冪等に成功させる
		c.logger.Info(ctx, "Webhook subscription already exists", map[string]interface{}{
			"account_id": accountID,
		})
		return nil
	}

	if !resp.IsSuccess() {
		reqErr := c.responseError(resp)
		span.RecordError(reqErr)
		span.SetStatus(otelcodes.Error, reqErr.Error())
		c.logger.Error(ctx, "Webhook subscription rejected by provider", reqErr, map[string]interface{}{
			"account_id":  accountID,
			"status_code": resp.StatusCode(),
		})
		return reqErr
	}

	c.logger.Info(ctx, "Webhook subscription registered", map[string]interface{}{
		"account_id":   accountID,
		"callback_url": callbackURL,
	})

	return nil
}

// transportError トランスポート層のエラーをRequestErrorへ変換
func (c *Client) transportError(err error) *provider.RequestError {
	return &provider.RequestError{
		Body:    err.Error(),
		Timeout: isTimeout(err),
	}
}

// responseError 非成功レスポンスをRequestErrorへ変換
// 認可エラーの場合はキャッシュ済みトークンを破棄し、次回の再取得を強制する
func (c *Client) responseError(resp *resty.Response) *provider.RequestError {
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		c.tokens.Invalidate()
	}
	return &provider.RequestError{
		StatusCode: resp.StatusCode(),
		Body:       string(resp.Body()),
	}
}

// isTimeout タイムアウト起因のエラーかどうかを判定
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
