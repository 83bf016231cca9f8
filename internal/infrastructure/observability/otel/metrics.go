package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics メトリクス定義
type Metrics struct {
	// QRコード作成数
	PaymentsCreated metric.Int64Counter

	// Webhookイベント受信数
	WebhookEvents metric.Int64Counter

	// プロバイダーAPI呼び出し時間
	ProviderRequestDuration metric.Float64Histogram

	// トークン再取得数
	TokenRefreshes metric.Int64Counter

	// リクエスト数
	RequestCount metric.Int64Counter

	// レスポンス時間
	ResponseTime metric.Float64Histogram

	// エラー率
	ErrorCount metric.Int64Counter
}

// NewMetrics 新しいMetricsを作成
func NewMetrics(meterName string) (*Metrics, error) {
	meter := otel.Meter(meterName)

	paymentsCreated, err := meter.Int64Counter(
		"payments_created_total",
		metric.WithDescription("Total number of deposit QR codes created"),
	)
	if err != nil {
		return nil, err
	}

	webhookEvents, err := meter.Int64Counter(
		"webhook_events_total",
		metric.WithDescription("Total number of webhook events ingested"),
	)
	if err != nil {
		return nil, err
	}

	providerRequestDuration, err := meter.Float64Histogram(
		"provider_request_duration_seconds",
		metric.WithDescription("Duration of payment provider API calls in seconds"),
	)
	if err != nil {
		return nil, err
	}

	tokenRefreshes, err := meter.Int64Counter(
		"token_refreshes_total",
		metric.WithDescription("Total number of provider token refreshes"),
	)
	if err != nil {
		return nil, err
	}

	requestCount, err := meter.Int64Counter(
		"requests_total",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, err
	}

	responseTime, err := meter.Float64Histogram(
		"response_time_seconds",
		metric.WithDescription("Response time in seconds"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		PaymentsCreated:         paymentsCreated,
		WebhookEvents:           webhookEvents,
		ProviderRequestDuration: providerRequestDuration,
		TokenRefreshes:          tokenRefreshes,
		RequestCount:            requestCount,
		ResponseTime:            responseTime,
		ErrorCount:              errorCount,
	}, nil
}

// RecordPaymentCreated QRコード作成を記録
func (m *Metrics) RecordPaymentCreated(ctx context.Context, webhookRegistered bool) {
	m.PaymentsCreated.Add(ctx, 1,
		metric.WithAttributes(
			attribute.Bool("webhook_registered", webhookRegistered),
		),
	)
}

// RecordWebhookEvent Webhookイベントの受信を記録
func (m *Metrics) RecordWebhookEvent(ctx context.Context, status string) {
	m.WebhookEvents.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("status", status),
		),
	)
}

// RecordProviderRequest プロバイダーAPI呼び出しを記録
func (m *Metrics) RecordProviderRequest(ctx context.Context, operation string, duration float64, success bool) {
	m.ProviderRequestDuration.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.Bool("success", success),
		),
	)
}

// RecordTokenRefresh トークン再取得を記録
func (m *Metrics) RecordTokenRefresh(ctx context.Context, success bool) {
	m.TokenRefreshes.Add(ctx, 1,
		metric.WithAttributes(
			attribute.Bool("success", success),
		),
	)
}

// RecordRequest リクエストを記録
func (m *Metrics) RecordRequest(ctx context.Context, method, path string) {
	m.RequestCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordResponseTime レスポンス時間を記録
func (m *Metrics) RecordResponseTime(ctx context.Context, method, path string, duration float64) {
	m.ResponseTime.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordError エラーを記録
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	m.ErrorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error_type", errorType),
		),
	)
}
