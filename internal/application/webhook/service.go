package webhook

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonathanbff/stellar-pay/internal/domain/session"
	otelinfra "github.com/jonathanbff/stellar-pay/internal/infrastructure/observability/otel"
)

// WebhookApplicationService Webhook受信サービス
// 受信イベントを検証し、決済セッションストアを更新する
type WebhookApplicationService struct {
	sessionRepo session.SessionRepository
	logger      *otelinfra.Logger
	metrics     *otelinfra.Metrics
	tracer      trace.Tracer
}

// NewWebhookApplicationService 新しいWebhookApplicationServiceを作成
func NewWebhookApplicationService(
	sessionRepo session.SessionRepository,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *WebhookApplicationService {
	return &WebhookApplicationService{
		sessionRepo: sessionRepo,
		logger:      logger,
		metrics:     metrics,
		tracer:      otel.Tracer("webhook-service"),
	}
}

// HandleEvent Webhookイベントを処理してセッションストアを更新
//
// ステータス遷移の妥当性は検証しない。プロバイダーの配信順序に保証が
// ないため、同一アカウントへのイベントは常に後着が既存の記録を上書きする。
// アカウントIDの突き合わせ（create-paymentで作られた決済かどうか）も
// 行わない。これは観測された外部仕様の踏襲であり、既知のギャップとして
// DESIGN.mdに記録している
func (s *WebhookApplicationService) HandleEvent(ctx context.Context, req *EventRequest) error {
	ctx, span := s.tracer.Start(ctx, "WebhookApplicationService.HandleEvent")
	defer span.End()

	span.SetAttributes(
		attribute.String("account_id", req.AccountID),
		attribute.String("status", req.Status),
	)

	sess, err := session.NewPaymentSession(req.AccountID, req.Status, req.Data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Warn(ctx, "Rejected malformed webhook event", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	if err := s.sessionRepo.Save(ctx, sess); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to record webhook event", err, map[string]interface{}{
			"account_id": req.AccountID,
		})
		s.metrics.RecordError(ctx, "webhook_record_failed")
		return err
	}

	s.metrics.RecordWebhookEvent(ctx, req.Status)
	s.logger.Info(ctx, "Webhook event recorded", map[string]interface{}{
		"account_id": req.AccountID,
		"status":     req.Status,
	})

	return nil
}
