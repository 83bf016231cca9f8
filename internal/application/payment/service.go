package payment

import (
	"context"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonathanbff/stellar-pay/internal/domain/provider"
	"github.com/jonathanbff/stellar-pay/internal/domain/session"
	otelinfra "github.com/jonathanbff/stellar-pay/internal/infrastructure/observability/otel"
)

// PaymentApplicationService 決済オーケストレーションサービス
// QRコード作成とWebhook購読の呼び出し順序、および部分的失敗の扱いを司る
type PaymentApplicationService struct {
	providerClient provider.Client
	sessionRepo    session.SessionRepository
	callbackURL    string
	eventName      string
	logger         *otelinfra.Logger
	metrics        *otelinfra.Metrics
	tracer         trace.Tracer
}

// NewPaymentApplicationService 新しいPaymentApplicationServiceを作成
// callbackURLは設定から注入される外部公開URLであり、受信リクエストから導出しない
func NewPaymentApplicationService(
	providerClient provider.Client,
	sessionRepo session.SessionRepository,
	callbackURL string,
	eventName string,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *PaymentApplicationService {
	return &PaymentApplicationService{
		providerClient: providerClient,
		sessionRepo:    sessionRepo,
		callbackURL:    callbackURL,
		eventName:      eventName,
		logger:         logger,
		metrics:        metrics,
		tracer:         otel.Tracer("payment-service"),
	}
}

// CreatePayment 決済を作成（QRコード作成 → Webhook購読の順で呼び出す）
//
// QRコード作成に失敗した場合はWebhook購読を試みずに中断する。
// QRコード作成後にWebhook購読が失敗した場合、QRコードは既に利用者へ
// 渡せる状態にあるため、購読失敗をWebhookRegistered=falseとして返し
// 呼び出し全体は成功させる。どちらの呼び出しも自動リトライはしない
func (s *PaymentApplicationService) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*CreatePaymentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentApplicationService.CreatePayment")
	defer span.End()

	span.SetAttributes(
		attribute.String("account_id", req.AccountID),
		attribute.Float64("amount", req.Amount),
	)

	// バリデーション（ネットワーク呼び出し前に拒否する）
	if req.AccountID == "" {
		err := session.ErrAccountIDRequired
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	if req.Amount <= 0 || math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		err := provider.ErrInvalidAmount
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	s.logger.Info(ctx, "Creating payment", map[string]interface{}{
		"account_id": req.AccountID,
		"amount":     req.Amount,
	})

	qrData, err := s.providerClient.CreateDepositQR(ctx, req.AccountID, req.Amount)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to create deposit QR code", err, map[string]interface{}{
			"account_id": req.AccountID,
		})
		s.metrics.RecordError(ctx, "qr_creation_failed")
		return nil, err
	}

	webhookRegistered := true
	if err := s.providerClient.SubscribeWebhook(ctx, req.AccountID, s.callbackURL, s.eventName); err != nil {
		// QRコードは発行済みなので中断しない。購読失敗は結果のフラグで観測可能にする
		webhookRegistered = false
		span.SetAttributes(attribute.Bool("webhook_registered", false))
		s.logger.Warn(ctx, "Webhook subscription failed after QR creation", map[string]interface{}{
			"account_id": req.AccountID,
			"error":      err.Error(),
		})
		s.metrics.RecordError(ctx, "webhook_subscription_failed")
	}

	s.metrics.RecordPaymentCreated(ctx, webhookRegistered)
	s.logger.Info(ctx, "Payment created", map[string]interface{}{
		"account_id":         req.AccountID,
		"webhook_registered": webhookRegistered,
	})

	return &CreatePaymentResponse{
		QRData:            qrData,
		WebhookURL:        s.callbackURL,
		StatusEndpoint:    "/payment-status/" + req.AccountID,
		WebhookRegistered: webhookRegistered,
	}, nil
}

// GetPaymentStatus 決済ステータスを照会
// Webhookが一度も届いていないアカウントはErrSessionNotFoundを返す。
// これはポーリング中に起こり得る正常な結果であり、エラーログは出さない
func (s *PaymentApplicationService) GetPaymentStatus(ctx context.Context, accountID string) (*PaymentStatusResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentApplicationService.GetPaymentStatus")
	defer span.End()

	span.SetAttributes(attribute.String("account_id", accountID))

	if accountID == "" {
		err := session.ErrAccountIDRequired
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	sess, err := s.sessionRepo.FindByAccountID(ctx, accountID)
	if err == session.ErrSessionNotFound {
		s.logger.Debug(ctx, "No payment session recorded yet", map[string]interface{}{
			"account_id": accountID,
		})
		return nil, err
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to look up payment session", err, map[string]interface{}{
			"account_id": accountID,
		})
		return nil, err
	}

	return &PaymentStatusResponse{
		Status:     sess.Status(),
		Data:       sess.Data(),
		ReceivedAt: sess.ReceivedAt(),
	}, nil
}
