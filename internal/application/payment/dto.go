package payment

import (
	"encoding/json"
	"time"
)

// CreatePaymentRequest 決済作成リクエスト
type CreatePaymentRequest struct {
	AccountID string
	Amount    float64
}

// CreatePaymentResponse 決済作成レスポンス
// WebhookRegisteredがfalseの場合、QRコードは発行済みだが自動の
// ステータス更新が届かない可能性がある（部分的成功）
type CreatePaymentResponse struct {
	QRData            json.RawMessage
	WebhookURL        string
	StatusEndpoint    string
	WebhookRegistered bool
}

// PaymentStatusResponse 決済ステータス照会レスポンス
type PaymentStatusResponse struct {
	Status     string
	Data       json.RawMessage
	ReceivedAt time.Time
}
