package handler

import (
	"encoding/json"
	"time"
)

// CreatePaymentRequest 決済作成リクエスト
// @Description 決済作成リクエスト
type CreatePaymentRequest struct {
	AccountID string  `json:"accountId" example:"acc_123"`
	Amount    float64 `json:"amount" example:"150.5"`
}

// CreatePaymentResponse 決済作成レスポンス
// @Description 決済作成レスポンス。qrDataはプロバイダーのレスポンスをそのまま返す
type CreatePaymentResponse struct {
	QRData            json.RawMessage `json:"qrData"`
	Webhook           string          `json:"webhook" example:"https://pay.example.com/webhook"`
	StatusEndpoint    string          `json:"statusEndpoint" example:"/payment-status/acc_123"`
	WebhookRegistered bool            `json:"webhookRegistered" example:"true"`
}

// PaymentStatusResponse 決済ステータス照会レスポンス
// @Description Webhookで受信した最新の決済ステータス
type PaymentStatusResponse struct {
	Status     string          `json:"status" example:"paid"`
	Data       json.RawMessage `json:"data"`
	ReceivedAt time.Time       `json:"receivedAt"`
}
