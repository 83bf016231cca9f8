package handler

import "encoding/json"

// WebhookEventRequest Webhookイベント
// @Description Webhookイベント。dataはプロバイダー定義の自由形式
type WebhookEventRequest struct {
	AccountID string          `json:"accountId" example:"acc_123"`
	Status    string          `json:"status" example:"paid"`
	Data      json.RawMessage `json:"data"`
}

// WebhookEventResponse Webhookイベント受信レスポンス
// @Description Webhookイベント受信レスポンス
type WebhookEventResponse struct {
	Received bool `json:"received" example:"true"`
}
