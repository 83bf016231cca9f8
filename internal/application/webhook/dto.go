package webhook

import "encoding/json"

// EventRequest プロバイダーから届くWebhookイベント
// statusとdataはプロバイダー定義の自由形式であり、検証しない
type EventRequest struct {
	AccountID string
	Status    string
	Data      json.RawMessage
}
