package session

import (
	"encoding/json"
	"time"
)

// PaymentSession 決済セッションエンティティ
// アカウントIDごとに最後に受信したWebhook通知の内容を保持する
type PaymentSession struct {
	accountID  string
	status     string
	data       json.RawMessage
	receivedAt time.Time
}

// NewPaymentSession 新しいPaymentSessionエンティティを作成
// statusはプロバイダーが定義する自由形式の文字列であり、この層では検証しない
func NewPaymentSession(accountID, status string, data json.RawMessage) (*PaymentSession, error) {
	if accountID == "" {
		return nil, ErrAccountIDRequired
	}
	return &PaymentSession{
		accountID:  accountID,
		status:     status,
		data:       data,
		receivedAt: time.Now(),
	}, nil
}

// Reconstruct 永続化層からPaymentSessionエンティティを復元
func Reconstruct(accountID, status string, data json.RawMessage, receivedAt time.Time) *PaymentSession {
	return &PaymentSession{
		accountID:  accountID,
		status:     status,
		data:       data,
		receivedAt: receivedAt,
	}
}

// AccountID アカウントIDを返す
func (s *PaymentSession) AccountID() string {
	return s.accountID
}

// Status 最後に通知されたステータスを返す
func (s *PaymentSession) Status() string {
	return s.status
}

// Data 最後に受信したWebhookペイロードを返す
func (s *PaymentSession) Data() json.RawMessage {
	return s.data
}

// ReceivedAt 最後のWebhook受信日時を返す
func (s *PaymentSession) ReceivedAt() time.Time {
	return s.receivedAt
}

// Overwrite 新しいWebhookイベントの内容でセッションを上書き
// 後着のイベントが常に勝つ（配信順序はプロバイダーに保証されない）
func (s *PaymentSession) Overwrite(status string, data json.RawMessage) {
	s.status = status
	s.data = data
	s.receivedAt = time.Now()
}
