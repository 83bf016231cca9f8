package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationFailed トークン取得に失敗したエラー
	ErrAuthenticationFailed = errors.New("authentication with payment provider failed")
	// ErrInvalidAmount 金額が正の数値でないエラー
	ErrInvalidAmount = errors.New("amount must be a positive number")
)

// RequestError プロバイダーAPIが非成功レスポンスを返したエラー
// 診断用にステータスコードとレスポンスボディを保持する
type RequestError struct {
	StatusCode int
	Body       string
	Timeout    bool
}

// Error エラーメッセージを返す
func (e *RequestError) Error() string {
	if e.Timeout {
		return "provider request timed out"
	}
	return fmt.Sprintf("provider request failed with status %d: %s", e.StatusCode, e.Body)
}
