package session

import "errors"

var (
	// ErrSessionNotFound セッションが見つからないエラー（Webhook未受信）
	ErrSessionNotFound = errors.New("payment session not found")
	// ErrAccountIDRequired アカウントIDが指定されていないエラー
	ErrAccountIDRequired = errors.New("account id is required")
)
