package session

import (
	"context"
)

// SessionRepository 決済セッションリポジトリインターフェース
type SessionRepository interface {
	// Save セッションを保存（同一アカウントIDの既存エントリは上書き）
	Save(ctx context.Context, session *PaymentSession) error

	// FindByAccountID アカウントIDでセッションを取得
	// 未記録の場合はErrSessionNotFoundを返す
	FindByAccountID(ctx context.Context, accountID string) (*PaymentSession, error)

	// Ping ストアの疎通確認
	Ping(ctx context.Context) error
}
