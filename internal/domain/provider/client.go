package provider

import (
	"context"
	"encoding/json"
)

// Client 決済プロバイダークライアントインターフェース
type Client interface {
	// CreateDepositQR 入金用QRコードを作成
	// レスポンスボディはプロバイダー定義の不透明な構造体であり、解釈せずそのまま返す
	// 非2xxレスポンスは*RequestErrorとして返す。自動リトライは行わない
	CreateDepositQR(ctx context.Context, accountID string, amount float64) (json.RawMessage, error)

	// SubscribeWebhook 入金通知のコールバックURLを登録
	// 既に登録済みの場合は成功として扱う
	SubscribeWebhook(ctx context.Context, accountID, callbackURL, eventName string) error
}

// TokenSource ベアラートークンの供給元インターフェース
type TokenSource interface {
	// Token 有効なベアラートークンを返す
	// キャッシュが空または期限切れの場合はプロバイダーから再取得する
	Token(ctx context.Context) (string, error)

	// Invalidate キャッシュ中のトークンを破棄
	// 認可エラーを受けた呼び出し側が次回の再取得を強制するために呼ぶ
	Invalidate()
}
