package provider

import (
	"time"
)

// AccessToken プロバイダーAPIのベアラートークン
// 中身は不透明な文字列であり、有効期限のみを管理する
type AccessToken struct {
	value     string
	expiresAt time.Time
}

// NewAccessToken 新しいAccessTokenを作成
// expiresInはプロバイダーが返すトークン有効期間（秒数由来のDuration）
func NewAccessToken(value string, expiresIn time.Duration) *AccessToken {
	return &AccessToken{
		value:     value,
		expiresAt: time.Now().Add(expiresIn),
	}
}

// Value トークン文字列を返す
func (t *AccessToken) Value() string {
	return t.value
}

// ExpiresAt 有効期限を返す
func (t *AccessToken) ExpiresAt() time.Time {
	return t.expiresAt
}

// Expired 有効期限切れかどうかを返す
// marginの分だけ早めに期限切れとみなし、使用中の失効を避ける
func (t *AccessToken) Expired(margin time.Duration) bool {
	return time.Now().After(t.expiresAt.Add(-margin))
}
