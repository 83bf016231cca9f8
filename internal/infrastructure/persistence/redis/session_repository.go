package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonathanbff/stellar-pay/internal/domain/session"
	"github.com/jonathanbff/stellar-pay/internal/infrastructure/config"
)

// キープレフィックス
const sessionKeyPrefix = "payment_session:"

// NewClient 新しいRedisクライアントを作成
func NewClient(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// sessionRecord Redisに保存するセッションのシリアライズ形式
type sessionRecord struct {
	Status     string          `json:"status"`
	Data       json.RawMessage `json:"data"`
	ReceivedAt time.Time       `json:"received_at"`
}

// SessionRepository Redis実装のSessionRepository
// TTL付きのSETで書き込むため、ストアはTTLで自然に有界となり、
// 同一キーへの書き込みは常に後着が勝つ
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewSessionRepository 新しいSessionRepositoryを作成
func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		client: client,
		ttl:    ttl,
		tracer: otel.Tracer("redis-session-repository"),
	}
}

// Save セッションを保存（同一アカウントIDは上書き、TTL更新）
func (r *SessionRepository) Save(ctx context.Context, s *session.PaymentSession) error {
	ctx, span := r.tracer.Start(ctx, "SessionRepository.Save")
	defer span.End()

	span.SetAttributes(attribute.String("account_id", s.AccountID()))

	record := sessionRecord{
		Status:     s.Status(),
		Data:       s.Data(),
		ReceivedAt: s.ReceivedAt(),
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal payment session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKeyPrefix+s.AccountID(), payload, r.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save payment session: %w", err)
	}

	return nil
}

// FindByAccountID アカウントIDでセッションを取得
func (r *SessionRepository) FindByAccountID(ctx context.Context, accountID string) (*session.PaymentSession, error) {
	ctx, span := r.tracer.Start(ctx, "SessionRepository.FindByAccountID")
	defer span.End()

	span.SetAttributes(attribute.String("account_id", accountID))

	payload, err := r.client.Get(ctx, sessionKeyPrefix+accountID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, session.ErrSessionNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to find payment session: %w", err)
	}

	var record sessionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to unmarshal payment session: %w", err)
	}

	return session.Reconstruct(accountID, record.Status, record.Data, record.ReceivedAt), nil
}

// Ping ストアの疎通確認
func (r *SessionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
