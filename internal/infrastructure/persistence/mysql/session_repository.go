package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonathanbff/stellar-pay/internal/domain/session"
)

// SessionRepository MySQL実装のSessionRepository
// アカウントIDを主キーとするupsertで書き込むため、後着のWebhookが
// 常に既存エントリを上書きする（last-write-wins）
type SessionRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewSessionRepository 新しいSessionRepositoryを作成
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{
		db:     db,
		tracer: otel.Tracer("mysql-session-repository"),
	}
}

// Save セッションを保存（同一アカウントIDは上書き）
func (r *SessionRepository) Save(ctx context.Context, s *session.PaymentSession) error {
	ctx, span := r.tracer.Start(ctx, "SessionRepository.Save")
	defer span.End()

	span.SetAttributes(attribute.String("account_id", s.AccountID()))

	query := `
		INSERT INTO payment_sessions (account_id, status, data, received_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			status = VALUES(status),
			data = VALUES(data),
			received_at = VALUES(received_at)
	`

	data := s.Data()
	if len(data) == 0 {
		data = json.RawMessage("null")
	}

	_, err := r.db.ExecContext(ctx, query,
		s.AccountID(),
		s.Status(),
		string(data),
		s.ReceivedAt(),
	)
	if err != nil {
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

	query := `
		SELECT account_id, status, data, received_at
		FROM payment_sessions
		WHERE account_id = ?
	`

	var dbAccountID, dbStatus string
	var dataJSON sql.NullString
	var receivedAt time.Time

	err := r.db.QueryRowContext(ctx, query, accountID).Scan(
		&dbAccountID,
		&dbStatus,
		&dataJSON,
		&receivedAt,
	)
	if err == sql.ErrNoRows {
		return nil, session.ErrSessionNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to find payment session: %w", err)
	}

	var data json.RawMessage
	if dataJSON.Valid {
		data = json.RawMessage(dataJSON.String)
	}

	return session.Reconstruct(dbAccountID, dbStatus, data, receivedAt), nil
}

// Ping ストアの疎通確認
func (r *SessionRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
