package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/jonathanbff/stellar-pay/internal/domain/session"
)

func TestSessionRepository_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &SessionRepository{
		db:     &DB{DB: db},
		tracer: otel.Tracer("test"),
	}

	tests := []struct {
		name      string
		session   *session.PaymentSession
		setupMock func()
		wantError bool
	}{
		{
			name: "正常系: セッションを保存",
			session: func() *session.PaymentSession {
				s, err := session.NewPaymentSession("acc123", "paid", json.RawMessage(`{"txId":"t1"}`))
				require.NoError(t, err)
				return s
			}(),
			setupMock: func() {
				mock.ExpectExec(`INSERT INTO payment_sessions`).
					WithArgs(
						"acc123",
						"paid",
						`{"txId":"t1"}`,
						sqlmock.AnyArg(),
					).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
			wantError: false,
		},
		{
			name: "正常系: データなしのイベントはnullで保存",
			session: func() *session.PaymentSession {
				s, err := session.NewPaymentSession("acc123", "created", nil)
				require.NoError(t, err)
				return s
			}(),
			setupMock: func() {
				mock.ExpectExec(`INSERT INTO payment_sessions`).
					WithArgs(
						"acc123",
						"created",
						"null",
						sqlmock.AnyArg(),
					).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
			wantError: false,
		},
		{
			name: "異常系: DBエラー",
			session: func() *session.PaymentSession {
				s, err := session.NewPaymentSession("acc123", "paid", json.RawMessage(`{}`))
				require.NoError(t, err)
				return s
			}(),
			setupMock: func() {
				mock.ExpectExec(`INSERT INTO payment_sessions`).
					WillReturnError(sql.ErrConnDone)
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()
			err := repo.Save(context.Background(), tt.session)

			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSessionRepository_FindByAccountID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &SessionRepository{
		db:     &DB{DB: db},
		tracer: otel.Tracer("test"),
	}

	receivedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		accountID string
		setupMock func()
		wantError error
		checkFunc func(*testing.T, *session.PaymentSession)
	}{
		{
			name:      "正常系: セッションを取得",
			accountID: "acc123",
			setupMock: func() {
				rows := sqlmock.NewRows([]string{"account_id", "status", "data", "received_at"}).
					AddRow("acc123", "paid", `{"txId":"t1"}`, receivedAt)
				mock.ExpectQuery(`SELECT account_id, status, data, received_at`).
					WithArgs("acc123").
					WillReturnRows(rows)
			},
			checkFunc: func(t *testing.T, s *session.PaymentSession) {
				assert.Equal(t, "acc123", s.AccountID())
				assert.Equal(t, "paid", s.Status())
				assert.JSONEq(t, `{"txId":"t1"}`, string(s.Data()))
				assert.Equal(t, receivedAt, s.ReceivedAt())
			},
		},
		{
			name:      "異常系: セッション未記録",
			accountID: "unknown",
			setupMock: func() {
				mock.ExpectQuery(`SELECT account_id, status, data, received_at`).
					WithArgs("unknown").
					WillReturnError(sql.ErrNoRows)
			},
			wantError: session.ErrSessionNotFound,
		},
		{
			name:      "異常系: DBエラー",
			accountID: "acc123",
			setupMock: func() {
				mock.ExpectQuery(`SELECT account_id, status, data, received_at`).
					WithArgs("acc123").
					WillReturnError(sql.ErrConnDone)
			},
			wantError: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()
			s, err := repo.FindByAccountID(context.Background(), tt.accountID)

			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				assert.Nil(t, s)
			} else {
				require.NoError(t, err)
				tt.checkFunc(t, s)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSessionRepository_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	repo := NewSessionRepository(&DB{DB: db})

	mock.ExpectPing()
	assert.NoError(t, repo.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
