package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaymentSession(t *testing.T) {
	tests := []struct {
		name      string
		accountID string
		status    string
		data      json.RawMessage
		wantError error
	}{
		{
			name:      "正常系: セッションを作成",
			accountID: "acc123",
			status:    "created",
			data:      json.RawMessage(`{"txId":"t1"}`),
			wantError: nil,
		},
		{
			name:      "正常系: ステータスと本文は自由形式（空でも可）",
			accountID: "acc123",
			status:    "",
			data:      nil,
			wantError: nil,
		},
		{
			name:      "異常系: アカウントIDが空",
			accountID: "",
			status:    "paid",
			data:      json.RawMessage(`{}`),
			wantError: ErrAccountIDRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewPaymentSession(tt.accountID, tt.status, tt.data)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.accountID, s.AccountID())
			assert.Equal(t, tt.status, s.Status())
			assert.Equal(t, tt.data, s.Data())
			assert.WithinDuration(t, time.Now(), s.ReceivedAt(), time.Second)
		})
	}
}

func TestPaymentSession_Overwrite(t *testing.T) {
	s, err := NewPaymentSession("acc123", "created", json.RawMessage(`{"x":1}`))
	require.NoError(t, err)
	before := s.ReceivedAt()

	s.Overwrite("paid", json.RawMessage(`{"x":2}`))

	assert.Equal(t, "acc123", s.AccountID())
	assert.Equal(t, "paid", s.Status())
	assert.Equal(t, json.RawMessage(`{"x":2}`), s.Data())
	assert.False(t, s.ReceivedAt().Before(before))
}

func TestReconstruct(t *testing.T) {
	receivedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := Reconstruct("acc123", "expired", json.RawMessage(`{"reason":"ttl"}`), receivedAt)

	assert.Equal(t, "acc123", s.AccountID())
	assert.Equal(t, "expired", s.Status())
	assert.Equal(t, json.RawMessage(`{"reason":"ttl"}`), s.Data())
	assert.Equal(t, receivedAt, s.ReceivedAt())
}
