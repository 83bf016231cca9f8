package handler

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/jonathanbff/stellar-pay/internal/domain/session"
)

// MockProviderClient モックプロバイダークライアント
type MockProviderClient struct {
	mock.Mock
}

func (m *MockProviderClient) CreateDepositQR(ctx context.Context, accountID string, amount float64) (json.RawMessage, error) {
	args := m.Called(ctx, accountID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockProviderClient) SubscribeWebhook(ctx context.Context, accountID, callbackURL, eventName string) error {
	args := m.Called(ctx, accountID, callbackURL, eventName)
	return args.Error(0)
}

// MockSessionRepository モックセッションリポジトリ
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Save(ctx context.Context, s *session.PaymentSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepository) FindByAccountID(ctx context.Context, accountID string) (*session.PaymentSession, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.PaymentSession), args.Error(1)
}

func (m *MockSessionRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
