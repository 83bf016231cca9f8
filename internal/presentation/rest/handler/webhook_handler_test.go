package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	webhookapp "github.com/jonathanbff/stellar-pay/internal/application/webhook"
	"github.com/jonathanbff/stellar-pay/internal/domain/session"
	otelinfra "github.com/jonathanbff/stellar-pay/internal/infrastructure/observability/otel"
)

func newWebhookTestHandler(t *testing.T, mockRepo *MockSessionRepository) (*WebhookHandler, *otelinfra.Logger) {
	t.Helper()
	logger := otelinfra.NewLogger()
	metrics, err := otelinfra.NewMetrics("test")
	require.NoError(t, err)

	appService := webhookapp.NewWebhookApplicationService(mockRepo, logger, metrics)
	return NewWebhookHandler(appService), logger
}

func TestWebhookHandler_ReceiveEvent(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    string
		setupMocks     func(*MockSessionRepository)
		expectedStatus int
		checkFunc      func(*testing.T, *MockSessionRepository, []byte)
	}{
		{
			name:        "正常系: イベントを記録してreceived=trueを返す",
			requestBody: `{"accountId":"A1","status":"paid","data":{"txId":"t-1","amount":150.5}}`,
			setupMocks: func(msr *MockSessionRepository) {
				msr.On("Save", mock.Anything, mock.MatchedBy(func(s *session.PaymentSession) bool {
					return s.AccountID() == "A1" && s.Status() == "paid"
				})).Return(nil)
			},
			expectedStatus: http.StatusOK,
			checkFunc: func(t *testing.T, msr *MockSessionRepository, body []byte) {
				var resp WebhookEventResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.True(t, resp.Received)
			},
		},
		{
			name:        "正常系: dataフィールドのみが保存される（封筒は含まない）",
			requestBody: `{"accountId":"A1","status":"paid","data":{"x":1}}`,
			setupMocks: func(msr *MockSessionRepository) {
				msr.On("Save", mock.Anything, mock.MatchedBy(func(s *session.PaymentSession) bool {
					var payload map[string]interface{}
					if err := json.Unmarshal(s.Data(), &payload); err != nil {
						return false
					}
					_, hasEnvelope := payload["accountId"]
					return !hasEnvelope && payload["x"] == float64(1)
				})).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "正常系: dataなしのイベントも記録される",
			requestBody: `{"accountId":"A1","status":"created"}`,
			setupMocks: func(msr *MockSessionRepository) {
				msr.On("Save", mock.Anything, mock.MatchedBy(func(s *session.PaymentSession) bool {
					return s.AccountID() == "A1" && len(s.Data()) == 0
				})).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "異常系: アカウントIDなしは400でストアに触れない",
			requestBody:    `{"status":"paid"}`,
			setupMocks:     func(msr *MockSessionRepository) {},
			expectedStatus: http.StatusBadRequest,
			checkFunc: func(t *testing.T, msr *MockSessionRepository, body []byte) {
				msr.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			},
		},
		{
			name:           "異常系: 不正なJSONは400",
			requestBody:    `not json`,
			setupMocks:     func(msr *MockSessionRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			mockRepo := new(MockSessionRepository)
			tt.setupMocks(mockRepo)

			handler, logger := newWebhookTestHandler(t, mockRepo)

			req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte(tt.requestBody)))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := invokeWithErrorHandler(c, logger, handler.ReceiveEvent)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.checkFunc != nil {
				tt.checkFunc(t, mockRepo, rec.Body.Bytes())
			}
			mockRepo.AssertExpectations(t)
		})
	}
}
