package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jonathanbff/stellar-pay/internal/domain/provider"
	"github.com/jonathanbff/stellar-pay/internal/domain/session"
	otelinfra "github.com/jonathanbff/stellar-pay/internal/infrastructure/observability/otel"
)

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// ErrorHandlerMiddleware エラーハンドリングミドルウェア
func ErrorHandlerMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			// エラーハンドリング
			return handleError(c, err, logger)
		}
	}
}

// handleError エラーを処理して適切なHTTPレスポンスを返す
func handleError(c echo.Context, err error, logger *otelinfra.Logger) error {
	ctx := c.Request().Context()

	// ドメインエラーの判定と処理
	if errors.Is(err, session.ErrAccountIDRequired) {
		logger.Warn(ctx, "Account ID required", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "account_id_required",
			Message: err.Error(),
		})
	}

	if errors.Is(err, provider.ErrInvalidAmount) {
		logger.Warn(ctx, "Invalid amount", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_amount",
			Message: err.Error(),
		})
	}

	// Webhook未受信の照会はポーリング中の正常な応答なのでWarnにしない
	if errors.Is(err, session.ErrSessionNotFound) {
		logger.Debug(ctx, "Payment session not found", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "payment_session_not_found",
			Message: err.Error(),
		})
	}

	if errors.Is(err, provider.ErrAuthenticationFailed) {
		logger.Error(ctx, "Provider authentication failed", err, nil)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "provider_authentication_failed",
			Message: "Failed to authenticate with the payment provider",
		})
	}

	// プロバイダーAPI呼び出しの失敗（タイムアウト含む）
	var reqErr *provider.RequestError
	if errors.As(err, &reqErr) {
		logger.Error(ctx, "Provider request failed", err, map[string]interface{}{
			"provider_status": reqErr.StatusCode,
		})
		resp := ErrorResponse{
			Error:   "provider_request_failed",
			Message: reqErr.Error(),
			Details: reqErr.Body,
		}
		if reqErr.Timeout {
			resp.Code = "timeout"
		}
		return c.JSON(http.StatusInternalServerError, resp)
	}

	// EchoのHTTPエラー
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		logger.Warn(ctx, "HTTP error", map[string]interface{}{
			"status_code": httpErr.Code,
			"message":     httpErr.Message,
		})
		message := ""
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(httpErr.Code)
		}
		return c.JSON(httpErr.Code, ErrorResponse{
			Error:   http.StatusText(httpErr.Code),
			Message: message,
		})
	}

	// 予期しないエラー
	logger.Error(ctx, "Internal server error", err, map[string]interface{}{
		"path": c.Request().URL.Path,
	})
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_server_error",
		Message: "An unexpected error occurred",
	})
}
