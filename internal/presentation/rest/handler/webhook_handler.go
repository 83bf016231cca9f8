package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	webhookapp "github.com/jonathanbff/stellar-pay/internal/application/webhook"
)

// WebhookHandler Webhook受信ハンドラー
type WebhookHandler struct {
	webhookService *webhookapp.WebhookApplicationService
}

// NewWebhookHandler 新しいWebhookHandlerを作成
func NewWebhookHandler(webhookService *webhookapp.WebhookApplicationService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

// ReceiveEvent Webhookイベント受信ハンドラー
// dataフィールドはプロバイダー定義の自由形式なので解釈せずそのまま引き渡す
// @Summary Webhookイベントを受信
// @Description プロバイダーからの決済ステータス通知を受信し、セッションストアを更新します
// @Tags webhook
// @Accept json
// @Produce json
// @Param request body WebhookEventRequest true "Webhookイベント"
// @Success 200 {object} WebhookEventResponse "受信成功"
// @Failure 400 {object} ErrorResponse "不正なペイロード"
// @Router /webhook [post]
func (h *WebhookHandler) ReceiveEvent(c echo.Context) error {
	var reqBody WebhookEventRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req := &webhookapp.EventRequest{
		AccountID: reqBody.AccountID,
		Status:    reqBody.Status,
		Data:      reqBody.Data,
	}

	if err := h.webhookService.HandleEvent(c.Request().Context(), req); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, WebhookEventResponse{
		Received: true,
	})
}
