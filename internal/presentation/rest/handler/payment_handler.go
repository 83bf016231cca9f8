package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	paymentapp "github.com/jonathanbff/stellar-pay/internal/application/payment"
)

// PaymentHandler 決済関連ハンドラー
type PaymentHandler struct {
	paymentService *paymentapp.PaymentApplicationService
}

// NewPaymentHandler 新しいPaymentHandlerを作成
func NewPaymentHandler(paymentService *paymentapp.PaymentApplicationService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// CreatePayment 決済作成ハンドラー
// @Summary 決済を作成
// @Description 入金用QRコードを作成し、ステータス通知Webhookを購読します
// @Tags payment
// @Accept json
// @Produce json
// @Param request body CreatePaymentRequest true "決済作成リクエスト"
// @Success 200 {object} CreatePaymentResponse "決済作成成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 500 {object} ErrorResponse "プロバイダー呼び出し失敗"
// @Router /create-payment [post]
func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	var reqBody CreatePaymentRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req := &paymentapp.CreatePaymentRequest{
		AccountID: reqBody.AccountID,
		Amount:    reqBody.Amount,
	}

	resp, err := h.paymentService.CreatePayment(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, CreatePaymentResponse{
		QRData:            resp.QRData,
		Webhook:           resp.WebhookURL,
		StatusEndpoint:    resp.StatusEndpoint,
		WebhookRegistered: resp.WebhookRegistered,
	})
}

// GetPaymentStatus 決済ステータス照会ハンドラー
// @Summary 決済ステータスを照会
// @Description Webhookで受信した最新の決済ステータスを返します
// @Tags payment
// @Produce json
// @Param accountId path string true "アカウントID"
// @Success 200 {object} PaymentStatusResponse "ステータス照会成功"
// @Failure 404 {object} ErrorResponse "Webhook未受信"
// @Router /payment-status/{accountId} [get]
func (h *PaymentHandler) GetPaymentStatus(c echo.Context) error {
	accountID := c.Param("accountId")

	resp, err := h.paymentService.GetPaymentStatus(c.Request().Context(), accountID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, PaymentStatusResponse{
		Status:     resp.Status,
		Data:       resp.Data,
		ReceivedAt: resp.ReceivedAt,
	})
}
