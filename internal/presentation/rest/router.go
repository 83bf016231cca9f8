package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	paymentapp "github.com/jonathanbff/stellar-pay/internal/application/payment"
	webhookapp "github.com/jonathanbff/stellar-pay/internal/application/webhook"
	"github.com/jonathanbff/stellar-pay/internal/domain/session"
	"github.com/jonathanbff/stellar-pay/internal/infrastructure/config"
	otelinfra "github.com/jonathanbff/stellar-pay/internal/infrastructure/observability/otel"
	"github.com/jonathanbff/stellar-pay/internal/presentation/rest/handler"
	restmiddleware "github.com/jonathanbff/stellar-pay/internal/presentation/rest/middleware"
)

// Router REST APIルーター
type Router struct {
	echo           *echo.Echo
	paymentHandler *handler.PaymentHandler
	webhookHandler *handler.WebhookHandler
}

// NewRouter 新しいRouterを作成
func NewRouter(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	paymentService *paymentapp.PaymentApplicationService,
	webhookService *webhookapp.WebhookApplicationService,
	sessionRepo session.SessionRepository,
) (*Router, error) {
	e := echo.New()

	// Echoのデフォルトエラーハンドラーを無効化（カスタムエラーハンドラーを使用）
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		// エラーハンドリングミドルウェアで処理される
	}

	// ミドルウェアの設定
	setupMiddleware(e, logger, metrics)

	// ハンドラーの作成
	paymentHandler := handler.NewPaymentHandler(paymentService)
	webhookHandler := handler.NewWebhookHandler(webhookService)

	// ルーティングの設定
	setupRoutes(e, cfg, logger, paymentHandler, webhookHandler, sessionRepo)

	// Swagger UI / ReDoc統合
	SetupSwagger(e)

	return &Router{
		echo:           e,
		paymentHandler: paymentHandler,
		webhookHandler: webhookHandler,
	}, nil
}

// setupMiddleware ミドルウェアを設定
func setupMiddleware(e *echo.Echo, logger *otelinfra.Logger, metrics *otelinfra.Metrics) {
	// リカバリーミドルウェア
	e.Use(middleware.Recover())

	// CORS設定
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"}, // 本番環境では適切に設定
		AllowMethods: []string{echo.GET, echo.POST, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "X-API-Key"},
	}))

	// リクエストIDの設定
	e.Use(middleware.RequestID())

	// セキュリティヘッダー
	e.Use(restmiddleware.SecurityHeadersMiddleware())

	// トレーシングミドルウェア
	e.Use(restmiddleware.TracingMiddleware())

	// ログミドルウェア
	e.Use(restmiddleware.LoggingMiddleware(logger))

	// メトリクスミドルウェア
	e.Use(restmiddleware.MetricsMiddleware(metrics))

	// エラーハンドリングミドルウェア
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
}

// setupRoutes ルーティングを設定
func setupRoutes(
	e *echo.Echo,
	cfg *config.Config,
	logger *otelinfra.Logger,
	paymentHandler *handler.PaymentHandler,
	webhookHandler *handler.WebhookHandler,
	sessionRepo session.SessionRepository,
) {
	// 決済エンドポイント（APIキー認証が有効な場合のみ保護）
	api := e.Group("")
	if cfg.API.Enabled {
		api = e.Group("", restmiddleware.APIKeyMiddleware(&cfg.API, logger))
	}
	api.POST("/create-payment", paymentHandler.CreatePayment)
	api.GET("/payment-status/:accountId", paymentHandler.GetPaymentStatus)

	// Webhookエンドポイント（プロバイダーが呼ぶため認証対象外）
	e.POST("/webhook", webhookHandler.ReceiveEvent)

	// ヘルスチェックエンドポイント（認証不要、セッションストアの疎通も確認）
	e.GET("/health", func(c echo.Context) error {
		if err := sessionRepo.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Start サーバーを起動
func (r *Router) Start(address string) error {
	return r.echo.Start(address)
}

// Shutdown サーバーをシャットダウン
func (r *Router) Shutdown() error {
	return r.echo.Close()
}
