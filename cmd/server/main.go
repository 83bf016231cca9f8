package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	paymentapp "github.com/jonathanbff/stellar-pay/internal/application/payment"
	webhookapp "github.com/jonathanbff/stellar-pay/internal/application/webhook"
	"github.com/jonathanbff/stellar-pay/internal/domain/session"
	"github.com/jonathanbff/stellar-pay/internal/infrastructure/config"
	otelinfra "github.com/jonathanbff/stellar-pay/internal/infrastructure/observability/otel"
	"github.com/jonathanbff/stellar-pay/internal/infrastructure/persistence/mysql"
	redisstore "github.com/jonathanbff/stellar-pay/internal/infrastructure/persistence/redis"
	"github.com/jonathanbff/stellar-pay/internal/infrastructure/provider/transfero"
	"github.com/jonathanbff/stellar-pay/internal/presentation/rest"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// OpenTelemetryの初期化
	tracerShutdown, err := otelinfra.InitTracer(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	meterShutdown, err := otelinfra.InitMeter(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize meter: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown meter: %v", err)
		}
	}()

	// ロガーとメトリクスの初期化
	logger := otelinfra.NewLogger()
	metrics, err := otelinfra.NewMetrics("stellar-pay")
	if err != nil {
		log.Fatalf("Failed to create metrics: %v", err)
	}

	// セッションストアの初期化（バックエンドは設定で切り替え）
	var sessionRepo session.SessionRepository
	switch cfg.SessionStore.Backend {
	case config.SessionStoreMySQL:
		db, err := mysql.NewDB(&cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		sessionRepo = mysql.NewSessionRepository(db)
	case config.SessionStoreRedis:
		client, err := redisstore.NewClient(&cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()
		sessionRepo = redisstore.NewSessionRepository(client, cfg.SessionStore.SessionTTL)
	default:
		log.Fatalf("Unsupported session store backend: %s", cfg.SessionStore.Backend)
	}

	// プロバイダークライアントの初期化
	tokenSource := transfero.NewTokenSource(&cfg.Provider, logger, metrics)
	providerClient := transfero.NewClient(&cfg.Provider, tokenSource, logger, metrics)

	// アプリケーションサービスの初期化
	paymentAppService := paymentapp.NewPaymentApplicationService(
		providerClient,
		sessionRepo,
		cfg.Webhook.CallbackURL(),
		cfg.Webhook.EventName,
		logger,
		metrics,
	)

	webhookAppService := webhookapp.NewWebhookApplicationService(
		sessionRepo,
		logger,
		metrics,
	)

	// REST APIルーターの初期化
	router, err := rest.NewRouter(
		cfg,
		logger,
		metrics,
		paymentAppService,
		webhookAppService,
		sessionRepo,
	)
	if err != nil {
		log.Fatalf("Failed to create router: %v", err)
	}

	// サーバーアドレスの設定
	address := fmt.Sprintf(":%d", cfg.Server.Port)

	// グレースフルシャットダウンの設定
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	// REST APIサーバーを別ゴルーチンで起動
	go func() {
		log.Printf("REST API server starting on %s", address)
		if err := router.Start(address); err != nil {
			log.Printf("REST API server error: %v", err)
		}
	}()

	// シグナルを待機
	<-quit
	log.Println("Shutting down server...")

	// グレースフルシャットダウン
	if err := router.Shutdown(); err != nil {
		log.Printf("Error shutting down REST API server: %v", err)
	}

	log.Println("Server stopped")
}
