package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-booking/internal/api"
	"github.com/sanosuguru/go-event-booking/internal/api/handler"
	custommw "github.com/sanosuguru/go-event-booking/internal/api/middleware"
	"github.com/sanosuguru/go-event-booking/internal/application"
	"github.com/sanosuguru/go-event-booking/internal/config"
	"github.com/sanosuguru/go-event-booking/internal/infrastructure/notification"
	"github.com/sanosuguru/go-event-booking/internal/infrastructure/postgres"
	rediscache "github.com/sanosuguru/go-event-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-booking/internal/infrastructure/sslcommerz"
	"github.com/sanosuguru/go-event-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-event-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-event-booking/internal/worker"
)

func main() {
	cfg := config.Load()

	if !cfg.Settlement.Valid() {
		logger.Fatal("精算の分配率設定が不正です",
			zap.Float64("host_share_rate", cfg.Settlement.HostShareRate),
			zap.Float64("admin_share_rate", cfg.Settlement.AdminShareRate),
		)
	}
	if cfg.Settlement.AdminLedgerID == "" {
		logger.Fatal("管理者台帳ID（SETTLEMENT_ADMIN_LEDGER_ID）が未設定です")
	}

	// データベース接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション実行
	if err := postgres.RunMigrations(db.DB, "migrations"); err != nil {
		logger.Fatal("マイグレーション実行に失敗", zap.Error(err))
	}

	// Redis 接続（失敗しても起動は継続。キャッシュなしで動作する）
	var capacityCache *rediscache.CapacityCache
	redisClient := rediscache.NewClient(&cfg.Redis)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rediscache.Ping(ctx, redisClient); err != nil {
		logger.Warn("Redis接続に失敗（キャッシュなしで継続）", zap.Error(err))
	} else {
		capacityCache = rediscache.NewCapacityCache(redisClient)
		defer redisClient.Close()
	}
	cancel()

	// メトリクス初期化
	m := metrics.Init()

	// リポジトリ
	txManager := postgres.NewTxManager(db)
	eventRepo := postgres.NewEventRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	clientRepo := postgres.NewClientRepository(db)
	hostRepo := postgres.NewHostRepository(db)
	adminRepo := postgres.NewAdminLedgerRepository(db)

	// 外部サービス
	gateway := sslcommerz.NewClient(&cfg.Gateway)
	mailer := notification.NewMailer(&cfg.Mail)

	// アプリケーションサービス
	eventService := application.NewEventService(eventRepo, participantRepo, hostRepo, capacityCache)
	participationService := application.NewParticipationService(
		txManager, eventRepo, participantRepo, paymentRepo, clientRepo, gateway, capacityCache)
	settlementService := application.NewSettlementService(
		txManager, paymentRepo, participantRepo, eventRepo, clientRepo, hostRepo, adminRepo,
		cfg.Settlement, capacityCache, mailer)
	reviewService := application.NewReviewService(
		txManager, reviewRepo, paymentRepo, eventRepo, clientRepo, hostRepo)

	// ハンドラー
	eventHandler := handler.NewEventHandler(eventService)
	participationHandler := handler.NewParticipationHandler(participationService, m)
	paymentHandler := handler.NewPaymentHandler(settlementService, m)
	reviewHandler := handler.NewReviewHandler(reviewService, m)
	healthHandler := handler.NewHealthHandler()

	// Echo セットアップ
	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	custommw.SetupMiddleware(e)
	e.Use(custommw.PrometheusMiddleware(m))

	// ルーティング
	v1 := e.Group("/api/v1")

	v1.GET("/health", healthHandler.Check)

	v1.POST("/events", eventHandler.Create)
	v1.GET("/events", eventHandler.ListOpen)
	v1.GET("/events/:id", eventHandler.GetByID)
	v1.GET("/events/:id/capacity", eventHandler.RemainingCapacity)
	v1.POST("/events/:id/approve", eventHandler.Approve)
	v1.POST("/events/:id/reject", eventHandler.Reject)
	v1.POST("/events/:id/complete", eventHandler.Complete)
	v1.GET("/events/:id/participants", eventHandler.ListParticipants)

	v1.POST("/events/:id/join", participationHandler.Join)
	v1.POST("/events/:id/leave", participationHandler.Leave)
	v1.GET("/events/:id/participation", participationHandler.Get)

	// ゲートウェイはPOSTでフォームを送るが、リダイレクト経由のGETも受け付ける
	v1.POST("/payments/success", paymentHandler.Success)
	v1.GET("/payments/success", paymentHandler.Success)
	v1.POST("/payments/fail", paymentHandler.Fail)
	v1.GET("/payments/fail", paymentHandler.Fail)
	v1.POST("/payments/cancel", paymentHandler.Cancel)
	v1.GET("/payments/cancel", paymentHandler.Cancel)
	v1.GET("/payments", paymentHandler.ListMine)
	v1.GET("/payments/:transaction_id", paymentHandler.GetByTransactionID)
	v1.POST("/payments/:transaction_id/refund", paymentHandler.Refund)

	v1.POST("/reviews", reviewHandler.Submit)
	v1.GET("/reviews", reviewHandler.ListLatest)
	v1.GET("/events/:id/reviewed", reviewHandler.HasReviewed)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommw.MetricsBasicAuth())

	// 滞留決済スイーパー
	sweeperCtx, sweeperCancel := context.WithCancel(context.Background())
	defer sweeperCancel()

	var sweeper *worker.PendingPaymentSweeper
	if cfg.Sweeper.Enabled {
		sweeper = worker.NewPendingPaymentSweeper(
			settlementService, m, cfg.Sweeper.Interval, cfg.Sweeper.MaxAge)
		go sweeper.Start(sweeperCtx)
	}

	// サーバー起動
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("サーバー起動", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("シャットダウン開始")

	if sweeper != nil {
		sweeper.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
	_ = logger.Sync()
}
