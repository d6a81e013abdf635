package e2e

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-event-booking/internal/api"
	"github.com/sanosuguru/go-event-booking/internal/api/handler"
	"github.com/sanosuguru/go-event-booking/internal/api/middleware"
	"github.com/sanosuguru/go-event-booking/internal/application"
	"github.com/sanosuguru/go-event-booking/internal/config"
	"github.com/sanosuguru/go-event-booking/internal/infrastructure/postgres"
	rediscache "github.com/sanosuguru/go-event-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-booking/internal/infrastructure/sslcommerz"
)

var (
	testServer  *TestServer
	testDB      *sqlx.DB
	redisClient *redis.Client
	fakeGateway *httptest.Server
)

// TestMain はE2Eテストのエントリポイント
// パッケージ全体で1回だけサーバーを起動することで高速化
func TestMain(m *testing.M) {
	cfg := config.Load()

	// DB接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		os.Exit(0) // DB未起動時はスキップ
	}
	testDB = db

	// Redis接続
	rc := rediscache.NewClient(&cfg.Redis)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	err = rediscache.Ping(ctx, rc)
	cancel()
	if err != nil {
		db.Close()
		os.Exit(0) // Redis未起動時はスキップ
	}
	redisClient = rc

	// ゲートウェイをスタブ化（チェックアウト開始を常に成功させる）
	fakeGateway = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"SUCCESS","GatewayPageURL":"https://sandbox.example.test/checkout"}`))
	}))

	gatewayCfg := cfg.Gateway
	gatewayCfg.PaymentAPI = fakeGateway.URL
	gatewayCfg.Timeout = 3 * time.Second

	// 精算設定（管理者台帳はテスト側でシードする）
	settlementCfg := config.SettlementConfig{
		HostShareRate:  0.9,
		AdminShareRate: 0.1,
		AdminLedgerID:  seedAdminLedger(db),
	}

	// サービス初期化
	capacityCache := rediscache.NewCapacityCache(redisClient)
	gateway := sslcommerz.NewClient(&gatewayCfg)

	txManager := postgres.NewTxManager(db)
	eventRepo := postgres.NewEventRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	clientRepo := postgres.NewClientRepository(db)
	hostRepo := postgres.NewHostRepository(db)
	adminRepo := postgres.NewAdminLedgerRepository(db)

	eventService := application.NewEventService(eventRepo, participantRepo, hostRepo, capacityCache)
	participationService := application.NewParticipationService(
		txManager, eventRepo, participantRepo, paymentRepo, clientRepo, gateway, capacityCache)
	settlementService := application.NewSettlementService(
		txManager, paymentRepo, participantRepo, eventRepo, clientRepo, hostRepo, adminRepo,
		settlementCfg, capacityCache, nil)
	reviewService := application.NewReviewService(
		txManager, reviewRepo, paymentRepo, eventRepo, clientRepo, hostRepo)

	eventHandler := handler.NewEventHandler(eventService)
	participationHandler := handler.NewParticipationHandler(participationService, nil)
	paymentHandler := handler.NewPaymentHandler(settlementService, nil)
	reviewHandler := handler.NewReviewHandler(reviewService, nil)
	healthHandler := handler.NewHealthHandler()

	// Echo セットアップ
	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	middleware.SetupMiddleware(e)

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

	testServer = &TestServer{Echo: e}

	// テスト実行
	code := m.Run()

	// 最終クリーンアップ
	cleanupTables()
	fakeGateway.Close()
	redisClient.Close()
	db.Close()

	os.Exit(code)
}

// seedAdminLedger は精算の加算先となる管理者台帳行を作成する
func seedAdminLedger(db *sqlx.DB) string {
	var id string
	err := db.QueryRow(`
		INSERT INTO admins (name, email)
		VALUES ('E2E管理者', 'e2e-admin@example.com')
		ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
		RETURNING id
	`).Scan(&id)
	if err != nil {
		db.Close()
		os.Exit(0)
	}
	return id
}

// cleanupTables はテーブルをクリーンアップ（管理者台帳は残す）
func cleanupTables() {
	testDB.Exec("TRUNCATE TABLE reviews, payments, participants, events, hosts, clients RESTART IDENTITY CASCADE")
	testDB.Exec("UPDATE admins SET income = 0")
	redisClient.FlushDB(context.Background())
}

// getTestServer は共有サーバーを取得（テスト前にテーブルをクリーンアップ）
func getTestServer(t *testing.T) *TestServer {
	t.Helper()
	if testServer == nil {
		t.Skip("テスト環境が利用できません")
	}
	cleanupTables()
	return testServer
}
