package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 参加申込の総数（result: success, no_seats, duplicate, not_joinable, error）
	JoinAttemptsTotal *prometheus.CounterVec

	// 精算処理の総数（outcome: PAID, CANCELLED, REFUNDED / result: success, conflict, error）
	SettlementsTotal *prometheus.CounterVec

	// レビュー登録の総数（result: success, rejected, error）
	ReviewsTotal *prometheus.CounterVec

	// 未確定のまま滞留している決済数
	PendingPayments prometheus.Gauge
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		JoinAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "join_attempts_total",
				Help: "Total number of event join attempts",
			},
			[]string{"result"},
		),
		SettlementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlements_total",
				Help: "Total number of payment settlement callbacks",
			},
			[]string{"outcome", "result"},
		),
		ReviewsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reviews_total",
				Help: "Total number of review submissions",
			},
			[]string{"result"},
		),
		PendingPayments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pending_payments",
				Help: "Current number of payments awaiting a gateway callback",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.JoinAttemptsTotal,
		m.SettlementsTotal,
		m.ReviewsTotal,
		m.PendingPayments,
	)

	return m
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
