package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-event-booking/internal/pkg/metrics"
)

// 1回の掃除で処理する決済数の上限
const sweepBatchSize = 100

// StaleSettler は滞留した PENDING 決済をキャンセル確定するインターフェース
type StaleSettler interface {
	SweepStalePending(ctx context.Context, olderThan time.Duration, limit int) (int, error)
	CountPending(ctx context.Context) (int, error)
}

// PendingPaymentSweeper はゲートウェイから応答が届かないまま滞留した
// PENDING 決済を定期的にキャンセルし、座席を回収するワーカー
type PendingPaymentSweeper struct {
	settlementService StaleSettler
	metrics           *metrics.Metrics
	interval          time.Duration
	maxAge            time.Duration
	stopCh            chan struct{}
	doneCh            chan struct{}
}

// NewPendingPaymentSweeper は新しいスイーパーを作成
func NewPendingPaymentSweeper(
	ss StaleSettler,
	m *metrics.Metrics,
	interval time.Duration,
	maxAge time.Duration,
) *PendingPaymentSweeper {
	return &PendingPaymentSweeper{
		settlementService: ss,
		metrics:           m,
		interval:          interval,
		maxAge:            maxAge,
		stopCh:            make(chan struct{}),
		doneCh:            make(chan struct{}),
	}
}

// Start はスイーパーを開始
func (s *PendingPaymentSweeper) Start(ctx context.Context) {
	logger.Info("滞留決済スイーパー開始",
		zap.Duration("interval", s.interval),
		zap.Duration("max_age", s.maxAge),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("滞留決済スイーパー停止（コンテキストキャンセル）")
			return
		case <-s.stopCh:
			logger.Info("滞留決済スイーパー停止（シグナル受信）")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop はスイーパーを停止
func (s *PendingPaymentSweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// sweep は滞留決済をキャンセルし、未確定決済数のゲージを更新する
func (s *PendingPaymentSweeper) sweep(ctx context.Context) {
	log := logger.Get()
	log.Debug("滞留決済の掃除開始")

	count, err := s.settlementService.SweepStalePending(ctx, s.maxAge, sweepBatchSize)
	if err != nil {
		log.Error("滞留決済の掃除失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("滞留決済をキャンセル", zap.Int("count", count))
	} else {
		log.Debug("滞留決済なし")
	}

	if s.metrics != nil {
		pending, err := s.settlementService.CountPending(ctx)
		if err != nil {
			log.Warn("未確定決済数の取得失敗", zap.Error(err))
			return
		}
		s.metrics.PendingPayments.Set(float64(pending))
	}
}
