package application

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-booking/internal/config"
	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/domain/participant"
	"github.com/sanosuguru/go-event-booking/internal/domain/payment"
	"github.com/sanosuguru/go-event-booking/internal/domain/profile"
	"github.com/sanosuguru/go-event-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-event-booking/internal/infrastructure/notification"
	rediscache "github.com/sanosuguru/go-event-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-booking/internal/pkg/logger"
)

// SettlementService はゲートウェイコールバックによる決済の確定を扱う
// 終端状態への遷移は PENDING 行に対する条件付き更新1文のみが行うため、
// 同一トランザクションIDへの並行コールバックでも確定はちょうど1回になる
type SettlementService struct {
	txManager       transaction.Manager
	paymentRepo     payment.Repository
	participantRepo participant.Repository
	eventRepo       event.Repository
	clientRepo      profile.ClientRepository
	hostRepo        profile.HostRepository
	adminRepo       profile.AdminLedgerRepository
	cfg             config.SettlementConfig
	capacityCache   *rediscache.CapacityCache
	invoices        InvoiceSender
}

func NewSettlementService(
	tm transaction.Manager,
	payr payment.Repository,
	pr participant.Repository,
	er event.Repository,
	cr profile.ClientRepository,
	hr profile.HostRepository,
	ar profile.AdminLedgerRepository,
	cfg config.SettlementConfig,
	cache *rediscache.CapacityCache,
	invoices InvoiceSender,
) *SettlementService {
	return &SettlementService{
		txManager:       tm,
		paymentRepo:     payr,
		participantRepo: pr,
		eventRepo:       er,
		clientRepo:      cr,
		hostRepo:        hr,
		adminRepo:       ar,
		cfg:             cfg,
		capacityCache:   cache,
		invoices:        invoices,
	}
}

// Settle は決済を指定の終端状態へ確定する
// 同じ終端状態への再実行は成功扱いの no-op、異なる終端状態への再実行はエラー
func (s *SettlementService) Settle(ctx context.Context, transactionID string, outcome payment.Status) error {
	if !outcome.IsTerminal() {
		return payment.ErrAlreadyTerminal
	}

	pay, err := s.paymentRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	settled, err := s.paymentRepo.SettleIfPending(ctx, tx, transactionID, outcome)
	if err != nil {
		return err
	}
	if !settled {
		// 別のコールバックが先に確定済み。同じ結果なら冪等な成功として扱う
		current, rerr := s.paymentRepo.GetByTransactionID(ctx, transactionID)
		if rerr != nil {
			return rerr
		}
		if current.Status == outcome {
			return nil
		}
		return payment.ErrAlreadyTerminal
	}

	switch outcome {
	case payment.StatusPaid:
		err = s.applyPaid(ctx, tx, pay)
	default:
		err = s.applyCancelled(ctx, tx, pay)
	}
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}

	if outcome == payment.StatusPaid {
		s.sendInvoiceAsync(pay)
	} else {
		s.invalidateCapacity(ctx, pay.EventID)
	}
	return nil
}

// applyPaid は入金確定の副作用を同一トランザクション内で適用する
func (s *SettlementService) applyPaid(ctx context.Context, tx transaction.Tx, pay *payment.Payment) error {
	if pay.ParticipantID != nil {
		confirmed, err := s.participantRepo.ConfirmIfNotLeft(ctx, tx, *pay.ParticipantID)
		if err != nil {
			return err
		}
		if !confirmed {
			// 離脱後に入金が届いたケース。精算は完結させ、参加確定だけ行わない
			logger.Warn("離脱済み参加者への入金を検出",
				zap.String("transaction_id", pay.TransactionID),
				zap.String("participant_id", *pay.ParticipantID))
		}
	}

	hostShare := round2(pay.Amount * s.cfg.HostShareRate)
	adminShare := round2(pay.Amount * s.cfg.AdminShareRate)

	if err := s.hostRepo.AddIncome(ctx, tx, pay.HostID, hostShare); err != nil {
		return err
	}
	if err := s.adminRepo.AddIncome(ctx, tx, s.cfg.AdminLedgerID, adminShare); err != nil {
		return err
	}
	return nil
}

// applyCancelled は失敗・キャンセル共通の副作用を適用する
// 参加者を LEFT にし、遷移した場合のみ座席を戻す
func (s *SettlementService) applyCancelled(ctx context.Context, tx transaction.Tx, pay *payment.Payment) error {
	if pay.ParticipantID == nil {
		return nil
	}
	left, err := s.participantRepo.LeaveIfNotLeft(ctx, tx, *pay.ParticipantID)
	if err != nil {
		return err
	}
	if left {
		if err := s.eventRepo.ReleaseSeat(ctx, tx, pay.EventID); err != nil {
			return err
		}
	}
	return nil
}

// ListByClient はクライアント自身の決済履歴を返す
func (s *SettlementService) ListByClient(ctx context.Context, actor Actor, limit, offset int) ([]*payment.Payment, error) {
	if actor.Role != profile.RoleClient {
		return nil, ErrNotAuthorized
	}
	return s.paymentRepo.ListByClientID(ctx, actor.ID, limit, offset)
}

// ListByHost はホスト自身のイベントに対する決済一覧を返す
func (s *SettlementService) ListByHost(ctx context.Context, actor Actor, limit, offset int) ([]*payment.Payment, error) {
	if actor.Role != profile.RoleHost {
		return nil, ErrNotAuthorized
	}
	return s.paymentRepo.ListByHostID(ctx, actor.ID, limit, offset)
}

// GetByTransactionID は決済を取得する（本人・対象ホスト・管理者のみ）
func (s *SettlementService) GetByTransactionID(ctx context.Context, actor Actor, transactionID string) (*payment.Payment, error) {
	pay, err := s.paymentRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != pay.ClientID && actor.ID != pay.HostID {
		return nil, ErrNotAuthorized
	}
	return pay, nil
}

// CountPending は未確定の決済数を返す（ワーカーのゲージ更新用）
func (s *SettlementService) CountPending(ctx context.Context) (int, error) {
	return s.paymentRepo.CountPending(ctx)
}

// SweepStalePending は長時間 PENDING のままの決済をキャンセル確定する
// ゲートウェイから応答が届かなかった座席を回収するための定期処理
func (s *SettlementService) SweepStalePending(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	stale, err := s.paymentRepo.ListStalePending(ctx, olderThan, limit)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, pay := range stale {
		if err := s.Settle(ctx, pay.TransactionID, payment.StatusCancelled); err != nil {
			logger.Warn("滞留決済のキャンセルに失敗",
				zap.String("transaction_id", pay.TransactionID),
				zap.Error(err))
			continue
		}
		swept++
	}
	return swept, nil
}

// sendInvoiceAsync はコミット後に請求書メールを送る
// 送信失敗はログに残すのみで精算結果には影響しない
func (s *SettlementService) sendInvoiceAsync(pay *payment.Payment) {
	if s.invoices == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		inv := notification.Invoice{
			TransactionID: pay.TransactionID,
			Amount:        pay.Amount,
		}
		if client, err := s.clientRepo.GetByID(ctx, pay.ClientID); err == nil {
			inv.ClientName = client.Name
			inv.ClientEmail = client.Email
		}
		if ev, err := s.eventRepo.GetByID(ctx, pay.EventID); err == nil {
			inv.EventTitle = ev.Title
			inv.EventDate = ev.Date
		}
		if host, err := s.hostRepo.GetByID(ctx, pay.HostID); err == nil {
			inv.HostName = host.Name
		}

		if err := s.invoices.SendInvoice(inv); err != nil {
			logger.Warn("請求書メールの送信に失敗",
				zap.String("transaction_id", pay.TransactionID),
				zap.Error(err))
		}
	}()
}

// round2 は金額を小数第2位に丸める
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *SettlementService) invalidateCapacity(ctx context.Context, eventID string) {
	if s.capacityCache == nil {
		return
	}
	if err := s.capacityCache.Invalidate(ctx, eventID); err != nil {
		logger.Warn("座席数キャッシュの無効化に失敗", zap.String("event_id", eventID), zap.Error(err))
	}
}
