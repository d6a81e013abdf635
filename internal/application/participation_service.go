package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/domain/participant"
	"github.com/sanosuguru/go-event-booking/internal/domain/payment"
	"github.com/sanosuguru/go-event-booking/internal/domain/profile"
	"github.com/sanosuguru/go-event-booking/internal/domain/transaction"
	rediscache "github.com/sanosuguru/go-event-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-booking/internal/infrastructure/sslcommerz"
	"github.com/sanosuguru/go-event-booking/internal/pkg/logger"
)

// ParticipationService はイベントへの参加・離脱を扱う
type ParticipationService struct {
	txManager       transaction.Manager
	eventRepo       event.Repository
	participantRepo participant.Repository
	paymentRepo     payment.Repository
	clientRepo      profile.ClientRepository
	gateway         CheckoutGateway
	capacityCache   *rediscache.CapacityCache
}

func NewParticipationService(
	tm transaction.Manager,
	er event.Repository,
	pr participant.Repository,
	payr payment.Repository,
	cr profile.ClientRepository,
	gw CheckoutGateway,
	cache *rediscache.CapacityCache,
) *ParticipationService {
	return &ParticipationService{
		txManager:       tm,
		eventRepo:       er,
		participantRepo: pr,
		paymentRepo:     payr,
		clientRepo:      cr,
		gateway:         gw,
		capacityCache:   cache,
	}
}

// JoinResult は参加申込の結果
type JoinResult struct {
	Participant   *participant.Participant
	TransactionID string
	CheckoutURL   string
}

// JoinEvent はイベントへの参加を申し込む
// 座席の確保・参加者行・決済行の作成は単一トランザクションで行い、
// 決済ページURLの取得はコミット後に行う（失敗しても座席は戻さない）
func (s *ParticipationService) JoinEvent(ctx context.Context, actor Actor, eventID string) (*JoinResult, error) {
	if actor.Role != profile.RoleClient {
		return nil, ErrNotAuthorized
	}

	client, err := s.clientRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := client.ActError(); err != nil {
		return nil, err
	}

	// 事前チェック（最終判定はトランザクション内の条件付き更新が行う）
	ev, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := joinability(ev, time.Now()); err != nil {
		return nil, err
	}

	// LEFT 以外の既存参加があれば重複参加
	if _, err := s.participantRepo.GetActive(ctx, eventID, actor.ID); err == nil {
		return nil, participant.ErrAlreadyJoined
	} else if !errors.Is(err, participant.ErrParticipantNotFound) {
		return nil, fmt.Errorf("参加状況の確認に失敗: %w", err)
	}

	transactionID := "tran_" + uuid.New().String()
	p := participant.NewParticipant(eventID, actor.ID, transactionID)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.participantRepo.Create(ctx, tx, p); err != nil {
		return nil, err
	}

	pay := payment.NewPayment(transactionID, p.ID, eventID, actor.ID, ev.HostID, ev.JoiningFee)
	if err := pay.Validate(); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Create(ctx, tx, pay); err != nil {
		return nil, err
	}

	reserved, err := s.eventRepo.ReserveSeat(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	if !reserved {
		// 条件付き更新が外れた理由を行ロック付きの再読込で分類する
		current, rerr := s.eventRepo.GetByIDForUpdate(ctx, tx, eventID)
		if rerr != nil {
			return nil, rerr
		}
		if rerr := joinability(current, time.Now()); rerr != nil {
			return nil, rerr
		}
		// 更新の失敗から再読込までの間に座席が解放されている
		// 敗北した申込はリトライ可能な競合として扱う
		return nil, event.ErrNoSeatsAvailable
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateCapacity(ctx, eventID)

	checkoutURL, err := s.gateway.InitCheckout(ctx, sslcommerz.CheckoutInput{
		TransactionID: transactionID,
		Amount:        pay.Amount,
		Name:          client.Name,
		Email:         client.Email,
		Phone:         client.ContactNumber,
		Address:       client.Location,
		ProductName:   ev.Title,
	})
	if err != nil {
		// 座席と決済行は確保済み。PENDING のまま残し、掃除ワーカーの回収対象とする
		logger.Error("決済セッション開始に失敗（座席は確保済み）",
			zap.String("transaction_id", transactionID),
			zap.String("event_id", eventID),
			zap.Error(err))
		return nil, err
	}

	return &JoinResult{
		Participant:   p,
		TransactionID: transactionID,
		CheckoutURL:   checkoutURL,
	}, nil
}

// LeaveEvent はイベントからの離脱を行う
// 開催日時前に限り、参加者を LEFT にし同一トランザクションで座席を1つ戻す
func (s *ParticipationService) LeaveEvent(ctx context.Context, actor Actor, eventID string) error {
	if actor.Role != profile.RoleClient {
		return ErrNotAuthorized
	}

	client, err := s.clientRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return err
	}
	if err := client.ActError(); err != nil {
		return err
	}

	// 開催日時を過ぎたイベントからは離脱できない
	ev, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if !ev.Date.After(time.Now()) {
		return event.ErrEventDatePassed
	}

	p, err := s.participantRepo.GetActive(ctx, eventID, actor.ID)
	if err != nil {
		return err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	left, err := s.participantRepo.LeaveIfNotLeft(ctx, tx, p.ID)
	if err != nil {
		return err
	}
	if !left {
		return participant.ErrParticipantAlreadyLeft
	}

	if err := s.eventRepo.ReleaseSeat(ctx, tx, eventID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateCapacity(ctx, eventID)
	return nil
}

// GetParticipation はクライアント自身の参加状況を返す
func (s *ParticipationService) GetParticipation(ctx context.Context, actor Actor, eventID string) (*participant.Participant, error) {
	if actor.Role != profile.RoleClient {
		return nil, ErrNotAuthorized
	}
	return s.participantRepo.GetActive(ctx, eventID, actor.ID)
}

func (s *ParticipationService) invalidateCapacity(ctx context.Context, eventID string) {
	if s.capacityCache == nil {
		return
	}
	if err := s.capacityCache.Invalidate(ctx, eventID); err != nil {
		logger.Warn("座席数キャッシュの無効化に失敗", zap.String("event_id", eventID), zap.Error(err))
	}
}

// joinability は参加できない理由をエラーとして返す
func joinability(ev *event.Event, now time.Time) error {
	if ev.IsJoinable(now) {
		return nil
	}
	if !ev.Date.After(now) {
		return event.ErrEventDatePassed
	}
	if ev.Status == event.StatusFull || (ev.Status == event.StatusOpen && ev.Capacity < 1) {
		return event.ErrNoSeatsAvailable
	}
	return event.ErrEventNotOpen
}
