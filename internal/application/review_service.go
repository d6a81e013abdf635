package application

import (
	"context"
	"fmt"

	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/domain/payment"
	"github.com/sanosuguru/go-event-booking/internal/domain/profile"
	"github.com/sanosuguru/go-event-booking/internal/domain/review"
	"github.com/sanosuguru/go-event-booking/internal/domain/transaction"
)

// ReviewService はレビューの登録とホスト評価の集計を扱う
type ReviewService struct {
	txManager   transaction.Manager
	reviewRepo  review.Repository
	paymentRepo payment.Repository
	eventRepo   event.Repository
	clientRepo  profile.ClientRepository
	hostRepo    profile.HostRepository
}

func NewReviewService(
	tm transaction.Manager,
	rr review.Repository,
	payr payment.Repository,
	er event.Repository,
	cr profile.ClientRepository,
	hr profile.HostRepository,
) *ReviewService {
	return &ReviewService{
		txManager:   tm,
		reviewRepo:  rr,
		paymentRepo: payr,
		eventRepo:   er,
		clientRepo:  cr,
		hostRepo:    hr,
	}
}

// SubmitReviewInput はレビュー登録の入力
type SubmitReviewInput struct {
	TransactionID string
	Rating        int
	Comment       string
}

// SubmitReview はレビューを登録し、ホストの平均評価を更新する
// 対象イベントが COMPLETED、決済が PAID、かつ初回のレビューであることが条件
// 評価の更新は行ロック下で行い、並行レビューでも件数と平均がずれないようにする
func (s *ReviewService) SubmitReview(ctx context.Context, actor Actor, input SubmitReviewInput) (*review.Review, error) {
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

	pay, err := s.paymentRepo.GetByTransactionID(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}
	if pay.ClientID != actor.ID {
		return nil, review.ErrNotReviewOwner
	}
	if pay.Status != payment.StatusPaid {
		return nil, review.ErrPaymentNotPaid
	}

	ev, err := s.eventRepo.GetByID(ctx, pay.EventID)
	if err != nil {
		return nil, err
	}
	if ev.Status != event.StatusCompleted {
		return nil, review.ErrEventNotCompleted
	}

	// 事前チェック（最終判定は (event_id, client_id) の一意制約が行う）
	exists, err := s.reviewRepo.Exists(ctx, pay.EventID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("レビュー確認に失敗: %w", err)
	}
	if exists {
		return nil, review.ErrAlreadyReviewed
	}

	rv := review.NewReview(input.TransactionID, pay.EventID, actor.ID, pay.HostID, input.Rating, input.Comment)
	if err := rv.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.reviewRepo.Create(ctx, tx, rv); err != nil {
		return nil, err
	}

	host, err := s.hostRepo.GetForUpdate(ctx, tx, pay.HostID)
	if err != nil {
		return nil, err
	}
	newCount := host.RatingCount + 1
	newRating := round2((host.Rating*float64(host.RatingCount) + float64(input.Rating)) / float64(newCount))
	if err := s.hostRepo.UpdateRating(ctx, tx, host.ID, newRating, newCount); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}
	return rv, nil
}

// HasReviewed はクライアントが対象イベントをレビュー済みかを返す
func (s *ReviewService) HasReviewed(ctx context.Context, actor Actor, eventID string) (bool, error) {
	if actor.Role != profile.RoleClient {
		return false, ErrNotAuthorized
	}
	return s.reviewRepo.Exists(ctx, eventID, actor.ID)
}

// ListLatest は新しい順にレビュー一覧を返す
func (s *ReviewService) ListLatest(ctx context.Context, limit int) ([]*review.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.reviewRepo.ListLatest(ctx, limit)
}
