package participant

import (
	"context"

	"github.com/sanosuguru/go-event-booking/internal/domain/transaction"
)

// Repository は参加者リポジトリのインターフェース
type Repository interface {
	// Create は新しい参加者を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, p *Participant) error

	// GetByID はIDから参加者を取得する
	GetByID(ctx context.Context, id string) (*Participant, error)

	// GetByTransactionID はトランザクションIDから参加者を取得する
	GetByTransactionID(ctx context.Context, transactionID string) (*Participant, error)

	// GetActive はイベントとクライアントの組に対する LEFT 以外の参加者を取得する
	GetActive(ctx context.Context, eventID, clientID string) (*Participant, error)

	// ListActiveByEventID はイベントの LEFT 以外の参加者一覧を取得する
	ListActiveByEventID(ctx context.Context, eventID string) ([]*Participant, error)

	// UpdateStatus は参加者の状態を更新する（トランザクション必須）
	UpdateStatus(ctx context.Context, tx transaction.Tx, id string, status Status) error

	// ConfirmIfNotLeft は LEFT でない場合のみ CONFIRMED へ遷移させる条件付き更新
	// 遷移した場合 true を返す（トランザクション必須）
	ConfirmIfNotLeft(ctx context.Context, tx transaction.Tx, id string) (bool, error)

	// LeaveIfNotLeft は LEFT でない場合のみ LEFT へ遷移させる条件付き更新
	// 遷移した場合 true を返す（トランザクション必須）
	LeaveIfNotLeft(ctx context.Context, tx transaction.Tx, id string) (bool, error)
}
