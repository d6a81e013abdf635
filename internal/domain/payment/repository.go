package payment

import (
	"context"
	"time"

	"github.com/sanosuguru/go-event-booking/internal/domain/transaction"
)

// Repository は決済リポジトリのインターフェース
type Repository interface {
	// Create は新しい決済を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, p *Payment) error

	// GetByTransactionID はトランザクションIDから決済を取得する
	GetByTransactionID(ctx context.Context, transactionID string) (*Payment, error)

	// SettleIfPending は PENDING の場合のみ指定の終端状態へ遷移させる条件付き更新
	// 遷移した場合 true を返す。false は別のトランザクションが先に確定済みであることを意味する
	// 終端状態の相互排他はこの条件付き更新のみで保証される（トランザクション必須）
	SettleIfPending(ctx context.Context, tx transaction.Tx, transactionID string, status Status) (bool, error)

	// ListByClientID はクライアントの決済一覧を取得する
	ListByClientID(ctx context.Context, clientID string, limit, offset int) ([]*Payment, error)

	// ListByHostID はホストのイベントに対する決済一覧を取得する
	ListByHostID(ctx context.Context, hostID string, limit, offset int) ([]*Payment, error)

	// ListStalePending は指定時間より古い PENDING の決済を取得する
	ListStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]*Payment, error)

	// CountPending は PENDING の決済数を取得する
	CountPending(ctx context.Context) (int, error)
}
