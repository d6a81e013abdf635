package review

import (
	"context"

	"github.com/sanosuguru/go-event-booking/internal/domain/transaction"
)

// Repository はレビューリポジトリのインターフェース
type Repository interface {
	// Create は新しいレビューを作成する
	// (event_id, client_id) の一意制約違反は ErrAlreadyReviewed を返す（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, r *Review) error

	// GetByTransactionID はトランザクションIDからレビューを取得する
	GetByTransactionID(ctx context.Context, transactionID string) (*Review, error)

	// Exists は (event_id, client_id) のレビューが存在するかを返す
	Exists(ctx context.Context, eventID, clientID string) (bool, error)

	// ListLatest は新しい順にレビュー一覧を取得する
	ListLatest(ctx context.Context, limit int) ([]*Review, error)
}
