package profile

import (
	"context"

	"github.com/sanosuguru/go-event-booking/internal/domain/transaction"
)

// ClientRepository はクライアントリポジトリのインターフェース
type ClientRepository interface {
	// GetByID はIDからクライアントを取得する
	GetByID(ctx context.Context, id string) (*Client, error)
}

// HostRepository はホストリポジトリのインターフェース
type HostRepository interface {
	// GetByID はIDからホストを取得する
	GetByID(ctx context.Context, id string) (*Host, error)

	// AddIncome はホストの収入を加算する（トランザクション必須）
	AddIncome(ctx context.Context, tx transaction.Tx, id string, amount float64) error

	// GetForUpdate は行ロック付きでホストを取得する
	// 同一ホストへの並行レビューで評価更新が失われないために使う（トランザクション必須）
	GetForUpdate(ctx context.Context, tx transaction.Tx, id string) (*Host, error)

	// UpdateRating はホストの評価と件数を更新する（トランザクション必須）
	UpdateRating(ctx context.Context, tx transaction.Tx, id string, rating float64, count int) error
}

// AdminLedgerRepository は管理者台帳リポジトリのインターフェース
// 操作対象は設定で指定された単一の台帳行であり、「最初に見つかった管理者」ではない
type AdminLedgerRepository interface {
	// GetByID はIDから管理者を取得する
	GetByID(ctx context.Context, id string) (*Admin, error)

	// AddIncome は管理者の手数料収入を加算する（トランザクション必須）
	AddIncome(ctx context.Context, tx transaction.Tx, id string, amount float64) error
}
