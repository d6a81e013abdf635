package event

import (
	"context"

	"github.com/sanosuguru/go-event-booking/internal/domain/transaction"
)

// Repository はイベントリポジトリのインターフェース
type Repository interface {
	// Create は新しいイベントを作成する
	Create(ctx context.Context, event *Event) error

	// GetByID はIDからイベントを取得する
	GetByID(ctx context.Context, id string) (*Event, error)

	// GetByIDForUpdate は行ロック付きでイベントを取得する（トランザクション必須）
	GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*Event, error)

	// ListOpen は参加受付中（OPENかつ開催日時が未来）のイベント一覧を取得する
	ListOpen(ctx context.Context, limit, offset int) ([]*Event, error)

	// ReserveSeat は残り座席を1減らす条件付き更新を実行する
	// status = OPEN かつ capacity >= 1 かつ開催日時が未来の行のみ対象
	// 残りが0になった場合は同一文で FULL へ遷移させる
	// 条件を満たす行がない場合は false を返す（トランザクション必須）
	ReserveSeat(ctx context.Context, tx transaction.Tx, id string) (bool, error)

	// ReleaseSeat は残り座席を1増やし、FULL だった場合のみ OPEN に戻す
	// 終端状態（COMPLETED等）の status は変更しない（トランザクション必須）
	ReleaseSeat(ctx context.Context, tx transaction.Tx, id string) error

	// UpdateStatusIf は現在の状態が from のいずれかである場合のみ to へ遷移させる
	// 遷移しなかった場合は false を返す
	UpdateStatusIf(ctx context.Context, id string, to Status, from ...Status) (bool, error)
}
