package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-event-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-booking/internal/domain/transaction"
)

// eventRow はDBの行を表す構造体
type eventRow struct {
	ID         string    `db:"id"`
	HostID     string    `db:"host_id"`
	Title      string    `db:"title"`
	Location   *string   `db:"location"`
	Date       time.Time `db:"date"`
	Capacity   int       `db:"capacity"`
	JoiningFee float64   `db:"joining_fee"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r *eventRow) toEntity() *event.Event {
	var location string
	if r.Location != nil {
		location = *r.Location
	}
	return &event.Event{
		ID:         r.ID,
		HostID:     r.HostID,
		Title:      r.Title,
		Location:   location,
		Date:       r.Date,
		Capacity:   r.Capacity,
		JoiningFee: r.JoiningFee,
		Status:     event.Status(r.Status),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

const eventColumns = `id, host_id, title, location, date, capacity, joining_fee, status, created_at, updated_at`

// EventRepository はイベントリポジトリのPostgreSQL実装
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository はEventRepositoryを作成する
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create は新しいイベントを作成する
func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	query := `
		INSERT INTO events (host_id, title, location, date, capacity, joining_fee, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var location *string
	if e.Location != "" {
		location = &e.Location
	}

	err := r.db.QueryRowContext(ctx, query,
		e.HostID, e.Title, location, e.Date, e.Capacity, e.JoiningFee, string(e.Status), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからイベントを取得する
func (r *EventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var row eventRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByIDForUpdate は行ロック付きでイベントを取得する
func (r *EventRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*event.Event, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, errors.New("トランザクションが不正です")
	}

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`

	var row eventRow
	if err := sqlxTx.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// ListOpen は参加受付中のイベント一覧を取得する
func (r *EventRepository) ListOpen(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE status = 'OPEN' AND date > NOW()
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("イベント一覧取得に失敗しました: %w", err)
	}

	events := make([]*event.Event, len(rows))
	for i, row := range rows {
		events[i] = row.toEntity()
	}
	return events, nil
}

// ReserveSeat は残り座席を1減らす条件付き更新を実行する
// 読み取り時点の値に依存しない単一文なので、並行する join 同士で座席が負になることはない
func (r *EventRepository) ReserveSeat(ctx context.Context, tx transaction.Tx, id string) (bool, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return false, errors.New("トランザクションが不正です")
	}

	query := `
		UPDATE events
		SET capacity = capacity - 1,
		    status = CASE WHEN capacity - 1 = 0 THEN 'FULL' ELSE status END,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'OPEN' AND capacity >= 1 AND date > NOW()
	`
	result, err := sqlxTx.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("座席確保に失敗しました: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	return rows == 1, nil
}

// ReleaseSeat は残り座席を1増やし、FULL の場合のみ OPEN に戻す
// COMPLETED / CANCELLED 等の終端状態は戻さない（座席計上のみ行う）
func (r *EventRepository) ReleaseSeat(ctx context.Context, tx transaction.Tx, id string) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return errors.New("トランザクションが不正です")
	}

	query := `
		UPDATE events
		SET capacity = capacity + 1,
		    status = CASE WHEN status = 'FULL' THEN 'OPEN' ELSE status END,
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := sqlxTx.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("座席解放に失敗しました: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rows == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

// UpdateStatusIf は現在の状態が from のいずれかである場合のみ to へ遷移させる
func (r *EventRepository) UpdateStatusIf(ctx context.Context, id string, to event.Status, from ...event.Status) (bool, error) {
	fromStatuses := make([]string, len(from))
	for i, s := range from {
		fromStatuses[i] = string(s)
	}

	query := `UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2 AND status = ANY($3)`

	result, err := r.db.ExecContext(ctx, query, string(to), id, pq.Array(fromStatuses))
	if err != nil {
		return false, fmt.Errorf("イベント状態更新に失敗しました: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	return rows == 1, nil
}

// インターフェースを満たしているか確認
var _ event.Repository = (*EventRepository)(nil)
