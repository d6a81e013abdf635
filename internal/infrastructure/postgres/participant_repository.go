package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-event-booking/internal/domain/participant"
	"github.com/sanosuguru/go-event-booking/internal/domain/transaction"
)

type participantRow struct {
	ID            string    `db:"id"`
	EventID       string    `db:"event_id"`
	ClientID      string    `db:"client_id"`
	Status        string    `db:"status"`
	TransactionID string    `db:"transaction_id"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r *participantRow) toEntity() *participant.Participant {
	return &participant.Participant{
		ID:            r.ID,
		EventID:       r.EventID,
		ClientID:      r.ClientID,
		Status:        participant.Status(r.Status),
		TransactionID: r.TransactionID,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

const participantColumns = `id, event_id, client_id, status, transaction_id, created_at, updated_at`

type ParticipantRepository struct{ db *sqlx.DB }

func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Create(ctx context.Context, tx transaction.Tx, p *participant.Participant) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return errors.New("トランザクションが不正です")
	}

	query := `
		INSERT INTO participants (event_id, client_id, status, transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := sqlxTx.QueryRowContext(ctx, query,
		p.EventID, p.ClientID, string(p.Status), p.TransactionID, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		// 部分一意インデックス (event_id, client_id) WHERE status <> 'LEFT' による重複参加ガード
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return participant.ErrAlreadyJoined
		}
		return fmt.Errorf("参加者作成に失敗しました: %w", err)
	}
	return nil
}

func (r *ParticipantRepository) GetByID(ctx context.Context, id string) (*participant.Participant, error) {
	var row participantRow
	query := `SELECT ` + participantColumns + ` FROM participants WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, participant.ErrParticipantNotFound
		}
		return nil, fmt.Errorf("参加者取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ParticipantRepository) GetByTransactionID(ctx context.Context, transactionID string) (*participant.Participant, error) {
	var row participantRow
	query := `SELECT ` + participantColumns + ` FROM participants WHERE transaction_id = $1`
	if err := r.db.GetContext(ctx, &row, query, transactionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, participant.ErrParticipantNotFound
		}
		return nil, fmt.Errorf("参加者取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ParticipantRepository) GetActive(ctx context.Context, eventID, clientID string) (*participant.Participant, error) {
	var row participantRow
	query := `SELECT ` + participantColumns + ` FROM participants WHERE event_id = $1 AND client_id = $2 AND status <> 'LEFT'`
	if err := r.db.GetContext(ctx, &row, query, eventID, clientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, participant.ErrParticipantNotFound
		}
		return nil, fmt.Errorf("参加者取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ParticipantRepository) ListActiveByEventID(ctx context.Context, eventID string) ([]*participant.Participant, error) {
	var rows []participantRow
	query := `SELECT ` + participantColumns + ` FROM participants WHERE event_id = $1 AND status <> 'LEFT' ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &rows, query, eventID); err != nil {
		return nil, fmt.Errorf("参加者一覧取得に失敗しました: %w", err)
	}
	participants := make([]*participant.Participant, len(rows))
	for i, row := range rows {
		participants[i] = row.toEntity()
	}
	return participants, nil
}

func (r *ParticipantRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, id string, status participant.Status) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return errors.New("トランザクションが不正です")
	}

	query := `UPDATE participants SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := sqlxTx.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("参加者状態更新に失敗しました: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return participant.ErrParticipantNotFound
	}
	return nil
}

// ConfirmIfNotLeft は LEFT でない場合のみ CONFIRMED へ遷移させる
// LEFT 済みの参加者を決済完了で復活させないための条件付き更新
func (r *ParticipantRepository) ConfirmIfNotLeft(ctx context.Context, tx transaction.Tx, id string) (bool, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return false, errors.New("トランザクションが不正です")
	}

	query := `UPDATE participants SET status = 'CONFIRMED', updated_at = NOW() WHERE id = $1 AND status <> 'LEFT'`
	result, err := sqlxTx.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("参加確定に失敗しました: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	return rows == 1, nil
}

// LeaveIfNotLeft は LEFT でない場合のみ LEFT へ遷移させる
// 既に離脱済みなら何もせず false を返す（座席の二重解放を防ぐ）
func (r *ParticipantRepository) LeaveIfNotLeft(ctx context.Context, tx transaction.Tx, id string) (bool, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return false, errors.New("トランザクションが不正です")
	}

	query := `UPDATE participants SET status = 'LEFT', updated_at = NOW() WHERE id = $1 AND status <> 'LEFT'`
	result, err := sqlxTx.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("参加離脱に失敗しました: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	return rows == 1, nil
}

var _ participant.Repository = (*ParticipantRepository)(nil)
