package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-event-booking/internal/domain/payment"
	"github.com/sanosuguru/go-event-booking/internal/domain/transaction"
)

type paymentRow struct {
	ID            string    `db:"id"`
	TransactionID string    `db:"transaction_id"`
	ParticipantID *string   `db:"participant_id"`
	EventID       string    `db:"event_id"`
	ClientID      string    `db:"client_id"`
	HostID        string    `db:"host_id"`
	Amount        float64   `db:"amount"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r *paymentRow) toEntity() *payment.Payment {
	return &payment.Payment{
		ID:            r.ID,
		TransactionID: r.TransactionID,
		ParticipantID: r.ParticipantID,
		EventID:       r.EventID,
		ClientID:      r.ClientID,
		HostID:        r.HostID,
		Amount:        r.Amount,
		Status:        payment.Status(r.Status),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

const paymentColumns = `id, transaction_id, participant_id, event_id, client_id, host_id, amount, status, created_at, updated_at`

type PaymentRepository struct{ db *sqlx.DB }

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return errors.New("トランザクションが不正です")
	}

	query := `
		INSERT INTO payments (transaction_id, participant_id, event_id, client_id, host_id, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := sqlxTx.QueryRowContext(ctx, query,
		p.TransactionID, p.ParticipantID, p.EventID, p.ClientID, p.HostID, p.Amount, string(p.Status), p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return payment.ErrTransactionIDDuplicated
		}
		return fmt.Errorf("決済作成に失敗しました: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*payment.Payment, error) {
	var row paymentRow
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id = $1`
	if err := r.db.GetContext(ctx, &row, query, transactionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("決済取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// SettleIfPending は PENDING の場合のみ終端状態へ遷移させる
// 事前読み取りの結果には依存せず、この条件付き更新の行数のみで冪等性を判定する
func (r *PaymentRepository) SettleIfPending(ctx context.Context, tx transaction.Tx, transactionID string, status payment.Status) (bool, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return false, errors.New("トランザクションが不正です")
	}
	if !status.IsTerminal() {
		return false, payment.ErrAlreadyTerminal
	}

	query := `UPDATE payments SET status = $1, updated_at = NOW() WHERE transaction_id = $2 AND status = 'PENDING'`
	result, err := sqlxTx.ExecContext(ctx, query, string(status), transactionID)
	if err != nil {
		return false, fmt.Errorf("決済確定に失敗しました: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	return rows == 1, nil
}

func (r *PaymentRepository) ListByClientID(ctx context.Context, clientID string, limit, offset int) ([]*payment.Payment, error) {
	var rows []paymentRow
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE client_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, clientID, limit, offset); err != nil {
		return nil, fmt.Errorf("決済一覧取得に失敗しました: %w", err)
	}
	return toPaymentEntities(rows), nil
}

func (r *PaymentRepository) ListByHostID(ctx context.Context, hostID string, limit, offset int) ([]*payment.Payment, error) {
	var rows []paymentRow
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE host_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, hostID, limit, offset); err != nil {
		return nil, fmt.Errorf("決済一覧取得に失敗しました: %w", err)
	}
	return toPaymentEntities(rows), nil
}

func (r *PaymentRepository) ListStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]*payment.Payment, error) {
	var rows []paymentRow
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE status = 'PENDING' AND created_at < $1 ORDER BY created_at LIMIT $2`
	cutoff := time.Now().Add(-olderThan)
	if err := r.db.SelectContext(ctx, &rows, query, cutoff, limit); err != nil {
		return nil, fmt.Errorf("滞留決済取得に失敗しました: %w", err)
	}
	return toPaymentEntities(rows), nil
}

func (r *PaymentRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM payments WHERE status = 'PENDING'`); err != nil {
		return 0, fmt.Errorf("滞留決済数取得に失敗しました: %w", err)
	}
	return count, nil
}

func toPaymentEntities(rows []paymentRow) []*payment.Payment {
	payments := make([]*payment.Payment, len(rows))
	for i, row := range rows {
		payments[i] = row.toEntity()
	}
	return payments
}

var _ payment.Repository = (*PaymentRepository)(nil)
