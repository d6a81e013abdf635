package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-event-booking/internal/domain/review"
	"github.com/sanosuguru/go-event-booking/internal/domain/transaction"
)

type reviewRow struct {
	ID            string    `db:"id"`
	TransactionID string    `db:"transaction_id"`
	EventID       string    `db:"event_id"`
	ClientID      string    `db:"client_id"`
	HostID        string    `db:"host_id"`
	Rating        int       `db:"rating"`
	Comment       *string   `db:"comment"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r *reviewRow) toEntity() *review.Review {
	var comment string
	if r.Comment != nil {
		comment = *r.Comment
	}
	return &review.Review{
		ID:            r.ID,
		TransactionID: r.TransactionID,
		EventID:       r.EventID,
		ClientID:      r.ClientID,
		HostID:        r.HostID,
		Rating:        r.Rating,
		Comment:       comment,
		CreatedAt:     r.CreatedAt,
	}
}

const reviewColumns = `id, transaction_id, event_id, client_id, host_id, rating, comment, created_at`

type ReviewRepository struct{ db *sqlx.DB }

func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, tx transaction.Tx, rv *review.Review) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return errors.New("トランザクションが不正です")
	}

	query := `
		INSERT INTO reviews (transaction_id, event_id, client_id, host_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var comment *string
	if rv.Comment != "" {
		comment = &rv.Comment
	}
	err := sqlxTx.QueryRowContext(ctx, query,
		rv.TransactionID, rv.EventID, rv.ClientID, rv.HostID, rv.Rating, comment, rv.CreatedAt,
	).Scan(&rv.ID)
	if err != nil {
		// (event_id, client_id) の一意制約による二重レビューガード
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return review.ErrAlreadyReviewed
		}
		return fmt.Errorf("レビュー作成に失敗しました: %w", err)
	}
	return nil
}

func (r *ReviewRepository) GetByTransactionID(ctx context.Context, transactionID string) (*review.Review, error) {
	var row reviewRow
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE transaction_id = $1`
	if err := r.db.GetContext(ctx, &row, query, transactionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, review.ErrReviewNotFound
		}
		return nil, fmt.Errorf("レビュー取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ReviewRepository) Exists(ctx context.Context, eventID, clientID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM reviews WHERE event_id = $1 AND client_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, eventID, clientID); err != nil {
		return false, fmt.Errorf("レビュー存在確認に失敗しました: %w", err)
	}
	return exists, nil
}

func (r *ReviewRepository) ListLatest(ctx context.Context, limit int) ([]*review.Review, error) {
	var rows []reviewRow
	query := `SELECT ` + reviewColumns + ` FROM reviews ORDER BY created_at DESC LIMIT $1`
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("レビュー一覧取得に失敗しました: %w", err)
	}
	reviews := make([]*review.Review, len(rows))
	for i, row := range rows {
		reviews[i] = row.toEntity()
	}
	return reviews, nil
}

var _ review.Repository = (*ReviewRepository)(nil)
