package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-event-booking/internal/domain/profile"
	"github.com/sanosuguru/go-event-booking/internal/domain/transaction"
)

type clientRow struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	Email         string    `db:"email"`
	Status        string    `db:"status"`
	IsDeleted     bool      `db:"is_deleted"`
	ContactNumber *string   `db:"contact_number"`
	Location      *string   `db:"location"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type hostRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Email       string    `db:"email"`
	Status      string    `db:"status"`
	IsDeleted   bool      `db:"is_deleted"`
	Income      float64   `db:"income"`
	Rating      float64   `db:"rating"`
	RatingCount int       `db:"rating_count"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type adminRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Status    string    `db:"status"`
	IsDeleted bool      `db:"is_deleted"`
	Income    float64   `db:"income"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ClientRepository はクライアントリポジトリのPostgreSQL実装
type ClientRepository struct{ db *sqlx.DB }

func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (*profile.Client, error) {
	var row clientRow
	query := `SELECT id, name, email, status, is_deleted, contact_number, location, created_at, updated_at FROM clients WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, profile.ErrClientNotFound
		}
		return nil, fmt.Errorf("クライアント取得に失敗しました: %w", err)
	}

	c := &profile.Client{
		Identity: profile.Identity{
			ID:        row.ID,
			Name:      row.Name,
			Email:     row.Email,
			Status:    profile.AccountStatus(row.Status),
			IsDeleted: row.IsDeleted,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		},
	}
	if row.ContactNumber != nil {
		c.ContactNumber = *row.ContactNumber
	}
	if row.Location != nil {
		c.Location = *row.Location
	}
	return c, nil
}

// HostRepository はホストリポジトリのPostgreSQL実装
type HostRepository struct{ db *sqlx.DB }

func NewHostRepository(db *sqlx.DB) *HostRepository {
	return &HostRepository{db: db}
}

const hostColumns = `id, name, email, status, is_deleted, income, rating, rating_count, created_at, updated_at`

func (row *hostRow) toEntity() *profile.Host {
	return &profile.Host{
		Identity: profile.Identity{
			ID:        row.ID,
			Name:      row.Name,
			Email:     row.Email,
			Status:    profile.AccountStatus(row.Status),
			IsDeleted: row.IsDeleted,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		},
		Income:      row.Income,
		Rating:      row.Rating,
		RatingCount: row.RatingCount,
	}
}

func (r *HostRepository) GetByID(ctx context.Context, id string) (*profile.Host, error) {
	var row hostRow
	query := `SELECT ` + hostColumns + ` FROM hosts WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, profile.ErrHostNotFound
		}
		return nil, fmt.Errorf("ホスト取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// AddIncome はホストの収入を加算する
// 上書きではなく加算なので、並行する精算同士で更新が失われることはない
func (r *HostRepository) AddIncome(ctx context.Context, tx transaction.Tx, id string, amount float64) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return errors.New("トランザクションが不正です")
	}

	query := `UPDATE hosts SET income = income + $1, updated_at = NOW() WHERE id = $2`
	result, err := sqlxTx.ExecContext(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("ホスト収入加算に失敗しました: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return profile.ErrHostNotFound
	}
	return nil
}

// GetForUpdate は行ロック付きでホストを取得する
// レビューの評価再計算は read-then-write なので、同一トランザクション内でロックを保持する
func (r *HostRepository) GetForUpdate(ctx context.Context, tx transaction.Tx, id string) (*profile.Host, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, errors.New("トランザクションが不正です")
	}

	var row hostRow
	query := `SELECT ` + hostColumns + ` FROM hosts WHERE id = $1 FOR UPDATE`
	if err := sqlxTx.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, profile.ErrHostNotFound
		}
		return nil, fmt.Errorf("ホスト取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

func (r *HostRepository) UpdateRating(ctx context.Context, tx transaction.Tx, id string, rating float64, count int) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return errors.New("トランザクションが不正です")
	}

	query := `UPDATE hosts SET rating = $1, rating_count = $2, updated_at = NOW() WHERE id = $3`
	result, err := sqlxTx.ExecContext(ctx, query, rating, count, id)
	if err != nil {
		return fmt.Errorf("ホスト評価更新に失敗しました: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return profile.ErrHostNotFound
	}
	return nil
}

// AdminLedgerRepository は管理者台帳リポジトリのPostgreSQL実装
type AdminLedgerRepository struct{ db *sqlx.DB }

func NewAdminLedgerRepository(db *sqlx.DB) *AdminLedgerRepository {
	return &AdminLedgerRepository{db: db}
}

func (r *AdminLedgerRepository) GetByID(ctx context.Context, id string) (*profile.Admin, error) {
	var row adminRow
	query := `SELECT id, name, email, status, is_deleted, income, created_at, updated_at FROM admins WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, profile.ErrAdminNotFound
		}
		return nil, fmt.Errorf("管理者取得に失敗しました: %w", err)
	}
	return &profile.Admin{
		Identity: profile.Identity{
			ID:        row.ID,
			Name:      row.Name,
			Email:     row.Email,
			Status:    profile.AccountStatus(row.Status),
			IsDeleted: row.IsDeleted,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		},
		Income: row.Income,
	}, nil
}

func (r *AdminLedgerRepository) AddIncome(ctx context.Context, tx transaction.Tx, id string, amount float64) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return errors.New("トランザクションが不正です")
	}

	query := `UPDATE admins SET income = income + $1, updated_at = NOW() WHERE id = $2`
	result, err := sqlxTx.ExecContext(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("管理者収入加算に失敗しました: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return profile.ErrAdminNotFound
	}
	return nil
}

var (
	_ profile.ClientRepository      = (*ClientRepository)(nil)
	_ profile.HostRepository        = (*HostRepository)(nil)
	_ profile.AdminLedgerRepository = (*AdminLedgerRepository)(nil)
)
