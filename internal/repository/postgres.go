package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"sellmypi/internal/models"
)

// PostgresStore persists sell orders in a single transactions table, one row
// per order keyed by id.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore returns a store backed by the given pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const txColumns = `id, owner_id, username, email, phone, pi_amount, usd_value, inr_value,
		sell_rate_usd, sell_rate_inr, upi_id, image_url, status, version, created_at, updated_at`

// EnsureSchema creates the transactions table when absent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS transactions (
			id            UUID PRIMARY KEY,
			owner_id      TEXT NOT NULL,
			username      TEXT NOT NULL DEFAULT '',
			email         TEXT NOT NULL DEFAULT '',
			phone         TEXT NOT NULL DEFAULT '',
			pi_amount     NUMERIC NOT NULL,
			usd_value     TEXT NOT NULL,
			inr_value     TEXT NOT NULL,
			sell_rate_usd TEXT NOT NULL,
			sell_rate_inr TEXT NOT NULL,
			upi_id        TEXT NOT NULL,
			image_url     TEXT NOT NULL DEFAULT '',
			status        TEXT NOT NULL,
			version       BIGINT NOT NULL DEFAULT 1,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS transactions_owner_idx ON transactions (owner_id, created_at DESC);
	`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new transaction with a fresh id.
func (s *PostgresStore) Create(ctx context.Context, tx *models.Transaction) error {
	tx.ID = uuid.NewString()
	tx.Version = 1

	const query = `
		INSERT INTO transactions (id, owner_id, username, email, phone, pi_amount, usd_value,
			inr_value, sell_rate_usd, sell_rate_inr, upi_id, image_url, status, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`
	return s.db.QueryRowContext(ctx, query,
		tx.ID,
		tx.OwnerID,
		tx.UserInfo.Username,
		tx.UserInfo.Email,
		tx.UserInfo.Phone,
		tx.PiAmount,
		tx.UsdValue,
		tx.InrValue,
		tx.SellRateUsd,
		tx.SellRateInr,
		tx.UpiID,
		tx.ImageURL,
		tx.Status,
		tx.Version,
	).Scan(&tx.CreatedAt, &tx.UpdatedAt)
}

// Get returns the transaction or models.ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE id = $1`, txColumns)
	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return tx, err
}

// List returns all transactions, newest first.
func (s *PostgresStore) List(ctx context.Context) ([]models.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions ORDER BY created_at DESC, id DESC`, txColumns)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

// ListByOwner returns one owner's transactions, newest first.
func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`, txColumns)
	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

// Update applies a validated patch, bumps version and updated_at.
func (s *PostgresStore) Update(ctx context.Context, id string, fields map[string]any) (*models.Transaction, error) {
	p, err := parsePatch(fields)
	if err != nil {
		return nil, err
	}

	set := []string{"version = version + 1", "updated_at = NOW()"}
	args := []any{id}
	if p.status != nil {
		args = append(args, string(*p.status))
		set = append(set, fmt.Sprintf("status = $%d", len(args)))
	}
	if p.imageURL != nil {
		args = append(args, *p.imageURL)
		set = append(set, fmt.Sprintf("image_url = $%d", len(args)))
	}

	query := fmt.Sprintf(`UPDATE transactions SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(set, ", "), txColumns)
	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return tx, err
}

// Delete removes the transaction or returns models.ErrNotFound.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteByOwner removes all transactions of one owner.
func (s *PostgresStore) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var tx models.Transaction
	if err := row.Scan(
		&tx.ID,
		&tx.OwnerID,
		&tx.UserInfo.Username,
		&tx.UserInfo.Email,
		&tx.UserInfo.Phone,
		&tx.PiAmount,
		&tx.UsdValue,
		&tx.InrValue,
		&tx.SellRateUsd,
		&tx.SellRateInr,
		&tx.UpiID,
		&tx.ImageURL,
		&tx.Status,
		&tx.Version,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &tx, nil
}

func collectTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}
