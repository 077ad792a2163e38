// Package postgres provides the pgx-backed account store. Every operation
// runs inside a retry envelope that absorbs transient connection failures.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"gastobot/internal/models"
	"gastobot/internal/storage"
)

// PgxPool is the subset of pgxpool.Pool the store needs. It is implemented
// by *pgxpool.Pool and pgxmock.PgxPoolIface.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Ensure Store satisfies the storage.AccountStore interface at compile time.
var _ storage.AccountStore = (*Store)(nil)

// Store provides Postgres-backed persistence for accounts.
type Store struct {
	pool   PgxPool
	logger *zap.Logger
	retry  retryPolicy
}

// New creates a store over an established pool.
func New(pool PgxPool, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{pool: pool, logger: logger, retry: defaultRetryPolicy()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect opens a connection pool for the given database URL.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return pool, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const accountColumns = `id, name, phone_number, google_sheets_id, password, is_active,
       COALESCE(google_refresh_token, ''), created_at, updated_at`

const findByPhoneQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE phone_number = $1`

const createQuery = `
INSERT INTO accounts (name, phone_number, google_sheets_id, password)
VALUES ($1, $2, $3, $4)
RETURNING ` + accountColumns

const setRefreshTokenQuery = `
UPDATE accounts
SET google_refresh_token = $2, updated_at = NOW()
WHERE id = $1
RETURNING ` + accountColumns

// FindByPhone fetches the account registered under the given phone number.
func (s *Store) FindByPhone(ctx context.Context, phone string) (models.Account, error) {
	var acc models.Account
	err := s.withRetry(ctx, "find account", func(ctx context.Context) error {
		return scanAccount(s.pool.QueryRow(ctx, findByPhoneQuery, phone), &acc)
	})
	if err != nil {
		return models.Account{}, err
	}
	return acc, nil
}

// Create inserts a new account row. The unique index on phone_number makes
// a concurrent duplicate insert surface as storage.ErrAlreadyExists.
func (s *Store) Create(ctx context.Context, account models.Account) (models.Account, error) {
	var created models.Account
	err := s.withRetry(ctx, "create account", func(ctx context.Context) error {
		row := s.pool.QueryRow(ctx, createQuery,
			account.Name, account.PhoneNumber, account.SheetID, account.PasswordHash)
		if err := scanAccount(row, &created); err != nil {
			if isUniqueViolation(err) {
				return storage.ErrAlreadyExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return models.Account{}, err
	}
	return created, nil
}

// SetRefreshToken stores the Google refresh token on the account. This is
// the only write path for the token column.
func (s *Store) SetRefreshToken(ctx context.Context, accountID int64, token string) (models.Account, error) {
	var updated models.Account
	err := s.withRetry(ctx, "set refresh token", func(ctx context.Context) error {
		return scanAccount(s.pool.QueryRow(ctx, setRefreshTokenQuery, accountID, token), &updated)
	})
	if err != nil {
		return models.Account{}, err
	}
	return updated, nil
}

func scanAccount(row pgx.Row, acc *models.Account) error {
	err := row.Scan(&acc.ID, &acc.Name, &acc.PhoneNumber, &acc.SheetID,
		&acc.PasswordHash, &acc.IsActive, &acc.RefreshToken,
		&acc.CreatedAt, &acc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

// isUniqueViolation reports whether the error is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
