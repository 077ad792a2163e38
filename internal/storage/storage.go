// Package storage defines the persistence contract for accounts along with
// the sentinel errors callers branch on.
package storage

import (
	"context"
	"errors"

	"gastobot/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrUnavailable wraps the last transient database error once the retry
// budget is exhausted. Callers translate it into a "try again" reply.
var ErrUnavailable = errors.New("storage temporarily unavailable")

// AccountStore captures the persistence operations needed by the
// orchestrator and the HTTP handlers.
type AccountStore interface {
	FindByPhone(ctx context.Context, phone string) (models.Account, error)
	Create(ctx context.Context, account models.Account) (models.Account, error)
	SetRefreshToken(ctx context.Context, accountID int64, token string) (models.Account, error)
}
