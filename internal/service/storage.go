package service

import (
	"context"
	"time"

	"worthit/internal/domain/models"
)

// UserStore persists user records. Implementations report a missing user as
// models.ErrNotFound and a username/email uniqueness violation on save as
// models.ErrConflict.
type UserStore interface {
	SaveUser(ctx context.Context, user *models.User) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateBudget(ctx context.Context, username string, budget float64) (*models.User, error)
}

// TransactionStore persists ledger entries. Each write is a single-row
// operation, so concurrent updates to the same id serialize
// last-committed-wins. List results are ordered by transaction date
// descending, id descending.
type TransactionStore interface {
	SaveTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error)
	TransactionByID(ctx context.Context, id int64) (*models.Transaction, error)
	TransactionsByUser(ctx context.Context, userID int64) ([]models.Transaction, error)
	TransactionsByUserBetween(ctx context.Context, userID int64, from, to time.Time) ([]models.Transaction, error)
	UpdateTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
}

// TokenIssuer mints bearer tokens for an authenticated username.
type TokenIssuer interface {
	Issue(username string) (string, error)
}
