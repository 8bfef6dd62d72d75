package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"worthit/internal/domain/models"
)

// Ledger manages a user's transactions and enforces ownership: a transaction
// is only ever readable, mutable or deletable by the user that owns it.
type Ledger struct {
	logger *slog.Logger
	users  UserStore
	txs    TransactionStore

	// now is the wall clock used to stamp transactions and to resolve the
	// current-month window. Overridable in tests.
	now func() time.Time
}

func NewLedger(logger *slog.Logger, users UserStore, txs TransactionStore) *Ledger {
	return &Ledger{
		logger: logger,
		users:  users,
		txs:    txs,
		now:    time.Now,
	}
}

func validateEntry(amount float64, category, description string) error {
	if amount < 0 {
		return fmt.Errorf("amount must be non-negative: %w", models.ErrValidation)
	}
	if !models.ValidCategory(category) {
		return fmt.Errorf("category must be %q or %q: %w", models.CategoryNeed, models.CategoryWant, models.ErrValidation)
	}
	if len(description) > models.MaxDescriptionLen {
		return fmt.Errorf("description too long: %w", models.ErrValidation)
	}
	return nil
}

// Create records a new transaction for the given user. The transaction date
// is stamped server-side; client-supplied dates are never accepted.
func (l *Ledger) Create(ctx context.Context, username string, amount float64, category, description string) (models.Transaction, error) {
	const op = "service.ledger.Create"

	if err := validateEntry(amount, category, description); err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}

	owner, err := l.users.UserByUsername(ctx, username)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}

	saved, err := l.txs.SaveTransaction(ctx, &models.Transaction{
		UserID:          owner.ID,
		Amount:          amount,
		Category:        category,
		Description:     description,
		TransactionDate: l.now(),
	})
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}

	l.logger.Info("transaction created",
		slog.String("username", username),
		slog.Int64("id", saved.ID),
		slog.String("category", saved.Category),
	)

	return *saved, nil
}

// ListAll returns every transaction owned by the user, most recent first.
func (l *Ledger) ListAll(ctx context.Context, username string) ([]models.Transaction, error) {
	const op = "service.ledger.ListAll"

	owner, err := l.users.UserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	txs, err := l.txs.TransactionsByUser(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return txs, nil
}

// ListCurrentMonth returns the user's transactions dated within the current
// calendar month, inclusive of the first day 00:00:00 and the last day
// 23:59:59, in the server's local calendar at call time.
func (l *Ledger) ListCurrentMonth(ctx context.Context, username string) ([]models.Transaction, error) {
	const op = "service.ledger.ListCurrentMonth"

	owner, err := l.users.UserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := l.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Second)

	txs, err := l.txs.TransactionsByUserBetween(ctx, owner.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return txs, nil
}

// resolveOwned fetches a transaction and checks it belongs to username.
// Existence is checked before ownership: a nonexistent id fails with
// ErrNotFound for any caller, someone else's id with ErrAuthorization.
func (l *Ledger) resolveOwned(ctx context.Context, id int64, username string) (*models.Transaction, error) {
	t, err := l.txs.TransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	owner, err := l.users.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if t.UserID != owner.ID {
		return nil, models.ErrAuthorization
	}

	return t, nil
}

// Update replaces the amount, category and description of an owned
// transaction. The transaction date is never modified.
func (l *Ledger) Update(ctx context.Context, id int64, username string, amount float64, category, description string) (models.Transaction, error) {
	const op = "service.ledger.Update"

	t, err := l.resolveOwned(ctx, id, username)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := validateEntry(amount, category, description); err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}

	t.Amount = amount
	t.Category = category
	t.Description = description

	updated, err := l.txs.UpdateTransaction(ctx, t)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%s: %w", op, err)
	}

	return *updated, nil
}

// Delete permanently removes an owned transaction.
func (l *Ledger) Delete(ctx context.Context, id int64, username string) error {
	const op = "service.ledger.Delete"

	if _, err := l.resolveOwned(ctx, id, username); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := l.txs.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	l.logger.Info("transaction deleted", slog.String("username", username), slog.Int64("id", id))

	return nil
}
