package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"worthit/internal/domain/models"
)

// uniqueViolation is the postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

const userColumns = "id, username, email, display_name, password_hash, role, monthly_budget, created_at"
const transactionColumns = "id, user_id, amount, category, description, transaction_date"

type Storage struct {
	db *sql.DB
}

func New(dbURL string) (*Storage, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Stop() error {
	return s.db.Close()
}

func (s *Storage) SaveUser(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "storage.postgres.SaveUser"

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (username, email, display_name, password_hash, role)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, monthly_budget, created_at`,
		user.Username, user.Email, user.DisplayName, user.PasswordHash, user.Role,
	).Scan(&user.ID, &user.MonthlyBudget, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%s: %w", op, models.ErrConflict)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) userByColumn(ctx context.Context, op, column, value string) (*models.User, error) {
	var user models.User

	err := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+column+" = $1",
		value,
	).Scan(&user.ID, &user.Username, &user.Email, &user.DisplayName,
		&user.PasswordHash, &user.Role, &user.MonthlyBudget, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

func (s *Storage) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userByColumn(ctx, "storage.postgres.UserByUsername", "username", username)
}

func (s *Storage) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.userByColumn(ctx, "storage.postgres.UserByEmail", "email", email)
}

func (s *Storage) UpdateBudget(ctx context.Context, username string, budget float64) (*models.User, error) {
	const op = "storage.postgres.UpdateBudget"

	var user models.User

	err := s.db.QueryRowContext(ctx,
		`UPDATE users SET monthly_budget = $1 WHERE username = $2
		 RETURNING `+userColumns,
		budget, username,
	).Scan(&user.ID, &user.Username, &user.Email, &user.DisplayName,
		&user.PasswordHash, &user.Role, &user.MonthlyBudget, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

func (s *Storage) SaveTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	const op = "storage.postgres.SaveTransaction"

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO transactions (user_id, amount, category, description, transaction_date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		t.UserID, t.Amount, t.Category, t.Description, t.TransactionDate,
	).Scan(&t.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}

func (s *Storage) TransactionByID(ctx context.Context, id int64) (*models.Transaction, error) {
	const op = "storage.postgres.TransactionByID"

	var t models.Transaction

	err := s.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = $1",
		id,
	).Scan(&t.ID, &t.UserID, &t.Amount, &t.Category, &t.Description, &t.TransactionDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &t, nil
}

func (s *Storage) TransactionsByUser(ctx context.Context, userID int64) ([]models.Transaction, error) {
	const op = "storage.postgres.TransactionsByUser"

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+transactionColumns+` FROM transactions
		 WHERE user_id = $1
		 ORDER BY transaction_date DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return scanTransactions(op, rows)
}

func (s *Storage) TransactionsByUserBetween(ctx context.Context, userID int64, from, to time.Time) ([]models.Transaction, error) {
	const op = "storage.postgres.TransactionsByUserBetween"

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+transactionColumns+` FROM transactions
		 WHERE user_id = $1 AND transaction_date >= $2 AND transaction_date <= $3
		 ORDER BY transaction_date DESC, id DESC`,
		userID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return scanTransactions(op, rows)
}

func scanTransactions(op string, rows *sql.Rows) ([]models.Transaction, error) {
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Category, &t.Description, &t.TransactionDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return txs, nil
}

// UpdateTransaction rewrites the mutable columns of a single row. The write
// is one statement, so concurrent updates to the same id serialize
// last-committed-wins. transaction_date is left untouched.
func (s *Storage) UpdateTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	const op = "storage.postgres.UpdateTransaction"

	err := s.db.QueryRowContext(ctx,
		`UPDATE transactions SET amount = $1, category = $2, description = $3
		 WHERE id = $4
		 RETURNING transaction_date`,
		t.Amount, t.Category, t.Description, t.ID,
	).Scan(&t.TransactionDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}

func (s *Storage) DeleteTransaction(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteTransaction"

	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	return nil
}
