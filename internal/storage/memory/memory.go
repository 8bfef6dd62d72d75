// Package memory provides an in-memory storage implementation with the same
// contract as the postgres one. It backs the service and API tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"worthit/internal/domain/models"
)

type Storage struct {
	mu         sync.Mutex
	users      map[int64]*models.User
	byUsername map[string]int64
	byEmail    map[string]int64
	txs        map[int64]*models.Transaction
	nextUserID int64
	nextTxID   int64
}

func New() *Storage {
	return &Storage{
		users:      make(map[int64]*models.User),
		byUsername: make(map[string]int64),
		byEmail:    make(map[string]int64),
		txs:        make(map[int64]*models.Transaction),
		nextUserID: 1,
		nextTxID:   1,
	}
}

func (s *Storage) SaveUser(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUsername[user.Username]; ok {
		return nil, models.ErrConflict
	}
	if _, ok := s.byEmail[user.Email]; ok {
		return nil, models.ErrConflict
	}

	stored := *user
	stored.ID = s.nextUserID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.nextUserID++

	s.users[stored.ID] = &stored
	s.byUsername[stored.Username] = stored.ID
	s.byEmail[stored.Email] = stored.ID

	out := stored
	return &out, nil
}

func (s *Storage) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, models.ErrNotFound
	}

	out := *s.users[id]
	return &out, nil
}

func (s *Storage) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, models.ErrNotFound
	}

	out := *s.users[id]
	return &out, nil
}

func (s *Storage) UpdateBudget(ctx context.Context, username string, budget float64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, models.ErrNotFound
	}

	s.users[id].MonthlyBudget = budget

	out := *s.users[id]
	return &out, nil
}

func (s *Storage) SaveTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *t
	stored.ID = s.nextTxID
	s.nextTxID++
	s.txs[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (s *Storage) TransactionByID(ctx context.Context, id int64) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.txs[id]
	if !ok {
		return nil, models.ErrNotFound
	}

	out := *t
	return &out, nil
}

func (s *Storage) TransactionsByUser(ctx context.Context, userID int64) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.listLocked(userID, func(*models.Transaction) bool { return true }), nil
}

func (s *Storage) TransactionsByUserBetween(ctx context.Context, userID int64, from, to time.Time) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Both bounds inclusive, matching the SQL BETWEEN semantics of the
	// postgres implementation.
	return s.listLocked(userID, func(t *models.Transaction) bool {
		return !t.TransactionDate.Before(from) && !t.TransactionDate.After(to)
	}), nil
}

func (s *Storage) listLocked(userID int64, keep func(*models.Transaction) bool) []models.Transaction {
	var txs []models.Transaction
	for _, t := range s.txs {
		if t.UserID == userID && keep(t) {
			txs = append(txs, *t)
		}
	}

	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].TransactionDate.Equal(txs[j].TransactionDate) {
			return txs[i].TransactionDate.After(txs[j].TransactionDate)
		}
		return txs[i].ID > txs[j].ID
	})

	return txs
}

func (s *Storage) UpdateTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.txs[t.ID]
	if !ok {
		return nil, models.ErrNotFound
	}

	stored.Amount = t.Amount
	stored.Category = t.Category
	stored.Description = t.Description

	out := *stored
	return &out, nil
}

func (s *Storage) DeleteTransaction(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.txs[id]; !ok {
		return models.ErrNotFound
	}

	delete(s.txs, id)
	return nil
}
