package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worthit/internal/domain/models"
)

func TestSaveUserConflicts(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.SaveUser(ctx, &models.User{Username: "alice", Email: "alice@x.com"})
	require.NoError(t, err)

	_, err = s.SaveUser(ctx, &models.User{Username: "alice", Email: "other@x.com"})
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = s.SaveUser(ctx, &models.User{Username: "bob", Email: "alice@x.com"})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestTransactionsOrderedAndScoped(t *testing.T) {
	s := New()
	ctx := context.Background()

	alice, err := s.SaveUser(ctx, &models.User{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)
	bob, err := s.SaveUser(ctx, &models.User{Username: "bob", Email: "b@x.com"})
	require.NoError(t, err)

	base := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	for i, owner := range []int64{alice.ID, alice.ID, bob.ID} {
		_, err := s.SaveTransaction(ctx, &models.Transaction{
			UserID:          owner,
			Amount:          1,
			Category:        models.CategoryNeed,
			TransactionDate: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	txs, err := s.TransactionsByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.True(t, txs[0].TransactionDate.After(txs[1].TransactionDate))
}

func TestTransactionsBetweenInclusive(t *testing.T) {
	s := New()
	ctx := context.Background()

	alice, err := s.SaveUser(ctx, &models.User{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	from := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.June, 30, 23, 59, 59, 0, time.UTC)

	for _, date := range []time.Time{from.Add(-time.Second), from, to, to.Add(time.Second)} {
		_, err := s.SaveTransaction(ctx, &models.Transaction{
			UserID:          alice.ID,
			Amount:          1,
			Category:        models.CategoryWant,
			TransactionDate: date,
		})
		require.NoError(t, err)
	}

	txs, err := s.TransactionsByUserBetween(ctx, alice.ID, from, to)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.True(t, txs[0].TransactionDate.Equal(to))
	assert.True(t, txs[1].TransactionDate.Equal(from))
}

func TestUpdateTransactionKeepsDate(t *testing.T) {
	s := New()
	ctx := context.Background()

	alice, err := s.SaveUser(ctx, &models.User{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	date := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	saved, err := s.SaveTransaction(ctx, &models.Transaction{
		UserID:          alice.ID,
		Amount:          10,
		Category:        models.CategoryNeed,
		TransactionDate: date,
	})
	require.NoError(t, err)

	updated, err := s.UpdateTransaction(ctx, &models.Transaction{
		ID:       saved.ID,
		Amount:   20,
		Category: models.CategoryWant,
	})
	require.NoError(t, err)
	assert.Equal(t, 20.0, updated.Amount)
	assert.True(t, updated.TransactionDate.Equal(date))

	_, err = s.UpdateTransaction(ctx, &models.Transaction{ID: 9999})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteTransaction(t *testing.T) {
	s := New()
	ctx := context.Background()

	alice, err := s.SaveUser(ctx, &models.User{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	saved, err := s.SaveTransaction(ctx, &models.Transaction{
		UserID:          alice.ID,
		Amount:          10,
		Category:        models.CategoryNeed,
		TransactionDate: time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteTransaction(ctx, saved.ID))
	assert.ErrorIs(t, s.DeleteTransaction(ctx, saved.ID), models.ErrNotFound)

	_, err = s.TransactionByID(ctx, saved.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
