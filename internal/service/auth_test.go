package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worthit/internal/domain/models"
	"worthit/internal/lib/hash"
	"worthit/internal/lib/jwt"
	"worthit/internal/storage/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAuth() (*Auth, *memory.Storage, *jwt.Manager) {
	store := memory.New()
	tokens := jwt.NewManager([]byte("test-secret"), time.Hour)
	auth := NewAuth(testLogger(), store, hash.NewBcryptHasher(), tokens)
	return auth, store, tokens
}

func TestRegisterIssuesVerifiableToken(t *testing.T) {
	auth, _, tokens := newTestAuth()
	ctx := context.Background()

	token, profile, err := auth.Register(ctx, "alice", "alice@x.com", "pw123", "Alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	username, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "alice@x.com", profile.Email)
	assert.Equal(t, "Alice", profile.DisplayName)
	assert.Equal(t, models.RoleUser, profile.Role)
	assert.Zero(t, profile.MonthlyBudget)
}

func TestRegisterConflicts(t *testing.T) {
	auth, _, _ := newTestAuth()
	ctx := context.Background()

	_, _, err := auth.Register(ctx, "alice", "alice@x.com", "pw123", "Alice")
	require.NoError(t, err)

	_, _, err = auth.Register(ctx, "alice", "other@x.com", "pw123", "")
	assert.ErrorIs(t, err, models.ErrConflict)

	_, _, err = auth.Register(ctx, "bob", "alice@x.com", "pw123", "")
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestRegisterValidation(t *testing.T) {
	auth, _, _ := newTestAuth()
	ctx := context.Background()

	cases := []struct {
		name              string
		username, email   string
		password, display string
	}{
		{"blank username", "  ", "a@x.com", "pw", ""},
		{"blank email", "alice", "", "pw", ""},
		{"blank password", "alice", "a@x.com", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := auth.Register(ctx, tc.username, tc.email, tc.password, tc.display)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	auth, _, _ := newTestAuth()
	ctx := context.Background()

	_, _, err := auth.Register(ctx, "alice", "alice@x.com", "pw123", "")
	require.NoError(t, err)

	_, _, wrongPassword := auth.Login(ctx, "alice", "nope")
	_, _, unknownUser := auth.Login(ctx, "nobody", "pw123")

	assert.ErrorIs(t, wrongPassword, models.ErrAuthentication)
	assert.ErrorIs(t, unknownUser, models.ErrAuthentication)
}

func TestLoginReturnsFreshToken(t *testing.T) {
	auth, _, tokens := newTestAuth()
	ctx := context.Background()

	_, _, err := auth.Register(ctx, "alice", "alice@x.com", "pw123", "")
	require.NoError(t, err)

	token, profile, err := auth.Login(ctx, "alice", "pw123")
	require.NoError(t, err)

	username, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
	assert.Equal(t, "alice", profile.Username)
}

func TestCurrentUser(t *testing.T) {
	auth, _, _ := newTestAuth()
	ctx := context.Background()

	_, _, err := auth.Register(ctx, "alice", "alice@x.com", "pw123", "Alice")
	require.NoError(t, err)

	profile, err := auth.CurrentUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", profile.DisplayName)

	_, err = auth.CurrentUser(ctx, "nobody")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateMonthlyBudget(t *testing.T) {
	auth, _, _ := newTestAuth()
	ctx := context.Background()

	_, _, err := auth.Register(ctx, "alice", "alice@x.com", "pw123", "")
	require.NoError(t, err)

	_, err = auth.UpdateMonthlyBudget(ctx, "alice", -1)
	assert.ErrorIs(t, err, models.ErrValidation)

	profile, err := auth.UpdateMonthlyBudget(ctx, "alice", 1500.50)
	require.NoError(t, err)
	assert.Equal(t, 1500.50, profile.MonthlyBudget)

	_, err = auth.UpdateMonthlyBudget(ctx, "nobody", 100)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
