package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"worthit/internal/domain/models"
	"worthit/internal/lib/hash"
)

// Auth handles registration, credential checks and profile reads. Every
// operation takes the caller's username explicitly; nothing is read from
// ambient state.
type Auth struct {
	logger *slog.Logger
	users  UserStore
	hasher hash.Hasher
	tokens TokenIssuer
}

func NewAuth(logger *slog.Logger, users UserStore, hasher hash.Hasher, tokens TokenIssuer) *Auth {
	return &Auth{
		logger: logger,
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates a user and issues a token for it. Username and email must
// both be unused; uniqueness is case-sensitive, matching the store's unique
// constraints.
func (a *Auth) Register(ctx context.Context, username, email, password, displayName string) (string, models.Profile, error) {
	const op = "service.auth.Register"

	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" || password == "" {
		return "", models.Profile{}, fmt.Errorf("%s: %w", op, models.ErrValidation)
	}

	if _, err := a.users.UserByUsername(ctx, username); err == nil {
		return "", models.Profile{}, fmt.Errorf("%s: username: %w", op, models.ErrConflict)
	} else if !errors.Is(err, models.ErrNotFound) {
		return "", models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := a.users.UserByEmail(ctx, email); err == nil {
		return "", models.Profile{}, fmt.Errorf("%s: email: %w", op, models.ErrConflict)
	} else if !errors.Is(err, models.ErrNotFound) {
		return "", models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	passwordHash, err := a.hasher.Hash(password)
	if err != nil {
		return "", models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := a.users.SaveUser(ctx, &models.User{
		Username:     username,
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
	})
	if err != nil {
		return "", models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	token, err := a.tokens.Issue(user.Username)
	if err != nil {
		return "", models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	a.logger.Info("registered user", slog.String("username", username))

	return token, user.Profile(), nil
}

// Login verifies credentials and issues a fresh token. An unknown username
// and a wrong password fail with the same error.
func (a *Auth) Login(ctx context.Context, username, password string) (string, models.Profile, error) {
	const op = "service.auth.Login"

	user, err := a.users.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", models.Profile{}, fmt.Errorf("%s: %w", op, models.ErrAuthentication)
		}
		return "", models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := a.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", models.Profile{}, fmt.Errorf("%s: %w", op, models.ErrAuthentication)
	}

	token, err := a.tokens.Issue(user.Username)
	if err != nil {
		return "", models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	a.logger.Info("user logged in", slog.String("username", username))

	return token, user.Profile(), nil
}

func (a *Auth) CurrentUser(ctx context.Context, username string) (models.Profile, error) {
	const op = "service.auth.CurrentUser"

	user, err := a.users.UserByUsername(ctx, username)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	return user.Profile(), nil
}

// UpdateMonthlyBudget sets the caller's budget. Negative budgets are
// rejected.
func (a *Auth) UpdateMonthlyBudget(ctx context.Context, username string, budget float64) (models.Profile, error) {
	const op = "service.auth.UpdateMonthlyBudget"

	if budget < 0 {
		return models.Profile{}, fmt.Errorf("%s: budget must be non-negative: %w", op, models.ErrValidation)
	}

	user, err := a.users.UpdateBudget(ctx, username, budget)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	return user.Profile(), nil
}
