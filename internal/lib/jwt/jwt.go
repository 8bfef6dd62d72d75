package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"worthit/internal/domain/models"
)

// Manager issues and verifies HS256 bearer tokens binding a username to an
// expiry. The signing key is process-wide configuration, loaded once at
// startup.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret []byte, ttl time.Duration) *Manager {
	return &Manager{secret: secret, ttl: ttl}
}

func (m *Manager) Issue(username string) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	now := time.Now()
	claims := token.Claims.(jwt.MapClaims)
	claims["username"] = username
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(m.ttl).Unix()

	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// Verify returns the username bound to a valid token. Malformed, expired and
// badly signed tokens all fail with ErrAuthentication; callers are never told
// which check rejected the token.
func (m *Manager) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", models.ErrAuthentication
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", models.ErrAuthentication
	}

	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return "", models.ErrAuthentication
	}

	return username, nil
}
