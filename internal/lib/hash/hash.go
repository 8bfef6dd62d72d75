package hash

import "golang.org/x/crypto/bcrypt"

// Hasher is the password hashing capability used by the auth service. It is
// an interface so correctness tests do not depend on a specific backend.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hashed, password string) error
}

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Compare(hashed, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
}
