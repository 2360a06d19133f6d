package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher hashes customer and console passwords before they reach storage.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

var _ PasswordHasher = (*BcryptHasher)(nil)

// BcryptHasher is the PasswordHasher used by registration, login and the
// admin bootstrap.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates BcryptHasher; zero cost means bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the encoded hash stored in users.password_hash.
func (h *BcryptHasher) Hash(password string) (string, error) {
	encoded, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// Compare returns nil when password matches hash. A mismatch is
// bcrypt.ErrMismatchedHashAndPassword.
func (h *BcryptHasher) Compare(hash string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
