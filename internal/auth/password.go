package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives the stored admin credential. A cost below bcrypt's
// minimum (a zero-value config, typically) falls back to the default cost
// rather than producing a trivially weak hash.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword reports via error whether plain matches the stored hash.
func ComparePassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
