package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost resists offline brute force; each call salts independently so the
// same plaintext never hashes to the same value twice.
const bcryptCost = 12

// HashPassword returns a salted bcrypt hash of plain.
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether plain matches the stored hash. Comparison is
// constant-time inside bcrypt; any internal failure reports no-match rather
// than surfacing an error.
func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
