package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost matches the cost used when admins are provisioned.
const BcryptCost = 12

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares password with a bcrypt hash in constant time.
func CheckPassword(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var (
	decoyOnce sync.Once
	decoyHash string
)

// burnCompare spends the same bcrypt work as a real check so that unknown
// emails take as long to reject as wrong passwords.
func burnCompare(password string) {
	decoyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("decoy-password"), BcryptCost)
		if err == nil {
			decoyHash = string(h)
		}
	})
	_ = CheckPassword(password, decoyHash)
}
