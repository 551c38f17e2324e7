package utils

import "golang.org/x/crypto/bcrypt"

// HashAPIToken hashes a provider API token for storage.
func HashAPIToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckAPIToken reports whether the presented token matches the stored hash.
func CheckAPIToken(token, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}
