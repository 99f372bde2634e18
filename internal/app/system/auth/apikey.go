// internal/app/system/auth/apikey.go
package auth

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// API keys are shown to the caller once. Only a bcrypt hash plus the first
// eight characters in clear (for lookup) are stored.
const (
	apiKeyPrefix    = "cfk_"
	APIKeyPrefixLen = 8
)

// NewAPIKey generates a key and returns it with its stored form.
func NewAPIKey() (key, hash, prefix string, err error) {
	raw := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	key = apiKeyPrefix + raw
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", "", "", err
	}
	return key, string(h), key[:APIKeyPrefixLen], nil
}

// CheckAPIKey reports whether key matches the stored hash.
func CheckAPIKey(hash, key string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}

// LooksLikeAPIKey distinguishes API keys from JWTs in the Authorization
// header.
func LooksLikeAPIKey(credential string) bool {
	return strings.HasPrefix(credential, apiKeyPrefix)
}
