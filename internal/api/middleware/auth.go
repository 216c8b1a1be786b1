package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/kyrieos/intelligence-engine/internal/api/response"
	"golang.org/x/crypto/bcrypt"
)

// SecretHeader carries the shared secret on service-to-service calls.
const SecretHeader = "X-Internal-Secret"

// Auth checks the shared internal secret on protected routes.
type Auth struct {
	secret     []byte
	secretHash []byte
}

// NewAuth creates a new Auth middleware. When secretHash is set it is a bcrypt
// hash of the secret and takes precedence over the plain secret.
func NewAuth(secret, secretHash string) *Auth {
	a := &Auth{}
	if secret != "" {
		a.secret = []byte(secret)
	}
	if secretHash != "" {
		a.secretHash = []byte(secretHash)
	}
	return a
}

// Authenticate rejects requests whose X-Internal-Secret header does not match
// and records the caller's address for rate limiting.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provided := r.Header.Get(SecretHeader)
		if provided == "" {
			response.Error(w, http.StatusForbidden,
				"FORBIDDEN", "Missing "+SecretHeader+" header", nil)
			return
		}

		if !a.matches(provided) {
			response.Error(w, http.StatusForbidden,
				"FORBIDDEN", "Invalid internal secret", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(setClientID(r.Context(), clientIP(r))))
	})
}

func (a *Auth) matches(provided string) bool {
	if len(a.secretHash) > 0 {
		return bcrypt.CompareHashAndPassword(a.secretHash, []byte(provided)) == nil
	}
	if len(a.secret) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(a.secret, []byte(provided)) == 1
}
