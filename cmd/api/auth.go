package main

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// requireAPIKey validates the Bearer token in the Authorization header
// before letting a request through.
func requireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		expectedKey := os.Getenv("API_SECRET_KEY")

		// If the operator forgot to set a key, lock the server down and make
		// it obvious this is a deployment problem rather than a bad token.
		if expectedKey == "" {
			http.Error(w, "Server configuration error: API_SECRET_KEY not set", http.StatusInternalServerError)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))

		// Constant-time comparison so response latency does not leak how many
		// leading characters of a guessed key were correct.
		if subtle.ConstantTimeCompare([]byte(token), []byte(expectedKey)) != 1 {
			log.WithField("remote", r.RemoteAddr).Warn("rejected request with invalid API key")
			http.Error(w, `{"error": "Unauthorized: invalid or missing API key"}`, http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}
