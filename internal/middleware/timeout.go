package middleware

import (
	"net/http"
	"time"
)

// Timeout bounds every request so no store call can hang a handler forever.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	message := `{"error":true,"message":"Request timed out."}`

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, message)
	}
}
