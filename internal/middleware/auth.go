package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"hellodube-gateway/internal/model"
)

type accessVerifier interface {
	VerifyAccess(tokenString string) (*model.AuthClaims, error)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

// PublicPaths are request-path prefixes that bypass authentication entirely:
// the auth endpoints, the health check, the static login page and the
// explicitly public test route.
var PublicPaths = []string{
	"/api/auth",
	"/login.html",
	"/health",
	"/api/test/public",
}

type AuthMiddleware struct {
	verifier accessVerifier
}

func NewAuthMiddleware(verifier accessVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Authenticate is the per-request gate: public paths pass through untouched,
// everything else must present a verifiable access token.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range PublicPaths {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}

		token := ExtractToken(r)
		if token == "" {
			writeAuthError(w, http.StatusUnauthorized, "Access denied. No token provided.")
			return
		}

		claims, err := m.verifier.VerifyAccess(token)
		if err != nil {
			if errors.Is(err, model.ErrSecretMissing) {
				writeAuthError(w, http.StatusInternalServerError, "Server configuration error.")
				return
			}
			writeAuthError(w, http.StatusUnauthorized, "Invalid or expired token.")
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles permits continuation only when the authenticated identity's
// role is in the allow-list. A missing identity is Unauthorized, not
// Forbidden.
func (m *AuthMiddleware) RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	roleSet := map[string]struct{}{}
	for _, role := range allowedRoles {
		roleSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "Authentication required.")
				return
			}

			if _, allowed := roleSet[claims.Role]; !allowed {
				writeAuthError(w, http.StatusForbidden, "Access denied. Insufficient permissions.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ExtractToken pulls the bearer credential from the Authorization header,
// stripping any number of stacked "Bearer " prefixes, and falls back to the
// token query parameter. The query form exists so documentation-viewer links
// can embed a credential.
func ExtractToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header != "" {
		token := header
		for strings.HasPrefix(strings.ToLower(token), "bearer ") {
			token = strings.TrimSpace(token[7:])
		}
		return token
	}

	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func ClaimsFromContext(ctx context.Context) (*model.AuthClaims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*model.AuthClaims)
	return claims, ok
}

// ContextWithClaims exists for handlers and tests that attach an identity
// outside the middleware chain.
func ContextWithClaims(ctx context.Context, claims *model.AuthClaims) context.Context {
	return context.WithValue(ctx, authClaimsContextKey, claims)
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{Error: true, Message: message})
}
