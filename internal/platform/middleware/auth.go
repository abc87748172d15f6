package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// TokenValidator defines the interface for validating bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims represents the claims we expect from the token validator. The
// account id is the authenticated caller identity; the registry never
// authenticates callers itself.
type TokenClaims struct {
	AccountID string
	Admin     bool
}

type contextKeyAccountID struct{}
type contextKeyAdmin struct{}

// Context keys are exported for use in handler tests.
var (
	ContextKeyAccountID = contextKeyAccountID{}
	ContextKeyAdmin     = contextKeyAdmin{}
)

// GetAccountID retrieves the authenticated account id from the context.
func GetAccountID(ctx context.Context) string {
	accountID, ok := ctx.Value(ContextKeyAccountID).(string)
	if !ok {
		return ""
	}
	return accountID
}

// IsAdmin reports whether the authenticated caller carries the admin claim.
func IsAdmin(ctx context.Context) bool {
	admin, ok := ctx.Value(ContextKeyAdmin).(bool)
	return ok && admin
}

// RequireAuth rejects requests without a valid bearer token and places the
// authenticated account id (and admin flag) into the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, ContextKeyAccountID, claims.AccountID)
			ctx = context.WithValue(ctx, ContextKeyAdmin, claims.Admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
