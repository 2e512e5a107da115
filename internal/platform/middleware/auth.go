package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	id "clubhub/pkg/domain"
	"clubhub/pkg/requestcontext"
)

// TokenValidator validates a bearer token and returns the authenticated
// user.
type TokenValidator interface {
	ValidateToken(tokenString string) (id.UserID, error)
}

// Authenticate resolves the Authorization header into a typed user ID on
// the context. Requests without a valid token proceed anonymously; handlers
// and services decide which operations require an actor.
func Authenticate(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := validator.ValidateToken(token)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "invalid bearer token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Invalid or expired token"}`))
				return
			}

			ctx := requestcontext.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
