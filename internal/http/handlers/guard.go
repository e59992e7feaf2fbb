package handlers

import (
	"net/http"

	"github.com/hongminglow/cabot-property-api/internal/auth"
	"github.com/hongminglow/cabot-property-api/internal/http/respond"
	"github.com/hongminglow/cabot-property-api/internal/logging"
)

// RequireBearer rejects requests without a valid "Bearer <token>"
// Authorization header and stores the token claims in the request context.
func RequireBearer(tokens *auth.TokenManager, log logging.Logger, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := auth.ExtractBearer(r.Header.Get("Authorization"))
		if err == nil {
			var claims *auth.Claims
			claims, err = tokens.Validate(raw)
			if err == nil {
				next(w, r.WithContext(auth.ContextWithClaims(r.Context(), claims)))
				return
			}
		}
		log.Info(r.Context(), "bearer rejected", "path", r.URL.Path, "reason", err.Error())
		respond.Error(w, http.StatusUnauthorized, msgUnauthorized)
	})
}
