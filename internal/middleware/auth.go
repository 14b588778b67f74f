package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/collegiate-app/collegiate/internal/auth"
	"github.com/collegiate-app/collegiate/internal/model"
)

// TokenVerifier resolves a bearer token to the identity-provider user.
// *identity.Client satisfies it.
type TokenVerifier interface {
	UserFromToken(ctx context.Context, accessToken string) (*model.AuthUser, error)
}

// RequireUser validates the Authorization bearer token against the
// identity provider and populates AuthContext for downstream handlers.
func RequireUser(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "No token provided")
				return
			}

			user, err := verifier.UserFromToken(r.Context(), token)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, err.Error())
				return
			}

			ac := auth.AuthContext{
				UserID: user.ID,
				Email:  user.Email,
				Role:   user.Role,
			}
			next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), ac)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
