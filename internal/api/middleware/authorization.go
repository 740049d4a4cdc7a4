package middleware

import (
	internaljwt "chat-hub-backend/internal/jwt"
	"errors"
	"net/http"
	"strings"
)

// ValidateJWT rejects requests whose Authorization header does not carry a
// verifiable bearer token. Endpoints still extract the identity themselves;
// this gate only keeps unauthenticated traffic out of the queue.
func ValidateJWT(authority *internaljwt.Authority) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(header, "Bearer ")

			if _, err := authority.Verify(tokenString); err != nil {
				var authErr *internaljwt.AuthError
				if errors.As(err, &authErr) && authErr.Reason == internaljwt.ReasonExpired {
					http.Error(w, "Token expired", http.StatusUnauthorized)
					return
				}
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next(w, r)
		}
	}
}
