package middleware

import (
	"net/http"
	"strings"

	"github.com/moneywise/moneywise/internal/ctxkeys"
	"github.com/moneywise/moneywise/internal/service"
)

// AuthMiddleware resolves a Bearer token to a user and attaches it to the
// request context. Requests without a valid token continue anonymously.
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := authService.VerifyJWT(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			userID, ok := claims["user_id"].(string)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, err := authService.ByID(userID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			// Never carry the hash further than the repository layer
			user.PasswordHash = ""

			ctx := ctxkeys.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests that did not authenticate
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"error":"authentication required"}`))
			return
		}

		next.ServeHTTP(w, r)
	}
}
