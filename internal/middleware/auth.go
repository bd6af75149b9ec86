package middleware

import (
	"net/http"
	"strings"

	"minote/internal/auth"
	"minote/internal/httputil"
)

// AuthMiddleware verifies an optional bearer token. A valid token attaches
// the subject id to the request context; a missing token leaves the request
// anonymous (the public document paths need this); a present-but-invalid
// token is rejected outright.
func AuthMiddleware(verifier auth.JWTVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				httputil.RespondError(w, http.StatusUnauthorized, "malformed authorization header")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, httputil.WithCallerID(r, claims.GetUserID()))
		})
	}
}

// RequireAuth rejects anonymous requests. Routes without a public path wrap
// their handlers in this.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if httputil.CallerID(r) == "" {
			httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r)
	}
}
