package auth

import (
	"net/http"
	"strings"

	"github.com/splitnest/splitnest/pkg/response"
)

// RequireAdmin returns middleware that rejects requests without a valid
// admin session token in the Authorization header.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		if err := s.Verify(parts[1]); err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
