package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/DAC098/tj2/internal/common"
	"github.com/DAC098/tj2/internal/server/auth"
)

type contextKey string

const userIDKey contextKey = "user_id"

// userID extracts the authenticated user id set by withAuth.
func userID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// withAuth verifies the bearer access token and stores the user id in the
// request context. Expired tokens answer with the expired-token error body
// so clients know a refresh can recover.
func (s *Server) withAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, common.ErrInvalidToken)
			return
		}

		uid, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, uid)))
	})
}
