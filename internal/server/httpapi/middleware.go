package httpapi

import (
	"context"
	"net/http"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// requireAccessToken rejects requests without a valid bearer access token
// with 401 and stores the token's user id in the request context.
func (h *Handler) requireAccessToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		userID, err := h.users.Authenticate(token)
		if err != nil {
			h.logger.Debug(r.Context(), "access token rejected", "error", err)
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func userIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
