package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const ownerContextKey contextKey = "owner_id"

// OwnerHeader carries the caller's identity as a uuid. The server does not
// authenticate it; that is expected to happen at the edge proxy.
const OwnerHeader = "X-Owner-ID"

// withOwner rejects requests without a well-formed owner identity and stashes
// the owner id in the request context for handlers.
func withOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID := strings.TrimSpace(r.Header.Get(OwnerHeader))
		if _, err := uuid.Parse(ownerID); err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		ctx := context.WithValue(r.Context(), ownerContextKey, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ownerFrom(r *http.Request) string {
	if id, ok := r.Context().Value(ownerContextKey).(string); ok {
		return id
	}
	return ""
}
