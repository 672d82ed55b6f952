package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/massiben/rh-backend/internal"
	"github.com/massiben/rh-backend/internal/datastore"
	"github.com/massiben/rh-backend/pkg/logger"
)

// SessionContext resolves the bearer token to its session and tags the
// request's log context with the userId. Resolution is best effort: requests
// without a matching session pass through untouched, endpoints decide
// themselves whether a token is required.
func SessionContext(store *datastore.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, ok := store.FindBy("sessions", func(rec datastore.Record) bool {
				current, _ := rec["access_token"].(string)
				return current == token
			})
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := logger.With(r.Context(), "userId", session["userId"])
			ctx = internal.ContextWithUserID(ctx, fmt.Sprint(session["userId"]))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
