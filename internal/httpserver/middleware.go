package httpserver

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"duobroker/internal/auth"
	"duobroker/internal/httputil"
)

// InternalTokenHeader carries the shared secret for the back-office
// surface under /v1/internal.
const InternalTokenHeader = "X-Internal-Token"

type contextKey int

const ctxUserID contextKey = iota

// bearerToken extracts the credential from an "Authorization: Bearer ..."
// header. Empty string when the header is absent or malformed.
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// WithAuth authenticates every request through the token service and
// stashes the subject user id in the request context.
func WithAuth(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "missing bearer token"})
				return
			}
			userID, err := svc.ParseToken(token)
			if err != nil {
				httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "invalid token"})
				return
			}
			ctx := context.WithValue(r.Context(), ctxUserID, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID reports the authenticated subject placed by WithAuth.
func UserID(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(ctxUserID).(string)
	return id, ok
}

// authed adapts a user-scoped handler to http.HandlerFunc. It only ever
// wraps routes that sit behind WithAuth, so a missing subject means the
// route was wired outside the authenticated group.
func authed(h func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserID(r)
		if !ok {
			httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "unauthorized"})
			return
		}
		h(w, r, userID)
	}
}

// InternalAuth guards the back-office routes with a static shared token.
func InternalAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(InternalTokenHeader)
			if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "invalid internal token"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
