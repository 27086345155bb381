package middleware

import (
	"context"
	"net/http"

	"github.com/itchan-dev/nbbs/internal/utils"
)

type contextKey string

const hostKey contextKey = "host"

// ClientHost resolves the client host once and stores it in the request context.
// An unresolvable address is stored as an empty host.
func ClientHost(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _ := utils.GetIP(r, trustProxy)
			ctx := context.WithValue(r.Context(), hostKey, host)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetHostFromContext returns the host stored by ClientHost.
func GetHostFromContext(r *http.Request) string {
	host, _ := r.Context().Value(hostKey).(string)
	return host
}
