package middleware

import (
	"net/http"

	"github.com/itchan-dev/nbbs/internal/logger"
)

type HostChecker interface {
	IsIgnoredHost(host string) bool
}

// IgnoreHosts drops requests from ignored hosts without any response: the
// connection is hijacked and closed. Without hijack support nothing is written.
func IgnoreHosts(checker HostChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := GetHostFromContext(r)
			if host == "" || !checker.IsIgnoredHost(host) {
				next.ServeHTTP(w, r)
				return
			}

			logger.Log.Debug("dropping request from ignored host", "host", host, "path", r.URL.Path)
			conn, _, err := http.NewResponseController(w).Hijack()
			if err != nil {
				return
			}
			conn.Close()
		})
	}
}
