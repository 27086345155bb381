package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/nbbs/internal/logger"
)

// LogCalls logs "<route> called." at debug level for every request.
func LogCalls(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		path := r.URL.Path
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		logger.Log.Debug(path+" called.", "host", GetHostFromContext(r), "duration", time.Since(start))
	})
}
