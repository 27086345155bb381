package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/itchan-dev/nbbs/internal/middleware"
	"github.com/itchan-dev/nbbs/internal/middleware/metrics"
	"github.com/itchan-dev/nbbs/internal/setup"
)

// JSON API only, no scripts/styles needed
const apiCSP = "default-src 'none'; frame-ancestors 'none'"

// New creates the router with all the routes. Every API route is a GET with
// query parameters.
func New(deps *setup.Dependencies) http.Handler {
	h := deps.Handler
	httpCfg := deps.Config.Public.Http

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(mw.ClientHost(httpCfg.TrustProxy))
	r.Use(mw.LogCalls)

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// ignored hosts never reach anything else, not even metrics
		r.Use(mw.IgnoreHosts(deps.Access))
		r.Use(metrics.Middleware)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: httpCfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         int((12 * time.Hour).Seconds()),
		}))
		r.Use(mw.SecurityHeaders(apiCSP))
		if deps.FloodLimiter != nil {
			r.Use(mw.FloodLimit(deps.FloodLimiter))
		}

		r.Route("/admin", func(r chi.Router) {
			r.Get("/new", h.CreateBoard)
			r.Get("/config", h.UpdateConfig)
			r.Get("/threads", h.GetAdminThreads)
			r.Get("/threads/remove", h.DeleteThread)
			r.Get("/threads/{threadID}/comments/update", h.UpdateCommentVisibility)
			r.Get("/threads/{threadID}/comments/remove", h.DeleteComment)
		})

		r.Get("/threads", h.GetThreads)
		r.Get("/threads/new", h.CreateThread)
		r.Get("/threads/{threadID}", h.GetThread)
		r.Get("/threads/{threadID}/comments/preview", h.PreviewComment)
		r.Get("/threads/{threadID}/comments/new", h.CreateComment)
	})

	return r
}
