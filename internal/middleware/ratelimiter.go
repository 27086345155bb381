package middleware

import (
	"net/http"

	internal_errors "github.com/itchan-dev/nbbs/internal/errors"
	"github.com/itchan-dev/nbbs/internal/middleware/ratelimiter"
	"github.com/itchan-dev/nbbs/internal/utils"
)

var errFlood = &internal_errors.ErrorWithStatusCode{Message: "Rate limit exceeded, try again later.", StatusCode: http.StatusTooManyRequests}

// FloodLimit applies a per host token bucket to every request. It is
// independent of the per board interval gate.
func FloodLimit(rl *ratelimiter.KeyRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow(GetHostFromContext(r)) {
				utils.WriteErrorAndStatusCode(w, errFlood)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
