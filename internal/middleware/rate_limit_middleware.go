package middleware

import (
	"net"
	"net/http"
	"sync"

	"github.com/vdsasi/NoteSharingApp/pkg/metrics"
	"github.com/vdsasi/NoteSharingApp/pkg/response"

	"golang.org/x/time/rate"
)

// per-key limiter store (token bucket per authenticated user or client IP)
var limiterStore sync.Map // map[string]*rate.Limiter

func getLimiter(key string, rps float64, burst int) *rate.Limiter {
	v, ok := limiterStore.Load(key)
	if ok {
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(rate.Limit(rps), burst)
	limiterStore.Store(key, lim)
	return lim
}

// RateLimitMiddleware enforces a per-key token-bucket limit. Authenticated
// requests are keyed by user id, anonymous ones by client IP.
func RateLimitMiddleware(rps float64, burst int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "user:" + GetUserID(r)
			if key == "user:" {
				ip, _, err := net.SplitHostPort(r.RemoteAddr)
				if err != nil || ip == "" {
					ip = r.RemoteAddr
				}
				key = "ip:" + ip
			}

			if !getLimiter(key, rps, burst).Allow() {
				w.Header().Set("Retry-After", "1")
				metrics.RateLimitRejected.Inc()
				response.Error(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			metrics.RateLimitAllowed.Inc()
			next.ServeHTTP(w, r)
		})
	}
}
