package http

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"
)

// RateLimit limits each client IP to requests per window. A non-positive requests
// value disables limiting.
func RateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	if requests <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(keyByClientIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			zerolog.Ctx(r.Context()).Warn().
				Str("client_ip", ExtractClientIP(r)).
				Str("path", r.URL.Path).
				Msg("rate limit exceeded")
			WriteMessage(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
		}),
	)
}

func keyByClientIP(r *http.Request) (string, error) {
	if ip := ClientIPFromContext(r.Context()); ip != "" {
		return ip, nil
	}
	return ExtractClientIP(r), nil
}
