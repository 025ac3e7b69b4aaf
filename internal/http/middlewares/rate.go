package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/lockpad/internal/http/errors"
	"github.com/dropDatabas3/lockpad/internal/metrics"
	"github.com/dropDatabas3/lockpad/internal/observability/logger"
	"github.com/dropDatabas3/lockpad/internal/rate"
)

// clientIP devuelve el host de RemoteAddr. Con trustProxy toma el primer
// salto de X-Forwarded-For; sin proxy delante el header lo elige el cliente.
func clientIP(r *http.Request, trustProxy bool) string {
	if xf := r.Header.Get("X-Forwarded-For"); trustProxy && xf != "" {
		first, _, _ := strings.Cut(xf, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateKeyFunc arma la clave de conteo para un request.
type RateKeyFunc func(r *http.Request) string

// IPRouteKey: ip|path, con la ip de RemoteAddr.
func IPRouteKey(r *http.Request) string {
	return clientIP(r, false) + "|" + r.URL.Path
}

// ForwardedIPRouteKey: ip|path, con la ip de X-Forwarded-For si viene.
func ForwardedIPRouteKey(r *http.Request) string {
	return clientIP(r, true) + "|" + r.URL.Path
}

type RateLimitConfig struct {
	Limiter rate.Limiter
	KeyFunc RateKeyFunc
	Route   string // etiqueta de métricas
	Metrics *metrics.Metrics
	// TrustProxy elige ForwardedIPRouteKey cuando KeyFunc es nil.
	TrustProxy bool
}

// WithRateLimit rechaza con 429 al pasar el límite. Si el limiter falla,
// el request pasa.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPRouteKey
		if cfg.TrustProxy {
			cfg.KeyFunc = ForwardedIPRouteKey
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := cfg.Limiter.Allow(r.Context(), cfg.KeyFunc(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable",
					logger.Component("rate"), logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if res.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
				w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			}
			if !res.Allowed {
				cfg.Metrics.Limited(cfg.Route)
				secs := int64((res.RetryAfter + time.Second - 1) / time.Second)
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
				errors.WriteError(w, errors.ErrTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
