// Package router arma el árbol de rutas chi con sus middlewares.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/lockpad/internal/http/controllers"
	"github.com/dropDatabas3/lockpad/internal/http/errors"
	mw "github.com/dropDatabas3/lockpad/internal/http/middlewares"
	"github.com/dropDatabas3/lockpad/internal/metrics"
	"github.com/dropDatabas3/lockpad/internal/rate"
)

type Deps struct {
	Controllers   *controllers.Controllers
	Validator     mw.TokenValidator
	Metrics       *metrics.Metrics // nil => sin /metrics
	MaxBodyBytes  int64
	DisableSignup bool

	// Limiters por grupo; nil => sin límite.
	AuthorizeLimiter rate.Limiter
	RegisterLimiter  rate.Limiter
	// TrustProxy: las claves de límite usan X-Forwarded-For.
	TrustProxy bool
}

// New devuelve el handler raíz.
func New(d Deps) http.Handler {
	c := d.Controllers
	r := chi.NewRouter()

	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(d.Metrics),
		mw.WithSecurityHeaders(),
		mw.WithMaxBody(d.MaxBodyBytes),
	)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		errors.WriteError(w, errors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		errors.WriteError(w, errors.ErrMethodNotAllowed)
	})

	r.Get("/health", c.Health.Health)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}
	r.Get("/.well-known/jwks.json", c.JWKS.JWKS)

	// authorize
	r.Group(func(r chi.Router) {
		r.Use(
			mw.WithNoStore(),
			mw.WithRateLimit(mw.RateLimitConfig{Limiter: d.AuthorizeLimiter, Route: "authorize", Metrics: d.Metrics, TrustProxy: d.TrustProxy}),
		)
		r.Post("/api/authorize", c.Authorize.Authorize)
		r.Post("/forms/authorize", c.Authorize.AuthorizeForm)
	})

	// registro
	if !d.DisableSignup {
		r.Group(func(r chi.Router) {
			r.Use(
				mw.WithNoStore(),
				mw.WithRateLimit(mw.RateLimitConfig{Limiter: d.RegisterLimiter, Route: "register", Metrics: d.Metrics, TrustProxy: d.TrustProxy}),
			)
			r.Post("/api/register", c.Register.Register)
			r.Post("/forms/register", c.Register.RegisterForm)
		})
	}

	// bearer
	r.Group(func(r chi.Router) {
		r.Use(mw.WithNoStore(), mw.RequireAuth(d.Validator))

		r.Get("/users", c.Users.List)
		r.Get("/users/{user_id}", c.Users.Get)

		r.Get("/applications", c.Applications.List)
		r.Post("/applications", c.Applications.Create)
		r.Get("/applications/{application_id}", c.Applications.Get)

		r.Get("/api-keys", c.APIKeys.List)
		r.Post("/api-keys", c.APIKeys.Create)
		r.Get("/api-keys/{api_key_id}", c.APIKeys.Get)
	})

	return r
}
