// Package app arma el servicio completo a partir de la config.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/lockpad/internal/auth"
	"github.com/dropDatabas3/lockpad/internal/config"
	"github.com/dropDatabas3/lockpad/internal/http/controllers"
	"github.com/dropDatabas3/lockpad/internal/http/router"
	"github.com/dropDatabas3/lockpad/internal/http/server"
	"github.com/dropDatabas3/lockpad/internal/jwt"
	"github.com/dropDatabas3/lockpad/internal/metrics"
	"github.com/dropDatabas3/lockpad/internal/observability/logger"
	"github.com/dropDatabas3/lockpad/internal/rate"
	"github.com/dropDatabas3/lockpad/internal/security/password"
	"github.com/dropDatabas3/lockpad/internal/store"
	"github.com/dropDatabas3/lockpad/internal/store/backend"
)

// App es el grafo de dependencias ya inicializado.
type App struct {
	Config  *config.Config
	Backend store.Backend
	Issuer  *jwt.Issuer
	Service *auth.Service
	Metrics *metrics.Metrics
	Handler http.Handler

	closers []func() error
}

// New inicializa todo en orden: backend, claves, hasher, métricas,
// servicio y router. Si algo falla cierra lo ya abierto.
func New(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	log := logger.From(ctx).With(logger.Component("app"))
	a := &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	// Paso 1: claves
	privPEM, pubPEM, err := cfg.KeyMaterial()
	if err != nil {
		return nil, err
	}
	keys, err := jwt.LoadKeyPair(privPEM, pubPEM)
	if err != nil {
		return nil, err
	}
	if err := keys.SelfCheck(ctx); err != nil {
		return nil, err
	}
	if a.Issuer, err = jwt.NewIssuer(keys, time.Now); err != nil {
		return nil, err
	}

	// Paso 2: almacenamiento
	if a.Backend, err = backend.Open(ctx, cfg); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.Backend.Close)
	if err := a.Backend.CreateTable(ctx); err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}

	// Paso 3: secretos
	ac := cfg.Security.Argon2
	hasher, err := password.NewHasher(password.Params{
		Memory:      ac.MemoryKiB,
		Time:        ac.Time,
		Parallelism: ac.Parallelism,
		KeyLen:      ac.KeyLen,
	})
	if err != nil {
		return nil, err
	}
	var blacklist *password.Blacklist
	if p := cfg.Security.PasswordBlacklistPath; p != "" {
		if blacklist, err = password.LoadBlacklist(p); err != nil {
			return nil, fmt.Errorf("password blacklist: %w", err)
		}
		log.Info("password blacklist loaded", logger.Count(blacklist.Len()))
	}
	pp := cfg.Security.PasswordPolicy

	// Paso 4: métricas
	if cfg.Server.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		if a.Metrics, err = metrics.New(reg); err != nil {
			return nil, err
		}
	}

	// Paso 5: servicio
	a.Service, err = auth.NewService(auth.Deps{
		Table:  a.Backend,
		Hasher: hasher,
		Issuer: a.Issuer,
		Policy: password.Policy{
			MinLength:     pp.MinLength,
			MaxLength:     pp.MaxLength,
			RequireUpper:  pp.RequireUpper,
			RequireLower:  pp.RequireLower,
			RequireDigit:  pp.RequireDigit,
			RequireSymbol: pp.RequireSymbol,
		},
		Blacklist:     blacklist,
		DisableSignup: cfg.Server.DisableSignup,
		Metrics:       a.Metrics,
	})
	if err != nil {
		return nil, err
	}

	// Paso 6: HTTP
	authorizeLimiter, registerLimiter, err := a.limiters()
	if err != nil {
		return nil, err
	}
	a.Handler = router.New(router.Deps{
		Controllers:      controllers.New(a.Service, a.Issuer, a.Backend),
		Validator:        a.Service,
		Metrics:          a.Metrics,
		MaxBodyBytes:     cfg.Server.MaxBodyBytes,
		DisableSignup:    cfg.Server.DisableSignup,
		TrustProxy:       cfg.Server.TrustProxy,
		AuthorizeLimiter: authorizeLimiter,
		RegisterLimiter:  registerLimiter,
	})

	log.Info("app ready",
		logger.String("storage", a.Backend.Driver()),
		logger.String("rate", rateMode(cfg)),
	)
	return a, nil
}

func rateMode(cfg *config.Config) string {
	if !cfg.Rate.Enabled {
		return "off"
	}
	return cfg.Rate.Driver
}

// limiters devuelve nil, nil si el rate limit está apagado.
func (a *App) limiters() (rate.Limiter, rate.Limiter, error) {
	rc := a.Config.Rate
	if !rc.Enabled {
		return nil, nil, nil
	}
	switch rc.Driver {
	case "memory":
		return rate.NewMemoryLimiter(rc.Authorize.Limit, rc.Authorize.Window),
			rate.NewMemoryLimiter(rc.Register.Limit, rc.Register.Window), nil
	case "redis":
		r := a.Config.Storage.Redis
		client := rdb.NewClient(&rdb.Options{Addr: r.Addr, Password: r.Password, DB: r.DB})
		a.closers = append(a.closers, client.Close)
		prefix := r.Prefix + "rl:"
		return rate.NewRedisLimiter(client, prefix+"authorize:", rc.Authorize.Limit, rc.Authorize.Window),
			rate.NewRedisLimiter(client, prefix+"register:", rc.Register.Limit, rc.Register.Window), nil
	}
	return nil, nil, fmt.Errorf("rate: unknown driver %q", rc.Driver)
}

// Run sirve HTTP en addr hasta que ctx se cancele.
func (a *App) Run(ctx context.Context, addr string) error {
	s := a.Config.Server
	if addr == "" {
		addr = s.Addr
	}
	srv := server.New(server.Config{
		Addr:            addr,
		ReadTimeout:     s.ReadTimeout,
		WriteTimeout:    s.WriteTimeout,
		ShutdownTimeout: s.ShutdownTimeout,
	}, a.Handler)
	return srv.Run(ctx)
}

// Close libera en orden inverso.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
