// Package backend elige e inicializa el motor de la tabla según la config.
package backend

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/lockpad/internal/config"
	"github.com/dropDatabas3/lockpad/internal/observability/logger"
	"github.com/dropDatabas3/lockpad/internal/store"
	"github.com/dropDatabas3/lockpad/internal/store/memory"
	"github.com/dropDatabas3/lockpad/internal/store/pg"
	"github.com/dropDatabas3/lockpad/internal/store/redis"
)

// Open crea el backend configurado. No crea el esquema: eso lo hace
// `lockpad table create` o el propio server al arrancar.
func Open(ctx context.Context, cfg *config.Config) (store.Backend, error) {
	s := cfg.Storage
	log := logger.From(ctx).With(logger.Component("store"), logger.String("driver", s.Driver))

	var (
		b   store.Backend
		err error
	)
	switch s.Driver {
	case "memory":
		b = memory.New()
	case "postgres":
		b, err = pg.New(ctx, pg.Config{
			DSN:             s.DSN,
			Table:           s.Table,
			MaxConns:        s.Postgres.MaxConns,
			MinConns:        s.Postgres.MinConns,
			ConnMaxLifetime: s.Postgres.ConnMaxLifetime,
			PageSize:        s.Postgres.PageSize,
		})
	case "redis":
		b = redis.New(redis.Config{
			Addr:     s.Redis.Addr,
			Password: s.Redis.Password,
			DB:       s.Redis.DB,
			Prefix:   s.Redis.Prefix,
		})
	default:
		err = fmt.Errorf("store: unknown driver %q", s.Driver)
	}
	if err != nil {
		log.Error("open store failed", logger.Err(err))
		return nil, err
	}
	log.Info("store opened")
	return b, nil
}
