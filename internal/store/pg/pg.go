// Package pg implementa store.Backend sobre una tabla Postgres
// (pk, sk, data JSONB) usando pgxpool.
package pg

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/lockpad/internal/entity"
	"github.com/dropDatabas3/lockpad/internal/observability/logger"
	"github.com/dropDatabas3/lockpad/internal/store"
	migrations "github.com/dropDatabas3/lockpad/migrations/postgres"
)

const driver = "postgres"

// Config del adapter.
type Config struct {
	DSN             string
	Table           string // default "lockpad"
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	PageSize        int // filas por página en Query; default 100
}

type Table struct {
	pool     *pgxpool.Pool
	table    string // identificador ya sanitizado
	pageSize int
}

var _ store.Backend = (*Table)(nil)

// New abre el pool. Un ping fallido al arrancar sólo se loguea: el
// servicio puede levantar antes que la base.
func New(ctx context.Context, cfg Config) (*Table, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, store.Wrap(driver, "parse dsn", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, store.Wrap(driver, "connect", err)
	}

	log := logger.From(ctx).With(logger.Component("store.pg"))
	if err := pool.Ping(ctx); err != nil {
		log.Warn("pg pool startup ping failed", logger.Err(err))
	} else {
		log.Info("pg pool ready", logger.Int("max_conns", int(pcfg.MaxConns)))
	}
	return NewWithPool(pool, cfg.Table, cfg.PageSize), nil
}

// NewWithPool usa un pool existente.
func NewWithPool(pool *pgxpool.Pool, table string, pageSize int) *Table {
	if table == "" {
		table = "lockpad"
	}
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Table{
		pool:     pool,
		table:    pgx.Identifier{table}.Sanitize(),
		pageSize: pageSize,
	}
}

func (t *Table) Driver() string { return driver }

func (t *Table) Pool() *pgxpool.Pool { return t.pool }

func (t *Table) Ping(ctx context.Context) error {
	return store.Wrap(driver, "ping", t.pool.Ping(ctx))
}

func (t *Table) Close() error {
	t.pool.Close()
	return nil
}

// CreateTable aplica el DDL embebido; es idempotente.
func (t *Table) CreateTable(ctx context.Context) error {
	stmts, err := migrations.Statements(t.table)
	if err != nil {
		return store.Wrap(driver, "create table", err)
	}
	for _, q := range stmts {
		if _, err := t.pool.Exec(ctx, q); err != nil {
			return store.Wrap(driver, "create table", err)
		}
	}
	return nil
}

func (t *Table) Wipe(ctx context.Context) error {
	_, err := t.pool.Exec(ctx, "TRUNCATE "+t.table)
	return store.Wrap(driver, "wipe", err)
}

func (t *Table) Get(ctx context.Context, addr entity.Address) ([]byte, error) {
	var data []byte
	err := t.pool.QueryRow(ctx,
		"SELECT data FROM "+t.table+" WHERE pk = $1 AND sk = $2",
		addr.PartitionKey, addr.SortKey,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.Wrap(driver, "get", err)
	}
	return data, nil
}

func (t *Table) Put(ctx context.Context, addr entity.Address, data []byte) error {
	_, err := t.pool.Exec(ctx, `
		INSERT INTO `+t.table+` (pk, sk, data) VALUES ($1, $2, $3)
		ON CONFLICT (pk, sk) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		addr.PartitionKey, addr.SortKey, string(data),
	)
	return store.Wrap(driver, "put", err)
}

func (t *Table) Insert(ctx context.Context, addr entity.Address, data []byte) error {
	tag, err := t.pool.Exec(ctx, `
		INSERT INTO `+t.table+` (pk, sk, data) VALUES ($1, $2, $3)
		ON CONFLICT (pk, sk) DO NOTHING`,
		addr.PartitionKey, addr.SortKey, string(data),
	)
	if err != nil {
		return store.Wrap(driver, "insert", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrConflict
	}
	return nil
}

func (t *Table) Delete(ctx context.Context, addr entity.Address) error {
	_, err := t.pool.Exec(ctx,
		"DELETE FROM "+t.table+" WHERE pk = $1 AND sk = $2",
		addr.PartitionKey, addr.SortKey,
	)
	return store.Wrap(driver, "delete", err)
}

// Query pagina por keyset (sk > último visto) para no mantener un cursor
// abierto mientras el consumidor procesa.
func (t *Table) Query(ctx context.Context, pk string) iter.Seq2[store.Record, error] {
	q := "SELECT sk, data FROM " + t.table + " WHERE pk = $1 AND sk > $2 ORDER BY sk LIMIT $3"
	return func(yield func(store.Record, error) bool) {
		after := ""
		for {
			page, err := t.page(ctx, q, pk, after)
			if err != nil {
				yield(store.Record{}, err)
				return
			}
			for _, rec := range page {
				if !yield(rec, nil) {
					return
				}
			}
			if len(page) < t.pageSize {
				return
			}
			after = page[len(page)-1].SortKey
		}
	}
}

func (t *Table) page(ctx context.Context, q, pk, after string) ([]store.Record, error) {
	rows, err := t.pool.Query(ctx, q, pk, after, t.pageSize)
	if err != nil {
		return nil, store.Wrap(driver, "query", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.Record, error) {
		rec := store.Record{Address: entity.Address{PartitionKey: pk}}
		err := row.Scan(&rec.SortKey, &rec.Data)
		return rec, err
	})
	if err != nil {
		return nil, store.Wrap(driver, "query", err)
	}
	return out, nil
}
