// Package redis implementa store.Backend sobre Redis: un HASH por
// partición (campo = sk) y un ZSET paralelo para recorrer los sk en
// orden lexicográfico.
package redis

import (
	"context"
	"errors"
	"iter"

	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/lockpad/internal/entity"
	"github.com/dropDatabas3/lockpad/internal/store"
)

const driver = "redis"

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // default "lockpad:"
	PageSize int64  // default 100
}

type Table struct {
	c        rdb.UniversalClient
	prefix   string
	pageSize int64
}

var _ store.Backend = (*Table)(nil)

func New(cfg Config) *Table {
	c := rdb.NewClient(&rdb.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return NewWithClient(c, cfg.Prefix, cfg.PageSize)
}

func NewWithClient(c rdb.UniversalClient, prefix string, pageSize int64) *Table {
	if prefix == "" {
		prefix = "lockpad:"
	}
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Table{c: c, prefix: prefix, pageSize: pageSize}
}

func (t *Table) Driver() string { return driver }

func (t *Table) hashKey(pk string) string  { return t.prefix + "p:" + pk }
func (t *Table) indexKey(pk string) string { return t.prefix + "i:" + pk }

func (t *Table) Ping(ctx context.Context) error {
	return store.Wrap(driver, "ping", t.c.Ping(ctx).Err())
}

func (t *Table) Close() error { return t.c.Close() }

// CreateTable sólo verifica la conexión: las claves se crean al escribir.
func (t *Table) CreateTable(ctx context.Context) error { return t.Ping(ctx) }

// Wipe borra todas las claves bajo el prefijo.
func (t *Table) Wipe(ctx context.Context) error {
	it := t.c.Scan(ctx, 0, t.prefix+"*", 500).Iterator()
	var batch []string
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := t.c.Del(ctx, batch...).Err()
		batch = batch[:0]
		return err
	}
	for it.Next(ctx) {
		batch = append(batch, it.Val())
		if len(batch) >= 500 {
			if err := flush(); err != nil {
				return store.Wrap(driver, "wipe", err)
			}
		}
	}
	if err := it.Err(); err != nil {
		return store.Wrap(driver, "wipe", err)
	}
	return store.Wrap(driver, "wipe", flush())
}

func (t *Table) Get(ctx context.Context, addr entity.Address) ([]byte, error) {
	b, err := t.c.HGet(ctx, t.hashKey(addr.PartitionKey), addr.SortKey).Bytes()
	if errors.Is(err, rdb.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.Wrap(driver, "get", err)
	}
	return b, nil
}

func (t *Table) Put(ctx context.Context, addr entity.Address, data []byte) error {
	_, err := t.c.TxPipelined(ctx, func(p rdb.Pipeliner) error {
		p.HSet(ctx, t.hashKey(addr.PartitionKey), addr.SortKey, data)
		p.ZAdd(ctx, t.indexKey(addr.PartitionKey), rdb.Z{Member: addr.SortKey})
		return nil
	})
	return store.Wrap(driver, "put", err)
}

// Insert decide con HSETNX dentro de MULTI; el ZADD repetido es inocuo.
func (t *Table) Insert(ctx context.Context, addr entity.Address, data []byte) error {
	var created *rdb.BoolCmd
	_, err := t.c.TxPipelined(ctx, func(p rdb.Pipeliner) error {
		created = p.HSetNX(ctx, t.hashKey(addr.PartitionKey), addr.SortKey, data)
		p.ZAddNX(ctx, t.indexKey(addr.PartitionKey), rdb.Z{Member: addr.SortKey})
		return nil
	})
	if err != nil {
		return store.Wrap(driver, "insert", err)
	}
	if !created.Val() {
		return store.ErrConflict
	}
	return nil
}

func (t *Table) Delete(ctx context.Context, addr entity.Address) error {
	_, err := t.c.TxPipelined(ctx, func(p rdb.Pipeliner) error {
		p.HDel(ctx, t.hashKey(addr.PartitionKey), addr.SortKey)
		p.ZRem(ctx, t.indexKey(addr.PartitionKey), addr.SortKey)
		return nil
	})
	return store.Wrap(driver, "delete", err)
}

// Query pagina el índice con ZRANGE BYLEX y trae los payloads con HMGET.
func (t *Table) Query(ctx context.Context, pk string) iter.Seq2[store.Record, error] {
	return func(yield func(store.Record, error) bool) {
		start := "-"
		for {
			sks, err := t.c.ZRangeArgs(ctx, rdb.ZRangeArgs{
				Key:   t.indexKey(pk),
				Start: start,
				Stop:  "+",
				ByLex: true,
				Count: t.pageSize,
			}).Result()
			if err != nil {
				yield(store.Record{}, store.Wrap(driver, "query", err))
				return
			}
			if len(sks) == 0 {
				return
			}
			vals, err := t.c.HMGet(ctx, t.hashKey(pk), sks...).Result()
			if err != nil {
				yield(store.Record{}, store.Wrap(driver, "query", err))
				return
			}
			for i, v := range vals {
				s, ok := v.(string)
				if !ok {
					// borrado entre ZRANGE y HMGET
					continue
				}
				rec := store.Record{
					Address: entity.Address{PartitionKey: pk, SortKey: sks[i]},
					Data:    []byte(s),
				}
				if !yield(rec, nil) {
					return
				}
			}
			if int64(len(sks)) < t.pageSize {
				return
			}
			start = "(" + sks[len(sks)-1]
		}
	}
}
