// Package memory implementa store.Backend en proceso. Sirve para
// desarrollo y tests; no persiste nada.
package memory

import (
	"context"
	"iter"
	"slices"
	"strings"
	"sync"

	"github.com/dropDatabas3/lockpad/internal/entity"
	"github.com/dropDatabas3/lockpad/internal/store"
)

type Table struct {
	mu    sync.RWMutex
	parts map[string]map[string][]byte // pk -> sk -> data
}

var _ store.Backend = (*Table)(nil)

func New() *Table {
	return &Table{parts: make(map[string]map[string][]byte)}
}

func (t *Table) Driver() string { return "memory" }

func (t *Table) Get(_ context.Context, addr entity.Address) ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	data, ok := t.parts[addr.PartitionKey][addr.SortKey]
	if !ok {
		return nil, store.ErrNotFound
	}
	return slices.Clone(data), nil
}

func (t *Table) Put(_ context.Context, addr entity.Address, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.set(addr, data)
	return nil
}

func (t *Table) Insert(_ context.Context, addr entity.Address, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.parts[addr.PartitionKey][addr.SortKey]; ok {
		return store.ErrConflict
	}
	t.set(addr, data)
	return nil
}

func (t *Table) set(addr entity.Address, data []byte) {
	p, ok := t.parts[addr.PartitionKey]
	if !ok {
		p = make(map[string][]byte)
		t.parts[addr.PartitionKey] = p
	}
	p[addr.SortKey] = slices.Clone(data)
}

func (t *Table) Delete(_ context.Context, addr entity.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok := t.parts[addr.PartitionKey]; ok {
		delete(p, addr.SortKey)
		if len(p) == 0 {
			delete(t.parts, addr.PartitionKey)
		}
	}
	return nil
}

// Query toma una foto de la partición al empezar cada recorrido.
func (t *Table) Query(ctx context.Context, pk string) iter.Seq2[store.Record, error] {
	return func(yield func(store.Record, error) bool) {
		t.mu.RLock()
		p := t.parts[pk]
		snap := make([]store.Record, 0, len(p))
		for sk, data := range p {
			snap = append(snap, store.Record{
				Address: entity.Address{PartitionKey: pk, SortKey: sk},
				Data:    slices.Clone(data),
			})
		}
		t.mu.RUnlock()

		slices.SortFunc(snap, func(a, b store.Record) int {
			return strings.Compare(a.SortKey, b.SortKey)
		})
		for _, rec := range snap {
			if err := ctx.Err(); err != nil {
				yield(store.Record{}, store.Wrap("memory", "query", err))
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

func (t *Table) CreateTable(context.Context) error { return nil }

func (t *Table) Wipe(context.Context) error {
	t.mu.Lock()
	t.parts = make(map[string]map[string][]byte)
	t.mu.Unlock()
	return nil
}

func (t *Table) Ping(context.Context) error { return nil }
func (t *Table) Close() error               { return nil }

// Len cuenta items; útil en tests.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, p := range t.parts {
		n += len(p)
	}
	return n
}
