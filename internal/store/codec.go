package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	"github.com/dropDatabas3/lockpad/internal/entity"
)

// ErrCodec: el payload guardado no decodifica al tipo pedido.
var ErrCodec = errors.New("store: codec")

// Load lee y decodifica la entidad en addr.
func Load[T any](ctx context.Context, t Table, addr entity.Address) (T, error) {
	var v T
	data, err := t.Get(ctx, addr)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%w: %s: %v", ErrCodec, addr, err)
	}
	return v, nil
}

// Save deriva la dirección de e y la escribe (Put).
func Save(ctx context.Context, t Table, e entity.Entity) (entity.Address, error) {
	return write(ctx, e, t.Put)
}

// Create deriva la dirección de e y la inserta; ErrConflict si existe.
func Create(ctx context.Context, t Table, e entity.Entity) (entity.Address, error) {
	return write(ctx, e, t.Insert)
}

func write(ctx context.Context, e entity.Entity, fn func(context.Context, entity.Address, []byte) error) (entity.Address, error) {
	addr, err := entity.DeriveAddress(e)
	if err != nil {
		return entity.Address{}, err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return addr, fmt.Errorf("%w: %s: %v", ErrCodec, addr, err)
	}
	return addr, fn(ctx, addr, data)
}

// Scan recorre los items de una consulta de scope y los decodifica.
// Items de la partición fuera del prefijo se saltean.
func Scan[T any](ctx context.Context, t Table, q entity.Query) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for rec, err := range t.Query(ctx, q.PartitionKey) {
			var v T
			if err != nil {
				yield(v, err)
				return
			}
			if !q.Matches(rec.Address) {
				continue
			}
			if err := json.Unmarshal(rec.Data, &v); err != nil {
				yield(v, fmt.Errorf("%w: %s: %v", ErrCodec, rec.Address, err))
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Collect junta hasta limit elementos (limit <= 0 => todos).
func Collect[T any](seq iter.Seq2[T, error], limit int) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
