package storetest

import (
	"context"
	"iter"
	"sync"

	"github.com/dropDatabas3/lockpad/internal/entity"
	"github.com/dropDatabas3/lockpad/internal/store"
)

// Call es una operación observada por Recorder.
// Insert se registra como "put" con IfAbsent en true.
type Call struct {
	Op       string
	Addr     entity.Address
	IfAbsent bool
}

// Recorder envuelve un Table y registra las escrituras y lecturas.
// Fail, si no es nil, se devuelve en lugar de delegar.
type Recorder struct {
	store.Table

	mu    sync.Mutex
	calls []Call
	Fail  error
}

func NewRecorder(t store.Table) *Recorder { return &Recorder{Table: t} }

func (r *Recorder) record(op string, a entity.Address) error {
	return r.recordCall(Call{Op: op, Addr: a})
}

func (r *Recorder) recordCall(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	return r.Fail
}

func (r *Recorder) Get(ctx context.Context, a entity.Address) ([]byte, error) {
	if err := r.record("get", a); err != nil {
		return nil, err
	}
	return r.Table.Get(ctx, a)
}

func (r *Recorder) Put(ctx context.Context, a entity.Address, data []byte) error {
	if err := r.record("put", a); err != nil {
		return err
	}
	return r.Table.Put(ctx, a, data)
}

func (r *Recorder) Insert(ctx context.Context, a entity.Address, data []byte) error {
	if err := r.recordCall(Call{Op: "put", Addr: a, IfAbsent: true}); err != nil {
		return err
	}
	return r.Table.Insert(ctx, a, data)
}

func (r *Recorder) Delete(ctx context.Context, a entity.Address) error {
	if err := r.record("delete", a); err != nil {
		return err
	}
	return r.Table.Delete(ctx, a)
}

func (r *Recorder) Query(ctx context.Context, pk string) iter.Seq2[store.Record, error] {
	if err := r.record("query", entity.Address{PartitionKey: pk}); err != nil {
		return func(yield func(store.Record, error) bool) { yield(store.Record{}, err) }
	}
	return r.Table.Query(ctx, pk)
}

// Calls retorna las operaciones observadas, opcionalmente filtradas por op.
func (r *Recorder) Calls(ops ...string) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, c := range r.calls {
		if len(ops) == 0 || contains(ops, c.Op) {
			out = append(out, c)
		}
	}
	return out
}

// Writes son las operaciones que modifican la tabla.
func (r *Recorder) Writes() []Call { return r.Calls("put", "delete") }

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
