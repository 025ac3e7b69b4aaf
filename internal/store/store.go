// Package store define el contrato de la tabla única (pk, sk) -> payload
// sobre la que se persisten las entidades de identidad. Los motores
// concretos viven en memory, pg y redis.
package store

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/dropDatabas3/lockpad/internal/entity"
)

var (
	// ErrNotFound: no hay item en esa dirección.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict: Insert sobre una dirección ocupada.
	ErrConflict = errors.New("store: item already exists")
)

// Record es un item leído de la tabla.
type Record struct {
	entity.Address
	Data []byte
}

// Table es el acceso por clave primaria compuesta. Las implementaciones
// son seguras para uso concurrente.
type Table interface {
	// Get retorna el payload o ErrNotFound.
	Get(ctx context.Context, addr entity.Address) ([]byte, error)
	// Put crea o reemplaza.
	Put(ctx context.Context, addr entity.Address, data []byte) error
	// Insert crea sólo si la dirección está libre; si no, ErrConflict.
	Insert(ctx context.Context, addr entity.Address, data []byte) error
	// Delete es idempotente.
	Delete(ctx context.Context, addr entity.Address) error
	// Query recorre una partición en orden ascendente de sk. La secuencia
	// es perezosa y se puede recorrer más de una vez.
	Query(ctx context.Context, partitionKey string) iter.Seq2[Record, error]
}

// Backend agrega las operaciones administrativas del motor.
type Backend interface {
	Table
	// CreateTable crea el esquema si no existe.
	CreateTable(ctx context.Context) error
	// Wipe borra todos los items.
	Wipe(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
	// Driver es el nombre del motor ("memory", "postgres", "redis").
	Driver() string
}

// Error envuelve una falla del motor. No incluye ErrNotFound ni ErrConflict,
// que son resultados esperados.
type Error struct {
	Driver string
	Op     string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Driver, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap arma un *Error; nil si err es nil.
func Wrap(driver, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Driver: driver, Op: op, Err: err}
}

// IsStorage reporta si err es una falla del motor.
func IsStorage(err error) bool {
	var se *Error
	return errors.As(err, &se)
}
