// Package entity deriva direcciones (partition key, sort key) de los
// registros de identidad dentro de una tabla única clave-valor.
//
// Dos estrategias:
//
//	Unique: pk = PREFIX        sk = PREFIX#valor
//	Owned:  pk = PREFIX#owner  sk = PREFIX#objeto
//
// Las direcciones se calculan bajo demanda y nunca se persisten aparte.
package entity

import (
	"errors"
	"fmt"
	"strings"
)

// Separator une el prefijo con los valores de la clave.
const Separator = "#"

var (
	ErrInvalidPrefix   = errors.New("entity: invalid prefix")
	ErrInvalidKeyPart  = errors.New("entity: invalid key part")
	ErrArity           = errors.New("entity: wrong number of key values")
	ErrForeignAddress  = errors.New("entity: address does not belong to scheme")
	ErrUnknownEntity   = errors.New("entity: unknown entity type")
	ErrDuplicateEntity = errors.New("entity: duplicate registration")
)

// Strategy elige cómo se reparte una entidad entre particiones.
type Strategy int

const (
	// Unique: todas las instancias comparten la partición PREFIX.
	Unique Strategy = iota + 1
	// Owned: una partición por dueño (PREFIX#owner).
	Owned
)

func (s Strategy) String() string {
	switch s {
	case Unique:
		return "unique"
	case Owned:
		return "owned"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// arity es la cantidad de valores que exige la estrategia.
func (s Strategy) arity() int {
	if s == Owned {
		return 2
	}
	return 1
}

// Address es la clave primaria compuesta de un item.
type Address struct {
	PartitionKey string `json:"pk"`
	SortKey      string `json:"sk"`
}

func (a Address) String() string { return a.PartitionKey + " / " + a.SortKey }

// Query apunta a todos los items de una partición cuyo sk empieza con
// SortKeyPrefix. Los resultados se leen en orden ascendente de sk.
type Query struct {
	PartitionKey  string
	SortKeyPrefix string
}

// Matches indica si la dirección cae dentro del scope.
func (q Query) Matches(a Address) bool {
	return a.PartitionKey == q.PartitionKey && strings.HasPrefix(a.SortKey, q.SortKeyPrefix)
}

// Entity es la capacidad que implementa cada tipo persistido.
type Entity interface {
	KeyScheme() Scheme
	KeyValues() []string
}

// DeriveAddress calcula la dirección de una instancia. No tiene efectos.
func DeriveAddress(e Entity) (Address, error) {
	return e.KeyScheme().Key(e.KeyValues()...)
}

func validPart(v string) error {
	if v == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKeyPart)
	}
	if strings.Contains(v, Separator) {
		return fmt.Errorf("%w: %q contains %q", ErrInvalidKeyPart, v, Separator)
	}
	return nil
}

// ValidKeyPart reporta si v puede usarse como valor de clave.
func ValidKeyPart(v string) bool { return validPart(v) == nil }
