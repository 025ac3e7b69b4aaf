package entity

import (
	"fmt"
	"strings"
)

// Scheme es el esquema de claves de un tipo de entidad.
type Scheme struct {
	prefix   string
	strategy Strategy
}

// NewUnique crea un esquema Unique para prefix.
func NewUnique(prefix string) (Scheme, error) { return newScheme(prefix, Unique) }

// NewOwned crea un esquema Owned para prefix.
func NewOwned(prefix string) (Scheme, error) { return newScheme(prefix, Owned) }

// MustUnique y MustOwned son para esquemas declarados como variables de paquete.
func MustUnique(prefix string) Scheme { return must(NewUnique(prefix)) }
func MustOwned(prefix string) Scheme  { return must(NewOwned(prefix)) }

func must(s Scheme, err error) Scheme {
	if err != nil {
		panic(err)
	}
	return s
}

func newScheme(prefix string, st Strategy) (Scheme, error) {
	if prefix == "" || strings.Contains(prefix, Separator) {
		return Scheme{}, fmt.Errorf("%w: %q", ErrInvalidPrefix, prefix)
	}
	if st != Unique && st != Owned {
		return Scheme{}, fmt.Errorf("entity: unsupported strategy %v", st)
	}
	return Scheme{prefix: prefix, strategy: st}, nil
}

func (s Scheme) Prefix() string     { return s.prefix }
func (s Scheme) Strategy() Strategy { return s.strategy }

// IsZero reporta un Scheme sin inicializar.
func (s Scheme) IsZero() bool { return s.prefix == "" }

func (s Scheme) join(v string) string { return s.prefix + Separator + v }

// Key arma la dirección a partir de los valores de clave:
// Unique recibe (valor); Owned recibe (owner, objeto).
func (s Scheme) Key(values ...string) (Address, error) {
	if s.IsZero() {
		return Address{}, ErrInvalidPrefix
	}
	if len(values) != s.strategy.arity() {
		return Address{}, fmt.Errorf("%w: %s %q wants %d, got %d",
			ErrArity, s.strategy, s.prefix, s.strategy.arity(), len(values))
	}
	for _, v := range values {
		if err := validPart(v); err != nil {
			return Address{}, err
		}
	}
	if s.strategy == Owned {
		return Address{PartitionKey: s.join(values[0]), SortKey: s.join(values[1])}, nil
	}
	return Address{PartitionKey: s.prefix, SortKey: s.join(values[0])}, nil
}

// Scope arma la consulta que lista todas las instancias de una partición.
// Unique no recibe namespace; Owned recibe el owner.
func (s Scheme) Scope(namespace ...string) (Query, error) {
	if s.IsZero() {
		return Query{}, ErrInvalidPrefix
	}
	want := s.strategy.arity() - 1
	if len(namespace) != want {
		return Query{}, fmt.Errorf("%w: scope of %s %q wants %d, got %d",
			ErrArity, s.strategy, s.prefix, want, len(namespace))
	}
	q := Query{PartitionKey: s.prefix, SortKeyPrefix: s.prefix + Separator}
	if s.strategy == Owned {
		if err := validPart(namespace[0]); err != nil {
			return Query{}, err
		}
		q.PartitionKey = s.join(namespace[0])
	}
	return q, nil
}

// Owns reporta si la dirección fue generada por este esquema.
func (s Scheme) Owns(a Address) bool {
	_, err := s.Values(a)
	return err == nil
}

// Values recupera los valores de clave desde una dirección; es la
// inversa de Key.
func (s Scheme) Values(a Address) ([]string, error) {
	head := s.prefix + Separator
	obj, ok := strings.CutPrefix(a.SortKey, head)
	if !ok || validPart(obj) != nil {
		return nil, fmt.Errorf("%w: %s", ErrForeignAddress, a)
	}
	switch s.strategy {
	case Unique:
		if a.PartitionKey != s.prefix {
			return nil, fmt.Errorf("%w: %s", ErrForeignAddress, a)
		}
		return []string{obj}, nil
	default:
		owner, ok := strings.CutPrefix(a.PartitionKey, head)
		if !ok || validPart(owner) != nil {
			return nil, fmt.Errorf("%w: %s", ErrForeignAddress, a)
		}
		return []string{owner, obj}, nil
	}
}
