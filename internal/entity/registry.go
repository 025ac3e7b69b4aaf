package entity

import (
	"fmt"
	"sort"
)

// Registration asocia un nombre de tipo con su esquema.
type Registration struct {
	Type   string
	Scheme Scheme
}

// Registry es la tabla inmutable de tipos conocidos. Se arma una vez al
// arrancar y se comparte sin locks.
type Registry struct {
	byType map[string]Scheme
	types  []string
}

// NewRegistry valida y congela las registraciones. Falla ante tipos o
// prefijos repetidos.
func NewRegistry(regs ...Registration) (*Registry, error) {
	r := &Registry{byType: make(map[string]Scheme, len(regs))}
	prefixes := make(map[string]string, len(regs))
	for _, reg := range regs {
		if reg.Type == "" {
			return nil, fmt.Errorf("%w: empty type name", ErrUnknownEntity)
		}
		if reg.Scheme.IsZero() {
			return nil, fmt.Errorf("%w: type %q", ErrInvalidPrefix, reg.Type)
		}
		if _, dup := r.byType[reg.Type]; dup {
			return nil, fmt.Errorf("%w: type %q", ErrDuplicateEntity, reg.Type)
		}
		if other, dup := prefixes[reg.Scheme.Prefix()]; dup {
			return nil, fmt.Errorf("%w: prefix %q used by %q and %q",
				ErrDuplicateEntity, reg.Scheme.Prefix(), other, reg.Type)
		}
		prefixes[reg.Scheme.Prefix()] = reg.Type
		r.byType[reg.Type] = reg.Scheme
		r.types = append(r.types, reg.Type)
	}
	sort.Strings(r.types)
	return r, nil
}

// Scheme retorna el esquema del tipo.
func (r *Registry) Scheme(typ string) (Scheme, error) {
	s, ok := r.byType[typ]
	if !ok {
		return Scheme{}, fmt.Errorf("%w: %q", ErrUnknownEntity, typ)
	}
	return s, nil
}

// FormatKey arma la dirección de lookup de un tipo registrado.
func (r *Registry) FormatKey(typ string, values ...string) (Address, error) {
	s, err := r.Scheme(typ)
	if err != nil {
		return Address{}, err
	}
	return s.Key(values...)
}

// ScopedQuery arma la consulta de partición de un tipo registrado.
func (r *Registry) ScopedQuery(typ string, namespace ...string) (Query, error) {
	s, err := r.Scheme(typ)
	if err != nil {
		return Query{}, err
	}
	return s.Scope(namespace...)
}

// Resolve identifica a qué tipo pertenece una dirección.
func (r *Registry) Resolve(a Address) (string, error) {
	for _, typ := range r.types {
		if r.byType[typ].Owns(a) {
			return typ, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownEntity, a)
}

// Types lista los tipos registrados en orden alfabético.
func (r *Registry) Types() []string {
	out := make([]string, len(r.types))
	copy(out, r.types)
	return out
}
