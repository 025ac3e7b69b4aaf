// Package migrations embebe el DDL de la tabla de entidades para Postgres.
// Los archivos se aplican en orden lexicográfico; {{table}} se reemplaza
// por el nombre (ya sanitizado) de la tabla.
package migrations

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.sql
var FS embed.FS

// Statements devuelve el SQL de cada archivo con la tabla sustituida.
func Statements(table string) ([]string, error) {
	names, err := fs.Glob(FS, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, n := range names {
		b, err := FS.ReadFile(n)
		if err != nil {
			return nil, err
		}
		out = append(out, strings.ReplaceAll(string(b), "{{table}}", table))
	}
	return out, nil
}
