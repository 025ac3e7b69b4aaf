package config

import (
	"errors"
	"os"
	"strings"
)

// ErrNoSigningKey: no hay clave privada configurada.
var ErrNoSigningKey = errors.New("config: keys.private (LOCKPAD_SECRET_KEY) is not set")

func looksLikePEM(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "-----BEGIN")
}

// readPEM interpreta v como PEM inline o como ruta.
func readPEM(v string) ([]byte, error) {
	if v == "" {
		return nil, nil
	}
	if looksLikePEM(v) {
		return []byte(v), nil
	}
	return os.ReadFile(v)
}

// KeyMaterial retorna los PEM de la privada y, si está configurada, de la pública.
func (c *Config) KeyMaterial() (private, public []byte, err error) {
	if strings.TrimSpace(c.Keys.Private) == "" {
		return nil, nil, ErrNoSigningKey
	}
	if private, err = readPEM(c.Keys.Private); err != nil {
		return nil, nil, err
	}
	if public, err = readPEM(c.Keys.Public); err != nil {
		return nil, nil, err
	}
	return private, public, nil
}
