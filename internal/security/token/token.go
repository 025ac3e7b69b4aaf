// Package token genera valores opacos aleatorios (secretos de API key,
// request ids).
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// APIKeySecretPrefix marca los secretos de API key para que sean
// reconocibles en logs de terceros y escáneres de secretos.
const APIKeySecretPrefix = "lpk_"

// Opaque retorna nBytes aleatorios en base64url sin padding.
func Opaque(nBytes int) (string, error) {
	if nBytes <= 0 {
		return "", fmt.Errorf("token: invalid length %d", nBytes)
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// APIKeySecret genera un secreto de 256 bits con prefijo.
func APIKeySecret() (string, error) {
	s, err := Opaque(32)
	if err != nil {
		return "", err
	}
	return APIKeySecretPrefix + s, nil
}
