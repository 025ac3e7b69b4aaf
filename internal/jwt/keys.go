// Package jwt emite y valida los bearer tokens RS256 del servicio y
// publica la clave pública como JWK/JWKS.
package jwt

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// ErrKeyFormat: el material de clave no se puede interpretar.
var ErrKeyFormat = errors.New("jwt: invalid key format")

// MinRSABits es el tamaño mínimo aceptado para generar claves.
const MinRSABits = 2048

// PublicKey conserva el PEM original junto a la clave parseada.
// Es inmutable una vez construida.
type PublicKey struct {
	raw []byte
	key *rsa.PublicKey
}

func (k *PublicKey) RSA() *rsa.PublicKey { return k.key }

// PEM retorna una copia del PEM con el que se construyó la clave
// (o su codificación PKCS#1 si vino de un JWK).
func (k *PublicKey) PEM() []byte { return bytes.Clone(k.raw) }

// Equal compara módulo y exponente.
func (k *PublicKey) Equal(other *PublicKey) bool {
	if k == nil || other == nil {
		return k == other
	}
	return k.key.Equal(other.key)
}

func newPublicKey(pub *rsa.PublicKey) *PublicKey {
	return &PublicKey{
		raw: pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: x509.MarshalPKCS1PublicKey(pub)}),
		key: pub,
	}
}

// ParsePEM lee una clave pública RSA. Acepta PKCS#1 ("RSA PUBLIC KEY") y
// PKIX ("PUBLIC KEY").
func ParsePEM(data []byte) (*PublicKey, error) {
	if block, _ := pem.Decode(data); block == nil {
		return nil, fmt.Errorf("%w: no PEM block", ErrKeyFormat)
	}
	pub, err := jwtv5.ParseRSAPublicKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFormat, err)
	}
	return &PublicKey{raw: bytes.Clone(data), key: pub}, nil
}

// ParsePrivatePEM lee una clave privada RSA en PKCS#1 o PKCS#8.
func ParsePrivatePEM(data []byte) (*rsa.PrivateKey, error) {
	if block, _ := pem.Decode(data); block == nil {
		return nil, fmt.Errorf("%w: no PEM block", ErrKeyFormat)
	}
	priv, err := jwtv5.ParseRSAPrivateKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFormat, err)
	}
	if err := priv.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFormat, err)
	}
	return priv, nil
}

// GenerateRSA crea un par nuevo de al menos MinRSABits.
func GenerateRSA(bits int) (*rsa.PrivateKey, error) {
	if bits < MinRSABits {
		return nil, fmt.Errorf("jwt: rsa key size %d below %d", bits, MinRSABits)
	}
	return rsa.GenerateKey(rand.Reader, bits)
}

// EncodeKeyPair serializa la privada como PKCS#8 ("PRIVATE KEY") y la
// pública como PKCS#1 ("RSA PUBLIC KEY").
func EncodeKeyPair(priv *rsa.PrivateKey) (privPEM, pubPEM []byte, err error) {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, nil, fmt.Errorf("jwt: marshal private key: %w", err)
	}
	privPEM = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	pubPEM = newPublicKey(&priv.PublicKey).PEM()
	return privPEM, pubPEM, nil
}

// KeyPair es la clave de firma activa. Hay una sola (kid "1"), sin rotación.
type KeyPair struct {
	Private *rsa.PrivateKey
	Public  *PublicKey
}

// LoadKeyPair arma el par desde PEMs. Si pubPEM está vacío se deriva de
// la privada; si no, ambas mitades tienen que coincidir.
func LoadKeyPair(privPEM, pubPEM []byte) (*KeyPair, error) {
	priv, err := ParsePrivatePEM(privPEM)
	if err != nil {
		return nil, fmt.Errorf("private key: %w", err)
	}
	if len(bytes.TrimSpace(pubPEM)) == 0 {
		return &KeyPair{Private: priv, Public: newPublicKey(&priv.PublicKey)}, nil
	}
	pub, err := ParsePEM(pubPEM)
	if err != nil {
		return nil, fmt.Errorf("public key: %w", err)
	}
	if !priv.PublicKey.Equal(pub.RSA()) {
		return nil, fmt.Errorf("%w: public key does not match private key", ErrKeyFormat)
	}
	return &KeyPair{Private: priv, Public: pub}, nil
}

// NewKeyPair envuelve una privada ya parseada.
func NewKeyPair(priv *rsa.PrivateKey) *KeyPair {
	return &KeyPair{Private: priv, Public: newPublicKey(&priv.PublicKey)}
}
