package jwt

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
)

const (
	// KeyID es el kid fijo de la única clave publicada.
	KeyID = "1"

	algRS256 = "RS256"
	ktyRSA   = "RSA"
	useSig   = "sig"
)

// JWK es la representación pública de una clave RSA.
type JWK struct {
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use,omitempty"`
	Kid string `json:"kid,omitempty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKS es el documento de descubrimiento ({"keys":[...]}).
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK exporta la clave con kid "1", uso "sig" y alg RS256.
func (k *PublicKey) JWK() JWK {
	return JWK{
		Kty: ktyRSA,
		Alg: algRS256,
		Use: useSig,
		Kid: KeyID,
		N:   base64.RawURLEncoding.EncodeToString(k.key.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(k.key.E)).Bytes()),
	}
}

// ParseJWK acepta un JWK suelto o un set; de un set retorna la primera clave.
func ParseJWK(data []byte) (*PublicKey, error) {
	keys, err := ParseJWKS(data)
	if err != nil {
		return nil, err
	}
	return keys[0], nil
}

// ParseJWKS acepta un JWK suelto o un set y valida todas sus entradas.
// Cada entrada tiene que ser kty=RSA, alg=RS256.
func ParseJWKS(data []byte) ([]*PublicKey, error) {
	var probe struct {
		Keys json.RawMessage `json:"keys"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFormat, err)
	}

	var entries []JWK
	if probe.Keys != nil {
		if err := json.Unmarshal(probe.Keys, &entries); err != nil {
			return nil, fmt.Errorf("%w: keys: %v", ErrKeyFormat, err)
		}
		if len(entries) == 0 {
			return nil, fmt.Errorf("%w: empty key set", ErrKeyFormat)
		}
	} else {
		var one JWK
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyFormat, err)
		}
		entries = []JWK{one}
	}

	out := make([]*PublicKey, 0, len(entries))
	for i, e := range entries {
		pub, err := e.publicKey()
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		out = append(out, newPublicKey(pub))
	}
	return out, nil
}

func (j JWK) publicKey() (*rsa.PublicKey, error) {
	if j.Kty != ktyRSA {
		return nil, fmt.Errorf("%w: kty %q", ErrKeyFormat, j.Kty)
	}
	if j.Alg != algRS256 {
		return nil, fmt.Errorf("%w: alg %q", ErrKeyFormat, j.Alg)
	}
	if j.Use != "" && j.Use != useSig {
		return nil, fmt.Errorf("%w: use %q", ErrKeyFormat, j.Use)
	}
	nb, err := base64.RawURLEncoding.DecodeString(j.N)
	if err != nil || len(nb) == 0 {
		return nil, fmt.Errorf("%w: modulus", ErrKeyFormat)
	}
	eb, err := base64.RawURLEncoding.DecodeString(j.E)
	if err != nil || len(eb) == 0 || len(eb) > 4 {
		return nil, fmt.Errorf("%w: exponent", ErrKeyFormat)
	}
	e := new(big.Int).SetBytes(eb)
	if e.Int64() < 3 {
		return nil, fmt.Errorf("%w: exponent", ErrKeyFormat)
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: int(e.Int64())}, nil
}

// Document arma el JWKS con la única clave activa.
func (k *PublicKey) Document() JWKS {
	return JWKS{Keys: []JWK{k.JWK()}}
}
