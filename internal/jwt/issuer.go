package jwt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Issuer emite y valida tokens con el par activo y un reloj inyectable.
type Issuer struct {
	keys *KeyPair
	now  func() time.Time
	jwks []byte
}

// NewIssuer precomputa el JWKS. now nil => time.Now.
func NewIssuer(keys *KeyPair, now func() time.Time) (*Issuer, error) {
	if keys == nil || keys.Private == nil || keys.Public == nil {
		return nil, fmt.Errorf("%w: missing key pair", ErrKeyFormat)
	}
	if now == nil {
		now = time.Now
	}
	doc, err := json.Marshal(keys.Public.Document())
	if err != nil {
		return nil, err
	}
	return &Issuer{keys: keys, now: now, jwks: doc}, nil
}

func (i *Issuer) Now() time.Time { return i.now() }

func (i *Issuer) PublicKey() *PublicKey { return i.keys.Public }

// Issue firma un token para subject con la hora actual del issuer.
func (i *Issuer) Issue(subject string) (string, Claims, error) {
	now := i.now()
	tok, err := Issue(subject, now, i.keys.Private)
	if err != nil {
		return "", Claims{}, err
	}
	return tok, NewClaims(subject, now), nil
}

// Validate valida contra la clave pública propia y el reloj del issuer.
func (i *Issuer) Validate(ctx context.Context, token string, opts ...ValidateOption) (*Claims, error) {
	opts = append([]ValidateOption{WithClock(i.now)}, opts...)
	return Validate(ctx, token, i.keys.Public.RSA(), opts...)
}

// JWKS retorna una copia del documento serializado.
func (i *Issuer) JWKS() []byte {
	out := make([]byte, len(i.jwks))
	copy(out, i.jwks)
	return out
}

// SelfCheck firma y valida un token de prueba; detecta pares inconsistentes.
func (k *KeyPair) SelfCheck(ctx context.Context) error {
	now := time.Now()
	tok, err := Issue("self-check", now, k.Private)
	if err != nil {
		return err
	}
	if _, err := Validate(ctx, tok, k.Public.RSA(), At(now)); err != nil {
		return fmt.Errorf("%w: signature does not verify with public key", ErrKeyFormat)
	}
	return nil
}
