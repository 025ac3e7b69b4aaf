package jwt

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dropDatabas3/lockpad/internal/observability/logger"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrSigning: no se pudo firmar el token.
	ErrSigning = errors.New("jwt: signing failed")
	// ErrUnauthorized: el token no es aceptable. La causa concreta sólo se loguea.
	ErrUnauthorized = errors.New("jwt: unauthorized")
)

// Issue firma Claims{sub, iat=now, exp=now+7d} con RS256.
// El header queda {"alg":"RS256","typ":"JWT"}, sin kid.
func Issue(subject string, now time.Time, key *rsa.PrivateKey) (string, error) {
	if key == nil {
		return "", fmt.Errorf("%w: nil key", ErrSigning)
	}
	// Validate rechaza sub vacío y el JSON reemplaza bytes inválidos por U+FFFD.
	if subject == "" || !utf8.ValidString(subject) {
		return "", fmt.Errorf("%w: invalid subject", ErrSigning)
	}
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, NewClaims(subject, now))
	s, err := tok.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigning, err)
	}
	return s, nil
}

type validateConfig struct {
	checkExpiry bool
	now         func() time.Time
}

type ValidateOption func(*validateConfig)

// CheckExpiry activa (default) o desactiva el chequeo de exp.
func CheckExpiry(on bool) ValidateOption {
	return func(c *validateConfig) { c.checkExpiry = on }
}

// At fija el reloj contra el que se evalúa exp.
func At(now time.Time) ValidateOption {
	return func(c *validateConfig) { c.now = func() time.Time { return now } }
}

// WithClock igual que At pero con una función.
func WithClock(now func() time.Time) ValidateOption {
	return func(c *validateConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// Validate verifica firma RS256 y claims. Cualquier fallo retorna
// ErrUnauthorized; el motivo queda en el log (debug).
func Validate(ctx context.Context, token string, key *rsa.PublicKey, opts ...ValidateOption) (*Claims, error) {
	cfg := validateConfig{checkExpiry: true, now: time.Now}
	for _, o := range opts {
		o(&cfg)
	}
	claims, reason := validate(token, key, cfg)
	if reason != nil {
		logger.From(ctx).Debug("token rejected",
			logger.Component("jwt"), logger.Reason(reason.Error()))
		return nil, ErrUnauthorized
	}
	return claims, nil
}

func validate(token string, key *rsa.PublicKey, cfg validateConfig) (*Claims, error) {
	if key == nil {
		return nil, errors.New("no verification key")
	}
	if token == "" {
		return nil, errors.New("empty token")
	}
	var claims Claims
	parser := jwtv5.NewParser(
		jwtv5.WithValidMethods([]string{algRS256}),
		jwtv5.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(token, &claims, func(*jwtv5.Token) (any, error) {
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("missing sub")
	}
	if claims.ExpiresAt <= claims.IssuedAt {
		return nil, fmt.Errorf("exp %d not after iat %d", claims.ExpiresAt, claims.IssuedAt)
	}
	if cfg.checkExpiry && claims.Expired(cfg.now()) {
		return nil, fmt.Errorf("expired at %d", claims.ExpiresAt)
	}
	return &claims, nil
}
