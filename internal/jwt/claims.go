package jwt

import (
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// TokenTTL es la vida de un token: 7 días exactos.
const TokenTTL = 7 * 24 * time.Hour

// Claims es el payload del token. Tiempos en segundos unix.
type Claims struct {
	Subject   string `json:"sub"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// NewClaims fija iat = now y exp = iat + TokenTTL.
func NewClaims(subject string, now time.Time) Claims {
	iat := now.Unix()
	return Claims{Subject: subject, IssuedAt: iat, ExpiresAt: iat + int64(TokenTTL/time.Second)}
}

func (c Claims) Expired(now time.Time) bool { return now.Unix() > c.ExpiresAt }

func (c Claims) ExpiresTime() time.Time { return time.Unix(c.ExpiresAt, 0).UTC() }

// jwtv5.Claims. La validación de tiempos la hace Validate, no la librería.

func (c Claims) GetExpirationTime() (*jwtv5.NumericDate, error) {
	return jwtv5.NewNumericDate(time.Unix(c.ExpiresAt, 0)), nil
}

func (c Claims) GetIssuedAt() (*jwtv5.NumericDate, error) {
	return jwtv5.NewNumericDate(time.Unix(c.IssuedAt, 0)), nil
}

func (c Claims) GetNotBefore() (*jwtv5.NumericDate, error) { return nil, nil }
func (c Claims) GetIssuer() (string, error)                { return "", nil }
func (c Claims) GetSubject() (string, error)               { return c.Subject, nil }
func (c Claims) GetAudience() (jwtv5.ClaimStrings, error)  { return nil, nil }
