// Package auth implementa el flujo de autorización (credencial -> token)
// y la gestión de las identidades que lo alimentan: usuarios,
// aplicaciones y API keys.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/lockpad/internal/jwt"
	"github.com/dropDatabas3/lockpad/internal/metrics"
	"github.com/dropDatabas3/lockpad/internal/models"
	"github.com/dropDatabas3/lockpad/internal/observability/logger"
	"github.com/dropDatabas3/lockpad/internal/security/password"
	"github.com/dropDatabas3/lockpad/internal/store"
)

// Deps son las dependencias del servicio.
type Deps struct {
	Table         store.Table
	Hasher        *password.Hasher
	Issuer        *jwt.Issuer
	Policy        password.Policy
	Blacklist     *password.Blacklist // nil = vacía
	DisableSignup bool
	Metrics       *metrics.Metrics // nil = sin métricas
}

type Service struct {
	deps  Deps
	users singleflight.Group
}

func NewService(d Deps) (*Service, error) {
	switch {
	case d.Table == nil:
		return nil, errors.New("auth: table is required")
	case d.Hasher == nil:
		return nil, errors.New("auth: hasher is required")
	case d.Issuer == nil:
		return nil, errors.New("auth: issuer is required")
	}
	return &Service{deps: d}, nil
}

func (s *Service) now() time.Time { return s.deps.Issuer.Now().UTC() }

// Grant es el resultado de una autorización exitosa.
type Grant struct {
	Token     string    `json:"token"`
	Subject   string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// flow registra las transiciones de una autorización.
type flow struct {
	state State
	log   *zap.Logger
}

func (f *flow) to(next State) {
	if !CanTransition(f.state, next) {
		// sólo puede pasar por un bug del propio servicio
		panic(fmt.Sprintf("auth: invalid transition %s -> %s", f.state, next))
	}
	f.state = next
	f.log.Debug("authorize transition", logger.State(next.String()))
}

// Authorize verifica una credencial y emite un token.
//
// Errores: ErrValidation (forma), ErrUnauthorized (identidad inexistente o
// secreto incorrecto, indistinguibles), *store.Error (motor caído),
// jwt.ErrSigning.
func (s *Service) Authorize(ctx context.Context, c Credentials) (*Grant, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("Authorize"),
		logger.CredentialKind(c.Kind.String()),
		logger.Identity(c.ID),
	)
	f := &flow{state: Start, log: log}
	kind := c.Kind.String()

	// Paso 1: forma de la credencial
	if err := c.Validate(); err != nil {
		f.to(Rejected)
		s.deps.Metrics.Authorize(kind, "invalid")
		log.Debug("credential rejected", logger.Reason(err.Error()))
		return nil, err
	}
	f.to(CredentialParsed)

	// Paso 2: lookup + verificación del secreto
	subject, err := s.verify(ctx, log, c)
	if err != nil {
		f.to(Rejected)
		if errors.Is(err, ErrUnauthorized) {
			s.deps.Metrics.Authorize(kind, "rejected")
		} else {
			s.deps.Metrics.Authorize(kind, "error")
		}
		return nil, err
	}
	f.to(Verified)

	// Paso 3: emitir
	grant, err := s.issue(subject)
	if err != nil {
		f.to(Rejected)
		s.deps.Metrics.Authorize(kind, "error")
		log.Error("token signing failed", logger.Err(err))
		return nil, err
	}
	f.to(TokenIssued)
	s.deps.Metrics.Authorize(kind, "issued")
	log.Info("token issued", logger.UserID(subject))
	return grant, nil
}

func (s *Service) issue(subject string) (*Grant, error) {
	tok, claims, err := s.deps.Issuer.Issue(subject)
	if err != nil {
		return nil, err
	}
	s.deps.Metrics.TokenIssued()
	return &Grant{Token: tok, Subject: subject, ExpiresAt: claims.ExpiresTime()}, nil
}

// verify retorna el subject del token: el id del usuario o el dueño de la key.
func (s *Service) verify(ctx context.Context, log *zap.Logger, c Credentials) (string, error) {
	var (
		subject, phc string
		err          error
	)
	switch c.Kind {
	case KindUser:
		var u models.User
		u, err = s.lookupUser(ctx, c.ID)
		subject, phc = u.ID, u.Secret
	case KindAPIKey:
		var k models.APIKey
		k, err = s.lookupAPIKey(ctx, c.ID)
		subject, phc = k.OwnerID, k.Secret
	}
	if errors.Is(err, store.ErrNotFound) {
		// mismo costo que una verificación real
		done := s.deps.Metrics.Hash("verify")
		s.deps.Hasher.Burn(c.Secret)
		done()
		log.Debug("credential rejected", logger.Reason("unknown identity"))
		return "", ErrUnauthorized
	}
	if err != nil {
		log.Error("credential lookup failed", logger.Err(err))
		return "", err
	}

	done := s.deps.Metrics.Hash("verify")
	err = s.deps.Hasher.Verify(c.Secret, phc)
	done()
	switch {
	case err == nil:
		return subject, nil
	case errors.Is(err, password.ErrMismatch):
		log.Debug("credential rejected", logger.Reason("secret mismatch"))
	default:
		log.Error("stored secret hash is unreadable", logger.Reason(err.Error()))
	}
	return "", ErrUnauthorized
}

// ValidateToken valida un bearer token con la clave propia.
func (s *Service) ValidateToken(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.deps.Issuer.Validate(ctx, token)
	s.deps.Metrics.TokenValidated(err == nil)
	return claims, err
}
