package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/dropDatabas3/lockpad/internal/models"
	"github.com/dropDatabas3/lockpad/internal/observability/logger"
	"github.com/dropDatabas3/lockpad/internal/security/password"
	"github.com/dropDatabas3/lockpad/internal/store"
)

func (s *Service) lookupUser(ctx context.Context, identifier string) (models.User, error) {
	addr, err := models.UserScheme.Key(identifier)
	if err != nil {
		return models.User{}, invalid("identifier", err.Error())
	}
	return store.Load[models.User](ctx, s.deps.Table, addr)
}

// Register crea el usuario y devuelve un token para él. Hace una única
// escritura condicional en user / user#<identifier>.
func (s *Service) Register(ctx context.Context, identifier, secret string) (*Grant, models.UserView, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("Register"),
		logger.Identity(identifier),
	)
	if s.deps.DisableSignup {
		return nil, models.UserView{}, ErrSignupDisabled
	}

	// Paso 1: forma
	identifier = strings.TrimSpace(identifier)
	c := UserCredentials(identifier, secret)
	if err := c.Validate(); err != nil {
		return nil, models.UserView{}, err
	}

	// Paso 2: política de secretos
	if err := s.deps.Policy.Check(secret); err != nil {
		var pe *password.PolicyError
		if errors.As(err, &pe) {
			return nil, models.UserView{}, invalid("secret", strings.Join(pe.Reasons, ","))
		}
		return nil, models.UserView{}, invalid("secret", err.Error())
	}
	if s.deps.Blacklist.Contains(secret) {
		return nil, models.UserView{}, invalid("secret", "too common")
	}

	// Paso 3: hash + alta
	done := s.deps.Metrics.Hash("hash")
	phc, err := s.deps.Hasher.Hash(secret)
	done()
	if err != nil {
		return nil, models.UserView{}, err
	}
	u := models.User{
		ID:         models.NewID(),
		Identifier: identifier,
		Secret:     phc,
		CreatedAt:  s.now(),
	}
	if _, err := store.Create(ctx, s.deps.Table, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			log.Debug("identifier taken")
			return nil, models.UserView{}, ErrConflict
		}
		log.Error("user insert failed", logger.Err(err))
		return nil, models.UserView{}, err
	}
	log = log.With(logger.UserID(u.ID))
	log.Info("user registered")

	// Paso 4: token
	grant, err := s.issue(u.ID)
	if err != nil {
		log.Error("token signing failed", logger.Err(err))
		return nil, u.View(), err
	}
	return grant, u.View(), nil
}

// ListUsers recorre la partición de usuarios en orden de identificador.
func (s *Service) ListUsers(ctx context.Context, limit int) ([]models.UserView, error) {
	q, err := models.UserScheme.Scope()
	if err != nil {
		return nil, err
	}
	out := []models.UserView{}
	for u, err := range store.Scan[models.User](ctx, s.deps.Table, q) {
		if err != nil {
			return nil, err
		}
		out = append(out, u.View())
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// GetUser busca por id. Los usuarios se direccionan por identificador,
// así que es un recorrido de la partición; lookups concurrentes del mismo
// id comparten el recorrido. El recorrido compartido no hereda la
// cancelación de quien lo arrancó.
func (s *Service) GetUser(ctx context.Context, id string) (models.UserView, error) {
	v, err, _ := s.users.Do(id, func() (any, error) {
		return s.scanUser(context.WithoutCancel(ctx), id)
	})
	if err != nil {
		return models.UserView{}, err
	}
	return v.(models.UserView), nil
}

func (s *Service) scanUser(ctx context.Context, id string) (models.UserView, error) {
	q, err := models.UserScheme.Scope()
	if err != nil {
		return models.UserView{}, err
	}
	for u, err := range store.Scan[models.User](ctx, s.deps.Table, q) {
		if err != nil {
			return models.UserView{}, err
		}
		if u.ID == id {
			return u.View(), nil
		}
	}
	return models.UserView{}, ErrNotFound
}
