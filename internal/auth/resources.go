package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/dropDatabas3/lockpad/internal/models"
	"github.com/dropDatabas3/lockpad/internal/observability/logger"
	"github.com/dropDatabas3/lockpad/internal/security/token"
	"github.com/dropDatabas3/lockpad/internal/store"
)

const maxNameLen = 128

func checkName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name", "empty")
	}
	if len(name) > maxNameLen {
		return "", invalid("name", "too long")
	}
	return name, nil
}

func checkOwner(owner string) error {
	if !models.ValidID(owner) {
		return invalid("owner", "not an id")
	}
	return nil
}

// Applications

func (s *Service) CreateApplication(ctx context.Context, owner, name string) (models.Application, error) {
	if err := checkOwner(owner); err != nil {
		return models.Application{}, err
	}
	name, err := checkName(name)
	if err != nil {
		return models.Application{}, err
	}
	app := models.Application{OwnerID: owner, ID: models.NewID(), Name: name, CreatedAt: s.now()}
	if _, err := store.Create(ctx, s.deps.Table, app); err != nil {
		logger.From(ctx).Error("application insert failed",
			logger.Op("CreateApplication"), logger.OwnerID(owner), logger.Err(err))
		return models.Application{}, err
	}
	return app, nil
}

func (s *Service) GetApplication(ctx context.Context, owner, id string) (models.Application, error) {
	if err := checkOwner(owner); err != nil {
		return models.Application{}, err
	}
	addr, err := models.ApplicationScheme.Key(owner, id)
	if err != nil {
		return models.Application{}, ErrNotFound
	}
	app, err := store.Load[models.Application](ctx, s.deps.Table, addr)
	if errors.Is(err, store.ErrNotFound) {
		return models.Application{}, ErrNotFound
	}
	return app, err
}

func (s *Service) ListApplications(ctx context.Context, owner string) ([]models.Application, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	q, err := models.ApplicationScheme.Scope(owner)
	if err != nil {
		return nil, err
	}
	apps, err := store.Collect(store.Scan[models.Application](ctx, s.deps.Table, q), 0)
	if apps == nil && err == nil {
		apps = []models.Application{}
	}
	return apps, err
}

// API keys

func (s *Service) lookupAPIKey(ctx context.Context, id string) (models.APIKey, error) {
	addr, err := models.APIKeyScheme.Key(id)
	if err != nil {
		return models.APIKey{}, invalid("key_id", err.Error())
	}
	return store.Load[models.APIKey](ctx, s.deps.Table, addr)
}

// CreateAPIKey genera el secreto, guarda sólo su hash y devuelve el
// secreto en claro. Es la única vez que sale del servicio.
func (s *Service) CreateAPIKey(ctx context.Context, owner, name string) (models.APIKeyView, error) {
	log := logger.From(ctx).With(logger.Op("CreateAPIKey"), logger.OwnerID(owner))
	if err := checkOwner(owner); err != nil {
		return models.APIKeyView{}, err
	}
	name, err := checkName(name)
	if err != nil {
		return models.APIKeyView{}, err
	}

	secret, err := token.APIKeySecret()
	if err != nil {
		return models.APIKeyView{}, err
	}
	done := s.deps.Metrics.Hash("hash")
	phc, err := s.deps.Hasher.Hash(secret)
	done()
	if err != nil {
		return models.APIKeyView{}, err
	}

	k := models.APIKey{ID: models.NewID(), OwnerID: owner, Name: name, Secret: phc, CreatedAt: s.now()}
	if _, err := store.Create(ctx, s.deps.Table, k); err != nil {
		log.Error("api key insert failed", logger.Err(err))
		return models.APIKeyView{}, err
	}
	log.Info("api key created", logger.APIKeyID(k.ID))

	v := k.View()
	v.Secret = secret
	return v, nil
}

// GetAPIKey responde ErrNotFound también si la key es de otro dueño.
func (s *Service) GetAPIKey(ctx context.Context, owner, id string) (models.APIKeyView, error) {
	k, err := s.lookupAPIKey(ctx, id)
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, ErrValidation) {
		return models.APIKeyView{}, ErrNotFound
	}
	if err != nil {
		return models.APIKeyView{}, err
	}
	if k.OwnerID != owner {
		return models.APIKeyView{}, ErrNotFound
	}
	return k.View(), nil
}

// ListAPIKeys filtra la partición de keys por dueño.
func (s *Service) ListAPIKeys(ctx context.Context, owner string) ([]models.APIKeyView, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	q, err := models.APIKeyScheme.Scope()
	if err != nil {
		return nil, err
	}
	out := []models.APIKeyView{}
	for k, err := range store.Scan[models.APIKey](ctx, s.deps.Table, q) {
		if err != nil {
			return nil, err
		}
		if k.OwnerID == owner {
			out = append(out, k.View())
		}
	}
	return out, nil
}
