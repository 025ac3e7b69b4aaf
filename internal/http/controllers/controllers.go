// Package controllers implementa los handlers HTTP sobre auth.Service.
package controllers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/dropDatabas3/lockpad/internal/auth"
	"github.com/dropDatabas3/lockpad/internal/http/errors"
	"github.com/dropDatabas3/lockpad/internal/models"
	"github.com/dropDatabas3/lockpad/internal/observability/logger"
)

// AuthService es lo que los handlers usan de auth.Service.
type AuthService interface {
	Authorize(ctx context.Context, c auth.Credentials) (*auth.Grant, error)
	Register(ctx context.Context, identifier, secret string) (*auth.Grant, models.UserView, error)
	ListUsers(ctx context.Context, limit int) ([]models.UserView, error)
	GetUser(ctx context.Context, id string) (models.UserView, error)
	CreateApplication(ctx context.Context, owner, name string) (models.Application, error)
	GetApplication(ctx context.Context, owner, id string) (models.Application, error)
	ListApplications(ctx context.Context, owner string) ([]models.Application, error)
	CreateAPIKey(ctx context.Context, owner, name string) (models.APIKeyView, error)
	GetAPIKey(ctx context.Context, owner, id string) (models.APIKeyView, error)
	ListAPIKeys(ctx context.Context, owner string) ([]models.APIKeyView, error)
}

// KeySet publica el documento JWKS ya serializado.
type KeySet interface {
	JWKS() []byte
}

// Pinger verifica el backend de almacenamiento.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Controllers agrupa los handlers.
type Controllers struct {
	Authorize    *AuthorizeController
	Register     *RegisterController
	JWKS         *JWKSController
	Users        *UsersController
	Applications *ApplicationsController
	APIKeys      *APIKeysController
	Health       *HealthController
}

func New(svc AuthService, keys KeySet, db Pinger) *Controllers {
	return &Controllers{
		Authorize:    &AuthorizeController{service: svc},
		Register:     &RegisterController{service: svc},
		JWKS:         &JWKSController{keys: keys},
		Users:        &UsersController{service: svc},
		Applications: &ApplicationsController{service: svc},
		APIKeys:      &APIKeysController{service: svc},
		Health:       &HealthController{db: db},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// readBody lee el cuerpo completo; respeta el límite de WithMaxBody.
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	b, err := io.ReadAll(r.Body)
	if err != nil {
		var mbe *http.MaxBytesError
		if stderrors.As(err, &mbe) {
			return nil, errors.ErrBodyTooLarge
		}
		return nil, errors.ErrBadRequest.WithCause(err)
	}
	return b, nil
}

// decodeJSON lee un body JSON en v.
func decodeJSON(r *http.Request, v any) error {
	b, err := readBody(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return errors.ErrInvalidJSON.WithCause(err)
	}
	return nil
}

// fail escribe el error y loguea lo que sea 5xx.
func fail(w http.ResponseWriter, log *zap.Logger, err error) {
	appErr := errors.FromError(err)
	if appErr.HTTPStatus >= 500 {
		log.Error("request failed", logger.Err(err))
	}
	errors.WriteError(w, appErr)
}
