package controllers

import (
	stderrors "errors"
	"net/http"

	"github.com/dropDatabas3/lockpad/internal/auth"
	"github.com/dropDatabas3/lockpad/internal/http/errors"
	"github.com/dropDatabas3/lockpad/internal/models"
	"github.com/dropDatabas3/lockpad/internal/observability/logger"
)

type RegisterController struct {
	service AuthService
}

type registerResponse struct {
	Token string          `json:"token"`
	User  models.UserView `json:"user"`
}

// Register: POST /api/register con {"identifier","secret"}.
func (c *RegisterController) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("RegisterController.Register"))

	body, err := readBody(r)
	if err != nil {
		fail(w, log, err)
		return
	}
	creds, err := auth.Decode(r.Header.Get("Content-Type"), body)
	if err != nil {
		fail(w, log, err)
		return
	}
	c.register(w, r, creds)
}

// RegisterForm: POST /forms/register.
func (c *RegisterController) RegisterForm(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("RegisterController.RegisterForm"))

	if err := r.ParseForm(); err != nil {
		fail(w, log, parseFormError(err))
		return
	}
	creds, err := auth.ParseForm(r.PostForm)
	if err != nil {
		fail(w, log, err)
		return
	}
	c.register(w, r, creds)
}

func (c *RegisterController) register(w http.ResponseWriter, r *http.Request, creds auth.Credentials) {
	log := logger.From(r.Context())
	if creds.Kind != auth.KindUser {
		errors.WriteError(w, errors.ErrBadRequest.WithDetail("registration requires identifier and secret"))
		return
	}
	grant, user, err := c.service.Register(r.Context(), creds.ID, creds.Secret)
	if err != nil {
		fail(w, log, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{Token: grant.Token, User: user})
}

func parseFormError(err error) error {
	var mbe *http.MaxBytesError
	if stderrors.As(err, &mbe) {
		return errors.ErrBodyTooLarge
	}
	return errors.ErrBadRequest.WithDetail("malformed form").WithCause(err)
}
