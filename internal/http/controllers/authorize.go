package controllers

import (
	"net/http"

	"github.com/dropDatabas3/lockpad/internal/auth"
	"github.com/dropDatabas3/lockpad/internal/observability/logger"
)

type AuthorizeController struct {
	service AuthService
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Authorize: POST /api/authorize. Acepta JSON o form según Content-Type.
func (c *AuthorizeController) Authorize(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("AuthorizeController.Authorize"))

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
	c.authorize(w, r, creds)
}

// AuthorizeForm: POST /forms/authorize.
func (c *AuthorizeController) AuthorizeForm(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("AuthorizeController.AuthorizeForm"))

	if err := r.ParseForm(); err != nil {
		fail(w, log, parseFormError(err))
		return
	}
	creds, err := auth.ParseForm(r.PostForm)
	if err != nil {
		fail(w, log, err)
		return
	}
	c.authorize(w, r, creds)
}

func (c *AuthorizeController) authorize(w http.ResponseWriter, r *http.Request, creds auth.Credentials) {
	log := logger.From(r.Context())
	grant, err := c.service.Authorize(r.Context(), creds)
	if err != nil {
		fail(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: grant.Token})
}
