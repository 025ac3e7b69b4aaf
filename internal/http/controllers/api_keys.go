package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/lockpad/internal/http/middlewares"
	"github.com/dropDatabas3/lockpad/internal/observability/logger"
)

// APIKeysController: el secreto sólo aparece en la respuesta de Create.
type APIKeysController struct {
	service AuthService
}

func (c *APIKeysController) List(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("APIKeysController.List"))

	keys, err := c.service.ListAPIKeys(r.Context(), middlewares.GetSubject(r.Context()))
	if err != nil {
		fail(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"api_keys": keys})
}

func (c *APIKeysController) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("APIKeysController.Create"))

	var req createRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, log, err)
		return
	}
	key, err := c.service.CreateAPIKey(r.Context(), middlewares.GetSubject(r.Context()), req.Name)
	if err != nil {
		fail(w, log, err)
		return
	}
	log.Info("api key created", logger.APIKeyID(key.ID))
	writeJSON(w, http.StatusCreated, key)
}

func (c *APIKeysController) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("APIKeysController.Get"))

	key, err := c.service.GetAPIKey(r.Context(), middlewares.GetSubject(r.Context()), chi.URLParam(r, "api_key_id"))
	if err != nil {
		fail(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, key)
}
