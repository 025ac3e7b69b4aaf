package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/lockpad/internal/http/middlewares"
	"github.com/dropDatabas3/lockpad/internal/observability/logger"
)

// ApplicationsController opera sobre las aplicaciones del sub del token.
type ApplicationsController struct {
	service AuthService
}

type createRequest struct {
	Name string `json:"name"`
}

func (c *ApplicationsController) List(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("ApplicationsController.List"))

	apps, err := c.service.ListApplications(r.Context(), middlewares.GetSubject(r.Context()))
	if err != nil {
		fail(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applications": apps})
}

func (c *ApplicationsController) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("ApplicationsController.Create"))

	var req createRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, log, err)
		return
	}
	app, err := c.service.CreateApplication(r.Context(), middlewares.GetSubject(r.Context()), req.Name)
	if err != nil {
		fail(w, log, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (c *ApplicationsController) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("ApplicationsController.Get"))

	app, err := c.service.GetApplication(r.Context(), middlewares.GetSubject(r.Context()), chi.URLParam(r, "application_id"))
	if err != nil {
		fail(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}
