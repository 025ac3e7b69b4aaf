package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/lockpad/internal/http/errors"
	"github.com/dropDatabas3/lockpad/internal/observability/logger"
)

const maxListLimit = 500

type UsersController struct {
	service AuthService
}

// parseLimit lee ?limit=; 0 => sin límite explícito (se usa el máximo).
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return maxListLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.ErrBadRequest.WithDetail("limit must be a positive integer")
	}
	return min(n, maxListLimit), nil
}

// List: GET /users.
func (c *UsersController) List(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("UsersController.List"))

	limit, err := parseLimit(r)
	if err != nil {
		fail(w, log, err)
		return
	}
	users, err := c.service.ListUsers(r.Context(), limit)
	if err != nil {
		fail(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// Get: GET /users/{user_id}.
func (c *UsersController) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("UsersController.Get"))

	u, err := c.service.GetUser(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		fail(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
