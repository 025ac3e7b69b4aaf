package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/lockpad/internal/auth"
	"github.com/dropDatabas3/lockpad/internal/http/controllers"
	"github.com/dropDatabas3/lockpad/internal/jwt"
	"github.com/dropDatabas3/lockpad/internal/metrics"
	"github.com/dropDatabas3/lockpad/internal/rate"
	"github.com/dropDatabas3/lockpad/internal/security/password"
	"github.com/dropDatabas3/lockpad/internal/store/memory"
)

type harness struct {
	t      *testing.T
	h      http.Handler
	issuer *jwt.Issuer
}

func newHarness(t *testing.T, mutate ...func(*Deps)) *harness {
	t.Helper()
	key, err := jwt.GenerateRSA(2048)
	require.NoError(t, err)
	issuer, err := jwt.NewIssuer(jwt.NewKeyPair(key), time.Now)
	require.NoError(t, err)
	hasher, err := password.NewHasher(password.Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 32})
	require.NoError(t, err)
	m, err := metrics.New(nil)
	require.NoError(t, err)

	table := memory.New()
	svc, err := auth.NewService(auth.Deps{Table: table, Hasher: hasher, Issuer: issuer, Metrics: m})
	require.NoError(t, err)

	d := Deps{
		Controllers:  controllers.New(svc, issuer, table),
		Validator:    svc,
		Metrics:      m,
		MaxBodyBytes: 4 << 10,
	}
	for _, f := range mutate {
		f(&d)
	}
	return &harness{t: t, h: New(d), issuer: issuer}
}

func (h *harness) do(method, path, contentType, body, bearer string) *httptest.ResponseRecorder {
	h.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.h.ServeHTTP(rec, req)
	return rec
}

func (h *harness) json(rec *httptest.ResponseRecorder, v any) {
	h.t.Helper()
	require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

const jsonCT = "application/json"

func TestRegisterAuthorizeFlow(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/api/register", jsonCT, `{"identifier":"alice","secret":"hunter2"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	var reg struct {
		Token string `json:"token"`
		User  struct {
			ID         string `json:"id"`
			Identifier string `json:"identifier"`
		} `json:"user"`
	}
	h.json(rec, &reg)
	require.Equal(t, "alice", reg.User.Identifier)
	require.NotContains(t, rec.Body.String(), "argon2id")

	rec = h.do(http.MethodPost, "/api/authorize", jsonCT, `{"identifier":"alice","secret":"hunter2"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tok struct {
		Token string `json:"token"`
	}
	h.json(rec, &tok)
	claims, err := h.issuer.Validate(context.Background(), tok.Token)
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, claims.Subject)
	require.Equal(t, claims.IssuedAt+604800, claims.ExpiresAt)

	rec = h.do(http.MethodPost, "/api/authorize", jsonCT, `{"identifier":"alice","secret":"wrong"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(http.MethodPost, "/api/authorize", jsonCT, `{"identifier":"nobody","secret":"hunter2"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	form := url.Values{"identifier": {"alice"}, "secret": {"hunter2"}}.Encode()
	rec = h.do(http.MethodPost, "/forms/authorize", "application/x-www-form-urlencoded", form, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(http.MethodPost, "/api/register", jsonCT, `{"identifier":"alice","secret":"other"}`, "")
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthorizeValidation(t *testing.T) {
	h := newHarness(t)
	for _, body := range []string{
		`{}`,
		`{"identifier":"alice","key_id":"k","secret":"x"}`,
		`{"identifier":"a#b","secret":"x"}`,
		`not json`,
	} {
		rec := h.do(http.MethodPost, "/api/authorize", jsonCT, body, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec := h.do(http.MethodPost, "/api/authorize", jsonCT, `{"identifier":"`+strings.Repeat("a", 8<<10)+`","secret":"x"}`, "")
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestProtectedResources(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/users", "", "", "").Code)
	require.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/users", "", "", "garbage").Code)

	rec := h.do(http.MethodPost, "/api/register", jsonCT, `{"identifier":"bob","secret":"pw"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var reg struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	h.json(rec, &reg)
	bearer := reg.Token

	rec = h.do(http.MethodGet, "/users/"+reg.User.ID, "", "", bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/users/nope", "", "", bearer).Code)

	rec = h.do(http.MethodGet, "/users?limit=1", "", "", bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/users?limit=x", "", "", bearer).Code)

	// aplicaciones
	rec = h.do(http.MethodPost, "/applications", jsonCT, `{"name":"billing"}`, bearer)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var app struct {
		ID      string `json:"application_id"`
		OwnerID string `json:"owner_id"`
	}
	h.json(rec, &app)
	require.Equal(t, reg.User.ID, app.OwnerID)
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/applications/"+app.ID, "", "", bearer).Code)

	// api keys: el secreto sólo en el alta
	rec = h.do(http.MethodPost, "/api-keys", jsonCT, `{"name":"ci"}`, bearer)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var key struct {
		ID     string `json:"api_key_id"`
		Secret string `json:"secret"`
	}
	h.json(rec, &key)
	require.NotEmpty(t, key.Secret)

	rec = h.do(http.MethodGet, "/api-keys/"+key.ID, "", "", bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), key.Secret)

	body, _ := json.Marshal(map[string]string{"key_id": key.ID, "secret": key.Secret})
	rec = h.do(http.MethodPost, "/api/authorize", jsonCT, string(body), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body, _ = json.Marshal(map[string]string{"key_id": key.ID, "secret": "lpk_wrong"})
	require.Equal(t, http.StatusUnauthorized, h.do(http.MethodPost, "/api/authorize", jsonCT, string(body), "").Code)
}

func TestJWKSAndHealth(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/.well-known/jwks.json", "", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	set, err := jwt.ParseJWKS(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, set, 1)
	require.True(t, set[0].Equal(h.issuer.PublicKey()))

	rec = h.do(http.MethodGet, "/health", "", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodGet, "/metrics", "", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "lockpad_http_requests_total")

	require.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/nope", "", "", "").Code)
}

func TestSignupDisabled(t *testing.T) {
	h := newHarness(t, func(d *Deps) { d.DisableSignup = true })
	rec := h.do(http.MethodPost, "/api/register", jsonCT, `{"identifier":"carol","secret":"pw"}`, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthorizeRateLimited(t *testing.T) {
	h := newHarness(t, func(d *Deps) { d.AuthorizeLimiter = rate.NewMemoryLimiter(2, time.Minute) })
	codes := []int{}
	for range 3 {
		codes = append(codes, h.do(http.MethodPost, "/api/authorize", jsonCT, `{"identifier":"x","secret":"y"}`, "").Code)
	}
	require.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}
