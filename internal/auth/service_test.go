package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/lockpad/internal/entity"
	"github.com/dropDatabas3/lockpad/internal/jwt"
	"github.com/dropDatabas3/lockpad/internal/metrics"
	"github.com/dropDatabas3/lockpad/internal/models"
	"github.com/dropDatabas3/lockpad/internal/security/password"
	"github.com/dropDatabas3/lockpad/internal/store"
	"github.com/dropDatabas3/lockpad/internal/store/memory"
	"github.com/dropDatabas3/lockpad/internal/store/storetest"
)

var (
	keyOnce sync.Once
	rsaKey  *rsa.PrivateKey
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc     *Service
	table   *storetest.Recorder
	issuer  *jwt.Issuer
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, mutate ...func(*Deps)) *fixture {
	t.Helper()
	keyOnce.Do(func() {
		k, err := jwt.GenerateRSA(2048)
		if err != nil {
			panic(err)
		}
		rsaKey = k
	})
	issuer, err := jwt.NewIssuer(jwt.NewKeyPair(rsaKey), func() time.Time { return fixedNow })
	require.NoError(t, err)
	hasher, err := password.NewHasher(password.Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 32})
	require.NoError(t, err)
	m, err := metrics.New(nil)
	require.NoError(t, err)

	rec := storetest.NewRecorder(memory.New())
	d := Deps{Table: rec, Hasher: hasher, Issuer: issuer, Metrics: m}
	for _, f := range mutate {
		f(&d)
	}
	svc, err := NewService(d)
	require.NoError(t, err)
	return &fixture{svc: svc, table: rec, issuer: issuer, metrics: m}
}

func (f *fixture) subject(t *testing.T, tok string) string {
	t.Helper()
	claims, err := f.issuer.Validate(context.Background(), tok)
	require.NoError(t, err)
	return claims.Subject
}

func TestRegisterThenAuthorize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	grant, user, err := f.svc.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, grant.Token)

	writes := f.table.Writes()
	require.Len(t, writes, 1)
	require.Equal(t, "put", writes[0].Op)
	require.Equal(t, entity.Address{PartitionKey: "user", SortKey: "user#alice"}, writes[0].Addr)

	got, err := f.svc.Authorize(ctx, UserCredentials("alice", "hunter2"))
	require.NoError(t, err)
	require.Equal(t, user.ID, f.subject(t, got.Token))
	require.Equal(t, fixedNow.Add(jwt.TokenTTL), got.ExpiresAt)

	_, err = f.svc.Authorize(ctx, UserCredentials("alice", "wrongpass"))
	require.ErrorIs(t, err, ErrUnauthorized)

	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AuthorizeTotal.WithLabelValues("user", "issued")))
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AuthorizeTotal.WithLabelValues("user", "rejected")))
}

func TestAuthorizeUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Authorize(context.Background(), UserCredentials("nobody", "x"))
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestAPIKeyFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, owner, err := f.svc.Register(ctx, "bob", "pw")
	require.NoError(t, err)

	key, err := f.svc.CreateAPIKey(ctx, owner.ID, "ci")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(key.Secret, "lpk_"))

	stored, err := store.Load[models.APIKey](ctx, f.table, entity.Address{PartitionKey: "api_key", SortKey: "api_key#" + key.ID})
	require.NoError(t, err)
	require.NotEqual(t, key.Secret, stored.Secret, "secret must be stored hashed")

	grant, err := f.svc.Authorize(ctx, APIKeyCredentials(key.ID, key.Secret))
	require.NoError(t, err)
	require.Equal(t, owner.ID, f.subject(t, grant.Token))

	_, err = f.svc.Authorize(ctx, APIKeyCredentials(key.ID, "lpk_wrong"))
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.svc.Authorize(ctx, APIKeyCredentials(models.NewID(), key.Secret))
	require.ErrorIs(t, err, ErrUnauthorized)

	view, err := f.svc.GetAPIKey(ctx, owner.ID, key.ID)
	require.NoError(t, err)
	require.Empty(t, view.Secret)

	_, err = f.svc.GetAPIKey(ctx, models.NewID(), key.ID)
	require.ErrorIs(t, err, ErrNotFound)

	list, err := f.svc.ListAPIKeys(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	others, err := f.svc.ListAPIKeys(ctx, models.NewID())
	require.NoError(t, err)
	require.Empty(t, others)
}

func TestAuthorizeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cases := map[string]Credentials{
		"empty":         {},
		"no secret":     UserCredentials("alice", ""),
		"separator":     UserCredentials("a#b", "x"),
		"api key no id": APIKeyCredentials("", "x"),
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Authorize(ctx, c)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
	require.Empty(t, f.table.Calls(), "malformed credentials must not reach storage")
}

func TestAuthorizeStorageFailure(t *testing.T) {
	f := newFixture(t)
	f.table.Fail = store.Wrap("memory", "get", errors.New("disk on fire"))

	_, err := f.svc.Authorize(context.Background(), UserCredentials("alice", "hunter2"))
	require.True(t, store.IsStorage(err), "got %v", err)
	require.False(t, errors.Is(err, ErrUnauthorized))
	require.Len(t, f.table.Calls("get"), 1, "no retries")
}

func TestAuthorizeCorruptedHash(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := store.Save(ctx, f.table, models.User{ID: models.NewID(), Identifier: "carol", Secret: "not-a-phc"})
	require.NoError(t, err)

	_, err = f.svc.Authorize(ctx, UserCredentials("carol", "whatever"))
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRegisterConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, first, err := f.svc.Register(ctx, "dave", "pw1")
	require.NoError(t, err)

	_, _, err = f.svc.Register(ctx, "dave", "pw2")
	require.ErrorIs(t, err, ErrConflict)

	// el original sigue intacto
	grant, err := f.svc.Authorize(ctx, UserCredentials("dave", "pw1"))
	require.NoError(t, err)
	require.Equal(t, first.ID, f.subject(t, grant.Token))
}

func TestRegisterPolicy(t *testing.T) {
	bl, err := password.ReadBlacklist(strings.NewReader("password123\n"))
	require.NoError(t, err)
	f := newFixture(t, func(d *Deps) {
		d.Policy = password.Policy{MinLength: 8}
		d.Blacklist = bl
	})
	ctx := context.Background()

	_, _, err = f.svc.Register(ctx, "erin", "short")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "secret", ve.Field)
	require.Contains(t, ve.Reason, "too_short")

	_, _, err = f.svc.Register(ctx, "erin", "Password123")
	require.ErrorIs(t, err, ErrValidation)

	_, _, err = f.svc.Register(ctx, "er#in", "long-enough-secret")
	require.ErrorIs(t, err, ErrValidation)

	require.Empty(t, f.table.Writes())
}

func TestRegisterDisabled(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.DisableSignup = true })
	_, _, err := f.svc.Register(context.Background(), "frank", "pw")
	require.ErrorIs(t, err, ErrSignupDisabled)
}

func TestUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var ids []string
	for _, name := range []string{"zoe", "amy", "max"} {
		_, u, err := f.svc.Register(ctx, name, "pw")
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}

	users, err := f.svc.ListUsers(ctx, 0)
	require.NoError(t, err)
	require.Len(t, users, 3)
	require.Equal(t, "amy", users[0].Identifier)

	limited, err := f.svc.ListUsers(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)

	u, err := f.svc.GetUser(ctx, ids[0])
	require.NoError(t, err)
	require.Equal(t, "zoe", u.Identifier)

	_, err = f.svc.GetUser(ctx, models.NewID())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetUserSharedScanIgnoresCancel(t *testing.T) {
	f := newFixture(t)
	_, u, err := f.svc.Register(context.Background(), "zoe", "pw")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := f.svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
}

func TestApplications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, other := models.NewID(), models.NewID()

	app, err := f.svc.CreateApplication(ctx, owner, "  dashboard ")
	require.NoError(t, err)
	require.Equal(t, "dashboard", app.Name)

	got, err := f.svc.GetApplication(ctx, owner, app.ID)
	require.NoError(t, err)
	require.Equal(t, app.ID, got.ID)
	require.Equal(t, app.Name, got.Name)
	require.True(t, app.CreatedAt.Equal(got.CreatedAt))

	_, err = f.svc.GetApplication(ctx, other, app.ID)
	require.ErrorIs(t, err, ErrNotFound)

	list, err := f.svc.ListApplications(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)

	empty, err := f.svc.ListApplications(ctx, other)
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	_, err = f.svc.CreateApplication(ctx, owner, " ")
	require.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.CreateApplication(ctx, "not-an-id", "x")
	require.ErrorIs(t, err, ErrValidation)
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(Deps{})
	require.Error(t, err)
}

func TestValidateToken(t *testing.T) {
	f := newFixture(t)
	grant, _, err := f.svc.Register(context.Background(), "gus", "pw")
	require.NoError(t, err)

	_, err = f.svc.ValidateToken(context.Background(), grant.Token)
	require.NoError(t, err)
	_, err = f.svc.ValidateToken(context.Background(), grant.Token+"x")
	require.ErrorIs(t, err, jwt.ErrUnauthorized)
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.TokenValidations.WithLabelValues("rejected")))
}
