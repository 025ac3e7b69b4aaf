// Package storetest tiene la batería común que corre contra cada
// store.Backend y un Table instrumentado para contar operaciones.
package storetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/lockpad/internal/entity"
	"github.com/dropDatabas3/lockpad/internal/store"
)

// Run ejecuta la batería contra un backend limpio por subtest.
func Run(t *testing.T, newBackend func(t *testing.T) store.Backend) {
	t.Helper()
	cases := []struct {
		name string
		fn   func(t *testing.T, b store.Backend)
	}{
		{"GetMissing", testGetMissing},
		{"PutGetOverwrite", testPutGetOverwrite},
		{"InsertConflict", testInsertConflict},
		{"Delete", testDelete},
		{"QueryOrderedAndScoped", testQueryOrdered},
		{"QueryRestartable", testQueryRestartable},
		{"QueryEarlyStop", testQueryEarlyStop},
		{"Wipe", testWipe},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newBackend(t)
			require.NoError(t, b.CreateTable(context.Background()))
			require.NoError(t, b.Wipe(context.Background()))
			tc.fn(t, b)
		})
	}
}

func addr(pk, sk string) entity.Address { return entity.Address{PartitionKey: pk, SortKey: sk} }

func testGetMissing(t *testing.T, b store.Backend) {
	_, err := b.Get(context.Background(), addr("user", "user#nobody"))
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testPutGetOverwrite(t *testing.T, b store.Backend) {
	ctx := context.Background()
	a := addr("user", "user#alice")
	require.NoError(t, b.Put(ctx, a, []byte(`{"v":1}`)))
	got, err := b.Get(ctx, a)
	require.NoError(t, err)
	require.JSONEq(t, `{"v":1}`, string(got))

	require.NoError(t, b.Put(ctx, a, []byte(`{"v":2}`)))
	got, err = b.Get(ctx, a)
	require.NoError(t, err)
	require.JSONEq(t, `{"v":2}`, string(got))
}

func testInsertConflict(t *testing.T, b store.Backend) {
	ctx := context.Background()
	a := addr("user", "user#bob")
	require.NoError(t, b.Insert(ctx, a, []byte(`{"v":1}`)))
	require.ErrorIs(t, b.Insert(ctx, a, []byte(`{"v":2}`)), store.ErrConflict)

	got, err := b.Get(ctx, a)
	require.NoError(t, err)
	require.JSONEq(t, `{"v":1}`, string(got))
}

func testDelete(t *testing.T, b store.Backend) {
	ctx := context.Background()
	a := addr("app#u1", "app#a1")
	require.NoError(t, b.Put(ctx, a, []byte(`{}`)))
	require.NoError(t, b.Delete(ctx, a))
	require.NoError(t, b.Delete(ctx, a))
	_, err := b.Get(ctx, a)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testQueryOrdered(t *testing.T, b store.Backend) {
	ctx := context.Background()
	for _, sk := range []string{"app#c", "app#a", "app#b"} {
		require.NoError(t, b.Put(ctx, addr("app#u1", sk), []byte(`{}`)))
	}
	require.NoError(t, b.Put(ctx, addr("app#u2", "app#z"), []byte(`{}`)))

	var got []string
	for rec, err := range b.Query(ctx, "app#u1") {
		require.NoError(t, err)
		require.Equal(t, "app#u1", rec.PartitionKey)
		got = append(got, rec.SortKey)
	}
	require.Equal(t, []string{"app#a", "app#b", "app#c"}, got)

	for range b.Query(ctx, "app#nobody") {
		t.Fatal("empty partition yielded a record")
	}
}

func testQueryRestartable(t *testing.T, b store.Backend) {
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, b.Put(ctx, addr("user", fmt.Sprintf("user#%02d", i)), []byte(`{}`)))
	}
	seq := b.Query(ctx, "user")
	count := func() int {
		n := 0
		for _, err := range seq {
			require.NoError(t, err)
			n++
		}
		return n
	}
	require.Equal(t, 5, count())
	require.Equal(t, 5, count())
}

func testQueryEarlyStop(t *testing.T, b store.Backend) {
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		require.NoError(t, b.Put(ctx, addr("user", fmt.Sprintf("user#%02d", i)), []byte(`{}`)))
	}
	n := 0
	for range b.Query(ctx, "user") {
		n++
		if n == 3 {
			break
		}
	}
	require.Equal(t, 3, n)
}

func testWipe(t *testing.T, b store.Backend) {
	ctx := context.Background()
	require.NoError(t, b.Put(ctx, addr("user", "user#x"), []byte(`{}`)))
	require.NoError(t, b.Put(ctx, addr("app#u", "app#y"), []byte(`{}`)))
	require.NoError(t, b.Wipe(ctx))
	_, err := b.Get(ctx, addr("user", "user#x"))
	require.ErrorIs(t, err, store.ErrNotFound)
	for range b.Query(ctx, "app#u") {
		t.Fatal("wiped partition yielded a record")
	}
}
