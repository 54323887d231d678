package metadata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseRepository runs the behaviour every backend must share.
func exerciseRepository(t *testing.T, r Repository) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, r.Clear(ctx))

	v, err := r.Get(ctx, "absent")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, r.Set(ctx, "a", []byte("1")))
	require.NoError(t, r.Set(ctx, "b", []byte{}))
	require.NoError(t, r.Set(ctx, "a", []byte("2")))

	v, err = r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)

	v, err = r.Get(ctx, "b")
	require.NoError(t, err)
	assert.NotNil(t, v)

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 2)

	require.NoError(t, r.Delete(ctx, "a"))
	require.NoError(t, r.Delete(ctx, "a"))
	v, err = r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, r.SetMany(ctx, map[string][]byte{"x": []byte("1"), "y": []byte("2")}))
	m, err = r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), m["x"])
	assert.Equal(t, []byte("2"), m["y"])

	require.NoError(t, r.Clear(ctx))
	m, err = r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestSQLiteRepository_Contract(t *testing.T) {
	exerciseRepository(t, NewSQLiteRepository(setupDB(t)))
}

func TestMemoryRepository_Contract(t *testing.T) {
	exerciseRepository(t, NewMemoryRepository())
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, r.Set(ctx, "k", in))
	in[0] = 'x'

	out, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), out)

	out[1] = 'y'
	again, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestSQLiteRepository_SetManyInsideTransaction(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	r := NewSQLiteRepository(tx)
	require.NoError(t, r.SetMany(ctx, map[string][]byte{"a": []byte("1"), "b": []byte("2")}))
	require.NoError(t, tx.Rollback())

	v, err := NewSQLiteRepository(db).Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, v)
}
