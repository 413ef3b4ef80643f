package keyValueDb_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solcards/gocardsd/internal/storage/keyValueDb"
	"github.com/solcards/gocardsd/internal/storage/keyValueDb/leveldb"
	"github.com/solcards/gocardsd/internal/storage/keyValueDb/memory"
	"github.com/solcards/gocardsd/internal/storage/keyValueDb/pebble"
)

func backends(t *testing.T) map[string]keyValueDb.DB {
	t.Helper()

	pdb, err := pebble.Open(filepath.Join(t.TempDir(), "pebble"))
	require.NoError(t, err)
	ldb, err := leveldb.Open(filepath.Join(t.TempDir(), "leveldb"))
	require.NoError(t, err)

	return map[string]keyValueDb.DB{
		"memory":  memory.New(),
		"pebble":  pdb,
		"leveldb": ldb,
	}
}

func TestReadWriteDelete(t *testing.T) {
	ctx := context.Background()
	for name, db := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer db.Close()

			_, err := db.Read(ctx, []byte("missing"))
			require.ErrorIs(t, err, keyValueDb.ErrKeyNotFound)

			require.NoError(t, db.Write(ctx, []byte("alpha"), []byte("one")))
			val, err := db.Read(ctx, []byte("alpha"))
			require.NoError(t, err)
			require.Equal(t, []byte("one"), val)

			require.NoError(t, db.Write(ctx, []byte("alpha"), []byte("two")))
			val, err = db.Read(ctx, []byte("alpha"))
			require.NoError(t, err)
			require.Equal(t, []byte("two"), val)

			require.NoError(t, db.Delete(ctx, []byte("alpha")))
			_, err = db.Read(ctx, []byte("alpha"))
			require.ErrorIs(t, err, keyValueDb.ErrKeyNotFound)
		})
	}
}

func TestBatch(t *testing.T) {
	ctx := context.Background()
	for name, db := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer db.Close()

			require.NoError(t, db.Write(ctx, []byte("doomed"), []byte("x")))
			require.NoError(t, db.Batch(ctx, []keyValueDb.BatchOperation{
				{Type: keyValueDb.BatchPut, Key: []byte("a"), Value: []byte("1")},
				{Type: keyValueDb.BatchPut, Key: []byte("b"), Value: []byte("2")},
				{Type: keyValueDb.BatchDelete, Key: []byte("doomed")},
			}))

			val, err := db.Read(ctx, []byte("a"))
			require.NoError(t, err)
			require.Equal(t, []byte("1"), val)
			val, err = db.Read(ctx, []byte("b"))
			require.NoError(t, err)
			require.Equal(t, []byte("2"), val)
			_, err = db.Read(ctx, []byte("doomed"))
			require.ErrorIs(t, err, keyValueDb.ErrKeyNotFound)
		})
	}
}

func TestIteratorRange(t *testing.T) {
	ctx := context.Background()
	for name, db := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer db.Close()

			for _, k := range []string{"k1", "k2", "k3", "k4"} {
				require.NoError(t, db.Write(ctx, []byte(k), []byte("v-"+k)))
			}

			// Half-open range [k2, k4).
			it, err := db.Iterator(ctx, []byte("k2"), []byte("k4"))
			require.NoError(t, err)
			defer it.Close()

			var keys []string
			for it.Next() {
				keys = append(keys, string(it.Key()))
				require.Equal(t, []byte("v-"+string(it.Key())), it.Value())
			}
			require.NoError(t, it.Error())
			require.Equal(t, []string{"k2", "k3"}, keys)
		})
	}
}

func TestClosedDatabase(t *testing.T) {
	ctx := context.Background()
	for name, db := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, db.Close())

			require.ErrorIs(t, db.Write(ctx, []byte("k"), []byte("v")), keyValueDb.ErrDBClosed)
			_, err := db.Read(ctx, []byte("k"))
			require.ErrorIs(t, err, keyValueDb.ErrDBClosed)
			require.ErrorIs(t, db.Delete(ctx, []byte("k")), keyValueDb.ErrDBClosed)
		})
	}
}
