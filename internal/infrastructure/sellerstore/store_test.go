package sellerstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shelfscout/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTrip exercises the behaviour every store shares
func roundTrip(t *testing.T, store domain.SellerStore) {
	t.Helper()
	ctx := context.Background()

	names, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, store.Save(ctx, map[string]string{"A1": "Tokyo Goods", "A2": "大阪ストア"}))
	names, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A1": "Tokyo Goods", "A2": "大阪ストア"}, names)

	// mutating the loaded map must not affect the store
	names["A3"] = "Mutated"
	require.NoError(t, store.Save(ctx, map[string]string{"A1": "Tokyo Goods Renamed", "A2": "大阪ストア"}))
	names, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Tokyo Goods Renamed", names["A1"])
	assert.NotContains(t, names, "A3")
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(nil)
	roundTrip(t, store)
	assert.Equal(t, 2, store.Size())
	assert.Equal(t, 2, store.Saves())

	store.Clear()
	assert.Zero(t, store.Size())
}

func TestMemoryStore_Seed(t *testing.T) {
	seed := map[string]string{"A1": "Seeded"}
	store := NewMemoryStore(seed)
	seed["A2"] = "Later"

	names, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A1": "Seeded"}, names)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sellers.json")
	store := NewFileStore(path)
	roundTrip(t, store)

	assert.Equal(t, path, store.Path())
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file must be renamed away")
}

func TestFileStore_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sellers.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := NewFileStore(path).Load(context.Background())

	assert.ErrorIs(t, err, domain.ErrEmptyStore)
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sellers.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewFileStore(path)
	_, err := store.Load(context.Background())
	require.Error(t, err)

	// a save recovers the file
	require.NoError(t, store.Save(context.Background(), map[string]string{"A1": "Recovered"}))
	names, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Recovered", names["A1"])
}

func TestFileStore_NullDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sellers.json")
	require.NoError(t, os.WriteFile(path, []byte("null"), 0o644))

	names, err := NewFileStore(path).Load(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, names)
	assert.Empty(t, names)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sellers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	roundTrip(t, store)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sellers.db")

	first, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(context.Background(), map[string]string{"A1": "Tokyo Goods"}))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { second.Close() })

	names, err := second.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A1": "Tokyo Goods"}, names)
}
