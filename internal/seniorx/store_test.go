package seniorx

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/GustavoMarcolla/insightscore-pro/internal/domain/seniorx"
)

func testSnapshot() domain.Snapshot {
	return domain.Snapshot{
		User: domain.ExternalIdentity{
			Username: "maria",
			FullName: "Maria Silva",
			Email:    "maria@acme.com",
		},
		Token: "tok-abc",
		Mode:  domain.ModeEmbedded,
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, err := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)

	_, found, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Save(ctx, testSnapshot()))

	got, found, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "tok-abc", got.Token)
	assert.Equal(t, "maria@acme.com", got.User.Email)

	require.NoError(t, store.Clear(ctx))
	_, found, err = store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	// Clearing again is fine.
	require.NoError(t, store.Clear(ctx))
}

func TestFileStoreCorruptSnapshotIsAbsent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "session.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"token": truncated`), 0o600))

	_, found, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	// The corrupt file was removed, not left to fail again.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileStoreIncompleteSnapshotIsAbsent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "session.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	// Valid JSON, but no token: not a usable snapshot.
	require.NoError(t, os.WriteFile(path, []byte(`{"user":{"email":"x@a.com"}}`), 0o600))

	_, found, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFileStoreRejectsInvalidSave(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	require.Error(t, store.Save(context.Background(), domain.Snapshot{}))
}

func TestMemStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := NewMemStore()
	_, found, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Save(ctx, testSnapshot()))
	got, found, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "tok-abc", got.Token)

	require.NoError(t, store.Clear(ctx))
	_, found, err = store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}
