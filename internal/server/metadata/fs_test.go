package metadata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bierclub/bier/internal/common"
)

func TestFSStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "users")

	s, err := NewFSStore(root)
	require.NoError(t, err)

	_, err = s.Load(ctx, 7)
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, s.Create(ctx, 7, "cafe"))

	info, err := os.Stat(filepath.Join(root, "7", FileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := s.Load(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "cafe", got)

	require.NoError(t, s.Save(ctx, 7, "beef"))
	got, err = s.Load(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "beef", got)

	require.NoError(t, s.Delete(ctx, 7))
	_, err = os.Stat(filepath.Join(root, "7"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete(ctx, 7), "deleting twice is fine")
}

func TestFSStore_SaveWithoutCreateFails(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, s.Save(context.Background(), 1, "00"))
}

func TestFSStore_UsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Create(ctx, 1, "one"))
	require.NoError(t, s.Create(ctx, 2, "two"))

	got, err := s.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "one", got)
}
