package credentials

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_SetAndGet(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, AccessTokenKey, "A1"))

	v, err := s.Get(ctx, AccessTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "A1", v)
}

func TestSQLiteStore_Get_Absent(t *testing.T) {
	s := openSQLite(t)

	v, err := s.Get(context.Background(), RefreshTokenKey)
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestSQLiteStore_SetUpserts(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, AccessTokenKey, "A1"))
	require.NoError(t, s.Set(ctx, AccessTokenKey, "A2"))

	v, err := s.Get(ctx, AccessTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "A2", v)
}

func TestSQLiteStore_Remove_Idempotent(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, RefreshTokenKey, "R1"))
	require.NoError(t, s.Remove(ctx, RefreshTokenKey))
	require.NoError(t, s.Remove(ctx, RefreshTokenKey))

	v, err := s.Get(ctx, RefreshTokenKey)
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestSQLiteStore_SetPair(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, Persist(ctx, s, Pair{AccessToken: "A1", RefreshToken: "R1"}))

	p, err := Load(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, Pair{AccessToken: "A1", RefreshToken: "R1"}, p)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "gophgate.db")

	s, err := OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, RefreshTokenKey, "R1"))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	v, err := s.Get(ctx, RefreshTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "R1", v)
}

func TestSQLiteStore_ErrorsWrapped(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, s.Close())

	_, err := s.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get credential[k]")

	err = s.Set(ctx, "k", "v")
	require.ErrorContains(t, err, "failed to set credential[k]")

	err = s.Remove(ctx, "k")
	require.ErrorContains(t, err, "failed to delete credential[k]")
}
