package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGetDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "1:1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Put(ctx, "1:1", "a", time.Minute))
	require.NoError(t, s.Put(ctx, "1:1", "b", time.Minute))
	id, ok, err := s.Get(ctx, "1:1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "b", id)

	require.NoError(t, s.Delete(ctx, "1:1"))
	_, ok, _ = s.Get(ctx, "1:1")
	require.False(t, ok)

	// deleting an absent key is fine
	require.NoError(t, s.Delete(ctx, "1:1"))
}

func TestMemoryStore_KeysAreIsolated(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "1:1", "a", time.Minute))

	_, ok, err := s.Get(ctx, "1:2")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStore_Expiry(t *testing.T) {
	now := fixedNow
	s := NewMemoryStore()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "1:1", "a", time.Minute))
	now = now.Add(time.Minute)
	_, ok, err := s.Get(ctx, "1:1")
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, s.entries)
}
