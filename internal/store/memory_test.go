package store_test

import (
	"context"
	"testing"

	"github.com/storeship/dhlbridge/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGetDelete(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "key")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Put(ctx, "key", []byte("value")))

	val, err := s.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), val)

	require.NoError(t, s.Delete(ctx, "key"))

	_, err = s.Get(ctx, "key")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "key", []byte("value")))

	val, err := s.Get(ctx, "key")
	require.NoError(t, err)
	val[0] = 'X'

	again, err := s.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), again)
}

func TestMemoryStore_PingClose(t *testing.T) {
	s := store.NewMemoryStore()
	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, s.Close())
}
