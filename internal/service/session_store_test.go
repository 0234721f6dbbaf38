package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStore_SaveExistsRevoke(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	userID := uuid.New()

	exists, err := store.Exists(ctx, userID, "token-1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Save(ctx, userID, "token-1", time.Hour))

	exists, err = store.Exists(ctx, userID, "token-1")
	require.NoError(t, err)
	assert.True(t, exists)

	// Another user with the same token id is a different session
	exists, err = store.Exists(ctx, uuid.New(), "token-1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Revoke(ctx, userID, "token-1"))

	exists, err = store.Exists(ctx, userID, "token-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore().(*memorySessionStore)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	userID := uuid.New()

	require.NoError(t, store.Save(ctx, userID, "token-1", time.Minute))

	now = now.Add(2 * time.Minute)
	exists, err := store.Exists(ctx, userID, "token-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAccessTokenKey(t *testing.T) {
	userID := uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")
	assert.Equal(t, "access_token:7c9e6679-7425-40de-944b-e07fc1f90ae7:abc", accessTokenKey(userID, "abc"))
}
