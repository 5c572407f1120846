package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestTokenLifecycle(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	token, err := database.GetToken(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "", token)

	require.NoError(t, database.SetToken(ctx, 100, "tok-1"))
	token, err = database.GetToken(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	// Replace on re-login.
	require.NoError(t, database.SetToken(ctx, 100, "tok-2"))
	token, err = database.GetToken(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)

	require.NoError(t, database.ClearToken(ctx, 100))
	token, err = database.GetToken(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "", token)
}

func TestTokensIsolatedPerUser(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, database.SetToken(ctx, 1, "alpha"))
	require.NoError(t, database.SetToken(ctx, 2, "beta"))

	tok1, err := database.GetToken(ctx, 1)
	require.NoError(t, err)
	tok2, err := database.GetToken(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "alpha", tok1)
	assert.Equal(t, "beta", tok2)

	require.NoError(t, database.ClearToken(ctx, 1))
	tok2, err = database.GetToken(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "beta", tok2)
}

func TestAuditTrail(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, database.LogAction(ctx, 7, "booking_created", "2024-06-10 09:00"))
	require.NoError(t, database.LogAction(ctx, 7, "booking_cancelled", "id=3"))
	require.NoError(t, database.LogAction(ctx, 8, "login", ""))

	entries, err := database.RecentActions(ctx, 7, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "booking_cancelled", entries[0].Action)
	assert.Equal(t, "booking_created", entries[1].Action)
}
