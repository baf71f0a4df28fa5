package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUsers(t *testing.T) *Users {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUsers(db)
}

func TestInsertAndListAll(t *testing.T) {
	users := setupUsers(t)
	ctx := context.Background()

	id1, err := users.Insert(ctx, "alice", "alice@example.com", "secret", "img-a")
	require.NoError(t, err)
	id2, err := users.Insert(ctx, "bob", "", "", "img-b")
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	all, err := users.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	assert.Equal(t, "alice", all[0].Name)
	assert.Equal(t, "alice@example.com", all[0].Email)
	assert.Equal(t, "img-a", all[0].Image)
	assert.Equal(t, "bob", all[1].Name)
	assert.Empty(t, all[1].Email)
}

func TestListAll_InsertionOrder(t *testing.T) {
	users := setupUsers(t)
	ctx := context.Background()

	for _, name := range []string{"charlie", "alice", "bob"} {
		_, err := users.Insert(ctx, name, "", "", "img")
		require.NoError(t, err)
	}

	all, err := users.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Insertion order, not alphabetical.
	assert.Equal(t, "charlie", all[0].Name)
	assert.Equal(t, "alice", all[1].Name)
	assert.Equal(t, "bob", all[2].Name)
}

func TestDeleteByID(t *testing.T) {
	users := setupUsers(t)
	ctx := context.Background()

	id, err := users.Insert(ctx, "alice", "", "", "img")
	require.NoError(t, err)
	keep, err := users.Insert(ctx, "bob", "", "", "img")
	require.NoError(t, err)

	require.NoError(t, users.DeleteByID(ctx, id))

	all, err := users.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, keep, all[0].ID)
}

func TestDeleteByID_Idempotent(t *testing.T) {
	users := setupUsers(t)
	ctx := context.Background()

	require.NoError(t, users.DeleteByID(ctx, 424242))
	require.NoError(t, users.DeleteByID(ctx, 424242))
}

func TestIDsNeverReused(t *testing.T) {
	users := setupUsers(t)
	ctx := context.Background()

	id, err := users.Insert(ctx, "alice", "", "", "img")
	require.NoError(t, err)
	require.NoError(t, users.DeleteByID(ctx, id))

	next, err := users.Insert(ctx, "bob", "", "", "img")
	require.NoError(t, err)
	assert.Greater(t, next, id, "AUTOINCREMENT must not reuse ids")
}

func TestCount(t *testing.T) {
	users := setupUsers(t)
	ctx := context.Background()

	n, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = users.Insert(ctx, "alice", "", "", "img")
	require.NoError(t, err)

	n, err = users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
