package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTTL = time.Minute

func setupTestManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return NewManager(NewRedisStore(client, testTTL)), mr
}

func TestCreateAndGet(t *testing.T) {
	m, _ := setupTestManager(t)
	ctx := context.Background()

	created, err := m.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.Authenticated())

	got, found, err := m.Get(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, created.ID, got.ID)
}

func TestGetMissing(t *testing.T) {
	m, _ := setupTestManager(t)

	_, found, err := m.Get(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAttachToken(t *testing.T) {
	m, _ := setupTestManager(t)
	ctx := context.Background()

	sess, err := m.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, m.AttachToken(ctx, &sess, "test-token"))
	assert.True(t, sess.Authenticated())

	got, found, err := m.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "test-token", got.Token)
}

func TestRegenerate(t *testing.T) {
	m, _ := setupTestManager(t)
	ctx := context.Background()

	old, err := m.Create(ctx)
	require.NoError(t, err)

	fresh, err := m.Regenerate(ctx, old)
	require.NoError(t, err)
	assert.NotEqual(t, old.ID, fresh.ID)
	assert.Empty(t, fresh.Token)

	_, found, err := m.Get(ctx, old.ID)
	require.NoError(t, err)
	assert.False(t, found, "old session must be invalidated")

	_, found, err = m.Get(ctx, fresh.ID)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestDestroy(t *testing.T) {
	m, _ := setupTestManager(t)
	ctx := context.Background()

	sess, err := m.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, m.Destroy(ctx, sess))

	_, found, err := m.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSessionExpires(t *testing.T) {
	m, mr := setupTestManager(t)
	ctx := context.Background()

	sess, err := m.Create(ctx)
	require.NoError(t, err)

	mr.FastForward(testTTL + time.Second)

	_, found, err := m.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStoreErrorsAreWrapped(t *testing.T) {
	m, mr := setupTestManager(t)
	ctx := context.Background()

	sess, err := m.Create(ctx)
	require.NoError(t, err)

	mr.Close()

	err = m.Destroy(ctx, sess)
	require.Error(t, err)

	var sessionErr *Error
	require.ErrorAs(t, err, &sessionErr)
	assert.Equal(t, "destroy", sessionErr.Op)
}
