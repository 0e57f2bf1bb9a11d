package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoadedSession(t *testing.T) ISession {
	t.Helper()
	sess := NewSession(context.Background(), "flash-test", NewMemoryStore())
	require.NoError(t, sess.Load())
	return sess
}

func TestAddFlashAndPopFlashes(t *testing.T) {
	sess := newLoadedSession(t)

	require.NoError(t, AddFlash(sess, "error", "Invalid username or password"))
	require.NoError(t, AddFlash(sess, "success", "Signup successful!"))

	flashes := PopFlashes(sess)
	require.Len(t, flashes, 2)
	assert.Equal(t, Flash{Category: "error", Message: "Invalid username or password"}, flashes[0])
	assert.Equal(t, Flash{Category: "success", Message: "Signup successful!"}, flashes[1])

	// 取出後訊息就清空了
	assert.Empty(t, PopFlashes(sess))
}

func TestPopFlashes_Empty(t *testing.T) {
	sess := newLoadedSession(t)
	assert.Empty(t, PopFlashes(sess))
}

func TestAddFlash_CorruptedData(t *testing.T) {
	sess := newLoadedSession(t)
	// 壞掉的 flash 資料不該讓後續的訊息消失
	sess.Set(flashKey, "not-base64!!")

	require.NoError(t, AddFlash(sess, "error", "still works"))

	flashes := PopFlashes(sess)
	require.Len(t, flashes, 1)
	assert.Equal(t, "still works", flashes[0].Message)
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data, err := store.Load(ctx, "absent")
	require.NoError(t, err)
	assert.Empty(t, data)

	require.NoError(t, store.Save(ctx, "s1", map[string]string{"user_id": "7"}))

	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"user_id": "7"}, got)

	// 修改取出的副本不影響儲存層
	got["user_id"] = "8"
	again, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "7", again["user_id"])
}
