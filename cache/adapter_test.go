package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCache_LocalFallback(t *testing.T) {
	c, err := NewCache(CacheConfig{})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Get(ctx, "missing")
	assert.True(t, IsNotFound(err))

	require.NoError(t, c.HSet(ctx, "save:a", "hero", "{}"))
	v, err := c.HGet(ctx, "save:a", "hero")
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
}

func TestNewPubSub_LocalRelay(t *testing.T) {
	ps, err := NewPubSub(CacheConfig{LocalPubSubBuf: 8})
	require.NoError(t, err)
	ctx := context.Background()
	ch, cancel, err := ps.Subscribe(ctx, "combat")
	require.NoError(t, err)

	require.NoError(t, ps.Publish(ctx, "combat", `{"type":"after_actor_death"}`))
	select {
	case msg := <-ch:
		assert.Equal(t, "combat", msg.Channel)
		assert.Contains(t, msg.Payload, "after_actor_death")
	case <-time.After(time.Second):
		t.Fatal("no message relayed")
	}

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "relay closes after cancel")
	case <-time.After(time.Second):
		t.Fatal("relay not closed")
	}
}

func TestIsNotFound_OtherErrors(t *testing.T) {
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(context.Canceled))
}
