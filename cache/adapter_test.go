package cache

import (
	"context"
	"testing"

	"github.com/kasuganosora/mmoitems/cache/local"
	"github.com/kasuganosora/mmoitems/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCache_LocalWithoutRedis(t *testing.T) {
	c, err := NewCache(config.CacheConfig{LocalMaxEntries: 10})
	require.NoError(t, err)
	defer c.Close()
	assert.IsType(t, &local.LocalCache{}, c)

	_, err = c.Get(context.Background(), "nope")
	assert.True(t, IsNotFound(err))
}

func TestNewCache_RedisUnreachable(t *testing.T) {
	_, err := NewCache(config.CacheConfig{RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(context.Canceled))
}
