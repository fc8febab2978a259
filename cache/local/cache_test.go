package local

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(t *testing.T, max int) (*LocalCache, *fakeClock) {
	t.Helper()
	c, err := NewCache(Config{GCInterval: time.Hour, MaxEntries: max})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	clk := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c.now = clk.now
	return c, clk
}

func TestGetSet(t *testing.T) {
	c, _ := newTestCache(t, 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "gs:10:4:2:0:0", "330,0", 0))

	v, err := c.Get(ctx, "gs:10:4:2:0:0")
	require.NoError(t, err)
	assert.Equal(t, "330,0", v)

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTTL(t *testing.T) {
	c, clk := newTestCache(t, 0)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "ttl", "val", time.Minute))

	clk.advance(time.Minute)
	ok, err := c.Exists(ctx, "ttl")
	require.NoError(t, err)
	assert.True(t, ok, "expiry is exclusive of the deadline")

	clk.advance(time.Nanosecond)
	_, err = c.Get(ctx, "ttl")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, c.Len())
}

func TestDel(t *testing.T) {
	c, _ := newTestCache(t, 0)
	ctx := context.Background()
	_ = c.Set(ctx, "a", "1", 0)
	_ = c.Set(ctx, "b", "2", 0)
	require.NoError(t, c.Del(ctx, "a", "b", "never-set"))

	ok, _ := c.Exists(ctx, "a")
	assert.False(t, ok)
	ok, _ = c.Exists(ctx, "b")
	assert.False(t, ok)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(t, 3)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_ = c.Set(ctx, fmt.Sprintf("k%d", i), "v", 0)
	}
	_, _ = c.Get(ctx, "k0")
	_ = c.Set(ctx, "k3", "v", 0)

	assert.Equal(t, 3, c.Len())
	ok, _ := c.Exists(ctx, "k1")
	assert.False(t, ok)
	ok, _ = c.Exists(ctx, "k0")
	assert.True(t, ok)
}

func TestSweep_RemovesExpired(t *testing.T) {
	c, clk := newTestCache(t, 0)
	ctx := context.Background()
	_ = c.Set(ctx, "gone", "v", time.Second)
	_ = c.Set(ctx, "later", "v", time.Hour)
	_ = c.Set(ctx, "kept", "v", 0)
	clk.advance(time.Minute)

	assert.Equal(t, 1, c.sweep())
	assert.Equal(t, 2, c.Len())
	assert.Zero(t, c.sweep())
}

func TestClose_Idempotent(t *testing.T) {
	c, err := NewCache(Config{})
	require.NoError(t, err)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}
