package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRedisCache creates a miniredis instance and returns a connected cache.
func setupRedisCache(t *testing.T, opts RedisOptions) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	opts.URL = fmt.Sprintf("redis://%s", mr.Addr())
	c, err := NewRedis(opts)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
		mr.Close()
	})
	return c, mr
}

func TestNewRedis_InvalidURL(t *testing.T) {
	_, err := NewRedis(RedisOptions{URL: "not-a-url"})
	require.Error(t, err)
}

func TestRedis_RoundTrip(t *testing.T) {
	c, _ := setupRedisCache(t, RedisOptions{})

	res := resultFor("10.0.0.1:80", "[::1]:8080", "bogus:::::")
	c.Put("10.0.0.1:80\n[::1]:8080\nbogus:::::", res)

	got, ok := c.Get("10.0.0.1:80\n[::1]:8080\nbogus:::::")
	require.True(t, ok)
	assert.Equal(t, res.Set.Signature(), got.Set.Signature())
	assert.Equal(t, res.Set.Hosts(), got.Set.Hosts())
	require.Len(t, got.Warnings, 1)
	assert.Equal(t, res.Warnings[0].Code, got.Warnings[0].Code)
}

func TestRedis_MissAndExpiry(t *testing.T) {
	c, mr := setupRedisCache(t, RedisOptions{TTL: time.Minute})

	_, ok := c.Get("never stored")
	assert.False(t, ok)

	c.Put("key", resultFor("10.0.0.1"))
	_, ok = c.Get("key")
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)
	_, ok = c.Get("key")
	assert.False(t, ok, "entry should expire after TTL")
}

func TestRedis_CorruptEntryIsAMiss(t *testing.T) {
	c, mr := setupRedisCache(t, RedisOptions{})

	c.Put("key", resultFor("10.0.0.1"))

	// Overwrite the stored JSON with garbage directly.
	require.Len(t, mr.Keys(), 1)
	mr.Set(mr.Keys()[0], "{not json")

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestRedis_KeysAreHashedAndPrefixed(t *testing.T) {
	c, mr := setupRedisCache(t, RedisOptions{KeyPrefix: "test:parse:"})

	huge := make([]byte, 1<<16)
	for i := range huge {
		huge[i] = 'a'
	}
	c.Put(string(huge), resultFor("10.0.0.1"))

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], "test:parse:")
	assert.Less(t, len(keys[0]), 128, "raw text must not be used as the key")
}
