package cache

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cerno-sec/cerno/endpoint"
)

// RedisOptions configures the Redis connection for a shared parse cache.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379")
	URL string

	// TLS configuration for secure connections
	TLS *tls.Config

	// KeyPrefix namespaces cache keys. Default: "cerno:parse:"
	KeyPrefix string

	// TTL is how long cached parse results live. Default: 1 hour.
	TTL time.Duration

	// ConnectTimeout is the maximum time to wait for connection establishment
	ConnectTimeout time.Duration

	// OpTimeout bounds individual Get/Put operations. Default: 2 seconds.
	OpTimeout time.Duration
}

// Redis is an endpoint.Cache backed by a Redis instance, for deployments
// where several review sessions parse the same scan data. Raw input text is
// hashed into the key, so arbitrarily large endpoint files stay within
// Redis key-size limits.
//
// Redis errors degrade to cache misses; the parser then recomputes. Eviction
// is delegated to the server (TTL plus whatever maxmemory policy it runs),
// so exact-LRU guarantees only apply to the in-process LRU.
type Redis struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	opTimeout time.Duration
}

// NewRedis creates a Redis-backed parse cache and verifies connectivity.
func NewRedis(opts RedisOptions) (*Redis, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "cerno:parse:"
	}
	if opts.TTL == 0 {
		opts.TTL = time.Hour
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.OpTimeout == 0 {
		opts.OpTimeout = 2 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.TLSConfig = opts.TLS
	redisOpts.DialTimeout = opts.ConnectTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Redis{
		client:    client,
		keyPrefix: opts.KeyPrefix,
		ttl:       opts.TTL,
		opTimeout: opts.OpTimeout,
	}, nil
}

// Get returns the cached result for key. Connection errors and corrupt
// entries are treated as misses.
func (c *Redis) Get(key string) (endpoint.Result, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), c.opTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, c.redisKey(key)).Bytes()
	if err != nil {
		return endpoint.Result{}, false
	}

	var res endpoint.Result
	if err := json.Unmarshal(data, &res); err != nil || res.Set == nil {
		return endpoint.Result{}, false
	}
	return res, true
}

// Put stores the result for key with the configured TTL. Errors are dropped;
// a failed write only costs a future recompute.
func (c *Redis) Put(key string, res endpoint.Result) {
	data, err := json.Marshal(res)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.opTimeout)
	defer cancel()
	c.client.Set(ctx, c.redisKey(key), data, c.ttl)
}

// Close closes the Redis connection.
func (c *Redis) Close() error {
	return c.client.Close()
}

// redisKey hashes the raw input text into a fixed-length namespaced key.
func (c *Redis) redisKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return c.keyPrefix + hex.EncodeToString(sum[:])
}
