package queue

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client defines the interface for interacting with the Redis job queue.
type Client interface {
	// PushJob adds a job to the queue (LPUSH).
	PushJob(ctx context.Context, job Job) error

	// PopJob removes and returns a job from the queue (BRPOP). It blocks
	// until a job is available or the context is cancelled.
	PopJob(ctx context.Context) (*Job, error)

	// PublishResult sends a result to the job's pub/sub channel.
	PublishResult(ctx context.Context, result JobResult) error

	// SubscribeResults creates a subscription to a job's result channel.
	// The returned channel receives results until the context is cancelled.
	SubscribeResults(ctx context.Context, jobID string) (<-chan JobResult, error)

	// Close closes the Redis connection.
	Close() error
}

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379").
	URL string

	// TLS configuration for secure connections.
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection
	// establishment. Default: 5s.
	ConnectTimeout time.Duration

	// WriteTimeout is the maximum time to wait for write operations.
	// Default: 5s.
	WriteTimeout time.Duration
}

// RedisClient implements Client using go-redis/v9.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient creates a Redis queue client and verifies the connection.
func NewRedisClient(opts RedisOptions) (*RedisClient, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisOpts.TLSConfig = opts.TLS
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout
	// Blocking pops hold the connection open indefinitely.
	redisOpts.ReadTimeout = -1

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// PushJob adds a job to the queue after validating it.
func (c *RedisClient) PushJob(ctx context.Context, job Job) error {
	if err := job.IsValid(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if err := c.client.LPush(ctx, JobQueue, data).Err(); err != nil {
		return fmt.Errorf("failed to push job: %w", err)
	}

	return nil
}

// PopJob removes and returns a job from the queue, blocking until one is
// available or the context is cancelled.
func (c *RedisClient) PopJob(ctx context.Context) (*Job, error) {
	result, err := c.client.BRPop(ctx, 0, JobQueue).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop job: %w", err)
	}

	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP result length: %d", len(result))
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	return &job, nil
}

// PublishResult sends a result to the job's pub/sub channel.
func (c *RedisClient) PublishResult(ctx context.Context, result JobResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	channel := ResultChannel(result.JobID)
	if err := c.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to channel %s: %w", channel, err)
	}

	return nil
}

// SubscribeResults creates a subscription to a job's result channel.
func (c *RedisClient) SubscribeResults(ctx context.Context, jobID string) (<-chan JobResult, error) {
	channel := ResultChannel(jobID)
	pubsub := c.client.Subscribe(ctx, channel)

	if _, err := pubsub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("failed to subscribe to channel %s: %w", channel, err)
	}

	resultChan := make(chan JobResult)

	go func() {
		defer close(resultChan)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var result JobResult
				if err := json.Unmarshal([]byte(msg.Payload), &result); err != nil {
					continue
				}

				select {
				case resultChan <- result:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return resultChan, nil
}

// Close closes the Redis connection.
func (c *RedisClient) Close() error {
	return c.client.Close()
}
