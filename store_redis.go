package lotofacil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore persists values in Redis, retrying transient failures with exponential backoff
type RedisStore struct {
	client         redis.UniversalClient
	logger         Logger
	retryAttempts  int
	retryBaseDelay time.Duration
	ttl            time.Duration
}

// NewRedisStore creates a Redis store with the default retry settings and no TTL
func NewRedisStore(client redis.UniversalClient, logger Logger) *RedisStore {
	return NewRedisStoreWithRetry(client, logger, DefaultRetryAttempts, DefaultRetryInterval, 0)
}

// NewRedisStoreWithRetry creates a Redis store with custom retry settings
func NewRedisStoreWithRetry(
	client redis.UniversalClient, logger Logger, retryAttempts int, retryDelay, ttl time.Duration,
) *RedisStore {
	if logger == nil {
		logger = NewSilentLogger()
	}
	if retryAttempts < 0 {
		retryAttempts = 0
	}
	if retryAttempts > MaxRetryAttempts {
		retryAttempts = MaxRetryAttempts
	}
	return &RedisStore{
		client:         client,
		logger:         logger,
		retryAttempts:  retryAttempts,
		retryBaseDelay: retryDelay,
		ttl:            ttl,
	}
}

// NewRedisStoreFromConfig creates a Redis store from the redis section of the configuration
func NewRedisStoreFromConfig(client redis.UniversalClient, cfg *RedisConfig, logger Logger) *RedisStore {
	if cfg == nil {
		cfg = DefaultRedisConfig()
	}
	return NewRedisStoreWithRetry(client, logger, cfg.RetryAttempts, cfg.RetryInterval, cfg.KeyTTL)
}

// executeWithRetry executes a Redis operation with retry logic using exponential backoff
func (rs *RedisStore) executeWithRetry(ctx context.Context, operation string, fn func() error) error {
	var lastErr error
	startTime := time.Now()

	for attempt := 0; attempt <= rs.retryAttempts; attempt++ {
		if attempt > 0 {
			// baseDelay * 2^(attempt-1), capped
			delay := time.Duration(1<<(attempt-1)) * rs.retryBaseDelay
			if delay > MaxRetryDelay {
				delay = MaxRetryDelay
			}

			rs.logger.Debug("Retrying %s (attempt %d/%d) after %v, elapsed %v",
				operation, attempt, rs.retryAttempts, delay, time.Since(startTime))

			select {
			case <-ctx.Done():
				return ErrStoreTimeout.
					WithDetails(fmt.Sprintf("%s cancelled after %d attempts", operation, attempt)).
					WithCause(ctx.Err())
			case <-time.After(delay):
			}
		}

		err := fn()
		if err == nil {
			if attempt > 0 {
				rs.logger.Info("%s succeeded after %d retries in %v", operation, attempt, time.Since(startTime))
			}
			return nil
		}

		lastErr = err
		if !IsRetryableError(err) {
			rs.logger.Debug("Non-retriable error for %s: %v", operation, err)
			break
		}

		if attempt == rs.retryAttempts {
			rs.logger.Error("Final retry attempt failed for %s (attempt %d/%d): %v",
				operation, attempt+1, rs.retryAttempts+1, err)
		}
	}

	if errors.Is(lastErr, context.DeadlineExceeded) {
		return ErrStoreTimeout.WithDetails(operation).WithCause(lastErr)
	}
	return ErrStoreFailure.
		WithDetails(fmt.Sprintf("%s failed after %v", operation, time.Since(startTime))).
		WithCause(lastErr)
}

// Get returns the value stored at key
func (rs *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		data    []byte
		missing bool
	)
	err := rs.executeWithRetry(ctx, fmt.Sprintf("get[%s]", key), func() error {
		v, err := rs.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			// Key doesn't exist - not an error condition, don't retry
			missing = true
			return nil
		}
		if err != nil {
			return err
		}
		data = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	if missing {
		return nil, ErrNotFound.WithDetails(key)
	}
	return data, nil
}

// Set stores value at key with the configured TTL
func (rs *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidParameters.WithDetails("empty key")
	}
	return rs.executeWithRetry(ctx, fmt.Sprintf("set[%s]", key), func() error {
		return rs.client.Set(ctx, key, string(value), rs.ttl).Err()
	})
}

// Delete removes key
func (rs *RedisStore) Delete(ctx context.Context, key string) error {
	return rs.executeWithRetry(ctx, fmt.Sprintf("del[%s]", key), func() error {
		return rs.client.Del(ctx, key).Err()
	})
}

// Ping checks the connection
func (rs *RedisStore) Ping(ctx context.Context) error {
	if err := rs.client.Ping(ctx).Err(); err != nil {
		return ErrStoreFailure.WithDetails("ping").WithCause(err)
	}
	return nil
}

// Close closes the underlying client
func (rs *RedisStore) Close() error { return rs.client.Close() }
