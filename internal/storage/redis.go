package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisOptions configures DialRedis
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Redis stores values under a key prefix on a Redis server. Useful when
// several terminals share one wallet.
type Redis struct {
	client redis.Cmdable
	prefix string
	logger *zap.Logger
}

// NewRedis wraps an existing client
func NewRedis(client redis.Cmdable, prefix string, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, prefix: prefix, logger: logger}
}

// DialRedis connects to the server and checks it answers PING
func DialRedis(ctx context.Context, opts RedisOptions, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("storage: ping redis at %s: %w", opts.Addr, err)
	}
	return NewRedis(client, opts.Prefix, logger), nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get key from redis", zap.String("key", r.key(key)), zap.Error(err))
		return "", err
	}
	return value, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		r.logger.Error("Failed to set key in redis", zap.String("key", r.key(key)), zap.Error(err))
		return err
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		r.logger.Error("Failed to delete key from redis", zap.String("key", r.key(key)), zap.Error(err))
		return err
	}
	return nil
}

// Close closes the underlying client when it owns a connection pool
func (r *Redis) Close() error {
	if c, ok := r.client.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (r *Redis) key(key string) string {
	return r.prefix + key
}
