package progress

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps the document under a single Redis key.
type RedisStorage struct {
	client redis.Cmdable
	key    string
}

func NewRedisStorage(client redis.Cmdable, key string) *RedisStorage {
	return &RedisStorage{
		client: client,
		key:    key,
	}
}

func (s *RedisStorage) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis.Get(%s) > %w", s.key, err)
	}
	return data, nil
}

func (s *RedisStorage) Save(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis.Set(%s) > %w", s.key, err)
	}
	return nil
}
