package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	wbfredis "github.com/wb-go/wbf/redis"
	wbfretry "github.com/wb-go/wbf/retry"
)

// loadStrategy covers reads only. Writes are retried by the caller.
var loadStrategy = wbfretry.Strategy{
	Attempts: 3,
	Delay:    100 * time.Millisecond,
	Backoff:  2,
}

type RedisStorage struct {
	client *redis.Client
	logger *zerolog.Logger
}

func NewRedisStorage(addr string, logger *zerolog.Logger) (*RedisStorage, error) {
	wbfClient := wbfredis.New(addr, "", 0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	connectStrategy := wbfretry.Strategy{
		Attempts: 5,
		Delay:    1 * time.Second,
		Backoff:  2,
	}

	err := wbfretry.DoContext(ctx, connectStrategy, func() error {
		return wbfClient.Ping(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info().Str("addr", addr).Msg("connected to Redis")

	return &RedisStorage{
		client: wbfClient.Client,
		logger: logger,
	}, nil
}

func (s *RedisStorage) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte

	err := wbfretry.DoContext(ctx, loadStrategy, func() error {
		result, getErr := s.client.Get(ctx, key).Bytes()
		if getErr != nil && !errors.Is(getErr, redis.Nil) {
			return getErr
		}
		data = result
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load slot %s: %w", key, err)
	}

	return data, nil
}

func (s *RedisStorage) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save slot %s: %w", key, err)
	}
	return nil
}

func (s *RedisStorage) Close() error {
	return s.client.Close()
}
