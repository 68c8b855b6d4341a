// Package kvstore 提供基于 Redis 的键值持久化
package kvstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/paike/paike/internal/config"
	"github.com/paike/paike/pkg/history"
	"github.com/paike/paike/pkg/logger"
)

// Store Redis 键值存储，实现历史管理器的持久化抽象
type Store struct {
	client *redis.Client
}

var _ history.Store = (*Store)(nil)

// New 创建 Redis 存储并验证连通性
func New(cfg *config.RedisConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info().
		Str("addr", cfg.Addr()).
		Int("db", cfg.DB).
		Msg("Redis 连接成功")

	return &Store{client: client}, nil
}

// Set 写入键值，expiry 为 0 时不过期
func (s *Store) Set(ctx context.Context, key, value string, expiry time.Duration) error {
	return s.client.Set(ctx, key, value, expiry).Err()
}

// Get 读取键值，键不存在时返回空串
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

// Remove 删除键
func (s *Store) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Close 关闭连接
func (s *Store) Close() error {
	return s.client.Close()
}
