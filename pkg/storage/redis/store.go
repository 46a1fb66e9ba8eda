package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"deskvfs/pkg/storage"

	"github.com/redis/go-redis/v9"
)

// Store 把 VFS 快照和时钟状态存进 Redis
// 适合多个进程 (CLI + server) 共享同一份 VFS 状态
type Store struct {
	client *redis.Client
	prefix string
}

type Config struct {
	RedisURL string // 标准连接字符串: redis://<user>:<password>@<host>:<port>/<db>
	Prefix   string // key 前缀，默认 "vfs:kv:"
}

func NewStore(cfg Config) (*Store, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Fail-fast 连接检查
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "vfs:kv:"
	}
	return &Store{client: client, prefix: prefix}, nil
}

func (s *Store) redisKey(key string) string {
	return s.prefix + key
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return val, nil
}

// Set 单条 SET 命令在 Redis 侧是原子的：失败时旧值保持不变
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.redisKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
