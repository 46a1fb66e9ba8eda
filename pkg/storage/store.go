package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("key not found")
)

// Store defines the key-value interface the VFS persists into.
// Implementations can be in-memory, local disk, SQL, Redis or object storage.
//
// Every call is expected to complete (or fail) before returning; the VFS relies
// on that to keep its snapshot-and-swap commits atomic.
type Store interface {
	// Get 读取 key 对应的完整值，不存在时返回 ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 整体覆盖 key 的值
	// 返回错误时，实现必须保证原值未被破坏
	Set(ctx context.Context, key string, value []byte) error

	// Remove 删除 key，key 不存在不算错误
	Remove(ctx context.Context, key string) error
}

// Closer 由持有外部连接的实现提供 (Redis, SQL)
type Closer interface {
	Close() error
}
