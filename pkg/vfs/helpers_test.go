package vfs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"deskvfs/pkg/core"
	"deskvfs/pkg/id"
	"deskvfs/pkg/seed"
	"deskvfs/pkg/storage/memory"
	"deskvfs/pkg/types"
)

var errQuota = errors.New("quota exceeded")

// failingStore 包装内存存储，按需让写操作失败
type failingStore struct {
	*memory.Store
	failSet    atomic.Bool
	failRemove atomic.Bool
	failGet    atomic.Bool
}

func newFailingStore() *failingStore {
	return &failingStore{Store: memory.NewStore()}
}

func (s *failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.failGet.Load() {
		return nil, errors.New("connection refused")
	}
	return s.Store.Get(ctx, key)
}

func (s *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if s.failSet.Load() {
		return errQuota
	}
	return s.Store.Set(ctx, key, value)
}

func (s *failingStore) Remove(ctx context.Context, key string) error {
	if s.failRemove.Load() {
		return errQuota
	}
	return s.Store.Remove(ctx, key)
}

// newTestVFS 使用内置种子树；ID 生成器的时钟状态放在独立的内存存储里
func newTestVFS(t *testing.T, store *failingStore, opts ...Option) *VFS {
	t.Helper()
	ctx := context.Background()
	gen := id.NewGenerator(ctx, memory.NewStore())
	return New(store, seed.NewLoader(nil), gen, opts...)
}

func mustLoad(t *testing.T, v *VFS) *core.Node {
	t.Helper()
	root, err := v.Load(context.Background())
	require.NoError(t, err)
	return root
}

func mustList(t *testing.T, v *VFS, p types.Path) []*core.Node {
	t.Helper()
	nodes, err := v.List(p)
	require.NoError(t, err)
	return nodes
}

func names(nodes []*core.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

type entry struct {
	ID   types.NodeID
	Name string
}

func entries(nodes []*core.Node) []entry {
	out := make([]entry, len(nodes))
	for i, n := range nodes {
		out[i] = entry{ID: n.ID, Name: n.Name}
	}
	return out
}
