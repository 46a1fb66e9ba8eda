package memory

import (
	"context"
	"testing"

	"deskvfs/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	// 1. 不存在
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// 2. 写入 & 读取
	require.NoError(t, s.Set(ctx, "k", []byte("v1")))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	// 3. 返回值是副本
	got[0] = 'X'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, []byte("v1"), again)

	// 4. 删除 (幂等)
	require.NoError(t, s.Remove(ctx, "k"))
	require.NoError(t, s.Remove(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Empty(t, s.Snapshot())
}
