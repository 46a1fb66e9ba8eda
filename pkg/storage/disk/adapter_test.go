package disk

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"deskvfs/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskAdapter(t *testing.T) {
	// 1. 创建临时测试目录
	tmpDir := t.TempDir()
	store, err := NewAdapter(tmpDir)
	require.NoError(t, err)

	ctx := context.Background()

	// 2. 不存在的 key
	_, err = store.Get(ctx, "website-os.vfs")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// 3. 测试 Set
	err = store.Set(ctx, "website-os.vfs", []byte(`{"name":"/"}`))
	require.NoError(t, err)

	// 验证文件是否真的存在于物理磁盘
	_, err = os.Stat(filepath.Join(tmpDir, "website-os.vfs"))
	assert.NoError(t, err, "文件应该存在于根目录")

	// 4. 测试 Get
	data, err := store.Get(ctx, "website-os.vfs")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"/"}`, string(data))

	// 5. 覆盖写
	require.NoError(t, store.Set(ctx, "website-os.vfs", []byte("v2")))
	data, err = store.Get(ctx, "website-os.vfs")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))

	// 6. 删除 (幂等)
	require.NoError(t, store.Remove(ctx, "website-os.vfs"))
	require.NoError(t, store.Remove(ctx, "website-os.vfs"))
	_, err = store.Get(ctx, "website-os.vfs")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDiskAdapter_EscapesKeys(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewAdapter(tmpDir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "vfs:deviceNonce", []byte("abcd")))
	require.NoError(t, store.Set(ctx, "a/b", []byte("slash")))

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		assert.False(t, e.IsDir(), "key 中的 '/' 不应该产生子目录")
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"vfs%3AdeviceNonce", "a%2Fb"}, names)

	got, err := store.Get(ctx, "a/b")
	require.NoError(t, err)
	assert.Equal(t, "slash", string(got))
}

func TestDiskAdapter_NoTempLeftovers(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewAdapter(tmpDir)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Set(context.Background(), "k", []byte("v")))
	}

	matches, err := filepath.Glob(filepath.Join(tmpDir, "temp-*"))
	require.NoError(t, err)
	assert.Empty(t, matches, "临时文件应在写入后清理")
}
