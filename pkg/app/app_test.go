package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deskvfs/pkg/seed"
	"deskvfs/pkg/storage/disk"
	"deskvfs/pkg/storage/memory"
	"deskvfs/pkg/storage/sqldb"
)

func TestInitStore_Disk(t *testing.T) {
	viper.Reset()
	viper.Set("storage.type", "disk")
	viper.Set("storage.path", filepath.Join(t.TempDir(), "store"))

	store, err := initStore(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &disk.Adapter{}, store)
}

func TestInitStore_Memory(t *testing.T) {
	viper.Reset()
	viper.Set("storage.type", "memory")

	store, err := initStore(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, store)
}

func TestInitStore_SQLite(t *testing.T) {
	viper.Reset()
	viper.Set("storage.type", "sqlite")
	viper.Set("sqlite.path", filepath.Join(t.TempDir(), "vfs.db"))

	store, err := initStore(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &sqldb.Store{}, store)
	require.NoError(t, closeStore(store))
}

func TestInitStore_S3_MissingBucket(t *testing.T) {
	viper.Reset()
	viper.Set("storage.type", "s3")
	// 故意不设置 bucket

	store, err := initStore(context.Background())
	assert.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), "bucket is required")
}

func TestInitStore_UnknownType(t *testing.T) {
	viper.Reset()
	viper.Set("storage.type", "ftp")

	store, err := initStore(context.Background())
	assert.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), "unsupported storage type")
}

func TestInitSeedSource(t *testing.T) {
	viper.Reset()
	assert.Nil(t, initSeedSource())

	viper.Set("seed.dir", "/srv/seed")
	assert.IsType(t, &seed.DirSource{}, initSeedSource())

	viper.Set("seed.file", "/srv/vfs.json")
	assert.IsType(t, &seed.FileSource{}, initSeedSource())

	viper.Set("seed.url", "http://example.invalid/vfs.json")
	assert.IsType(t, &seed.HTTPSource{}, initSeedSource())
}

func TestNewApp_EndToEnd(t *testing.T) {
	viper.Reset()
	viper.Set("storage.type", "disk")
	viper.Set("storage.path", filepath.Join(t.TempDir(), "store"))
	viper.Set("storage.key", "website-os.vfs")
	viper.Set("storage.codec", "cbor")

	ctx := context.Background()
	a, err := NewApp(ctx)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.VFS.Load(ctx)
	require.NoError(t, err)
	made, err := a.VFS.Mkdir(ctx, "/", "Games")
	require.NoError(t, err)

	// 重新组装，快照和 ID 时钟都在磁盘上
	b, err := NewApp(ctx)
	require.NoError(t, err)
	defer b.Close()
	_, err = b.VFS.Load(ctx)
	require.NoError(t, err)

	got, err := b.VFS.FindByID(made.ID)
	require.NoError(t, err)
	assert.Equal(t, "Games", got.Name)
	assert.Equal(t, a.IDs.Nonce(), b.IDs.Nonce())
}

func TestNewApp_BadCodec(t *testing.T) {
	viper.Reset()
	viper.Set("storage.type", "memory")
	viper.Set("storage.codec", "xml")

	_, err := NewApp(context.Background())
	assert.Error(t, err)
}
