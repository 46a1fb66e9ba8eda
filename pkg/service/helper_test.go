package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"deskvfs/pkg/app"
	"deskvfs/pkg/id"
	"deskvfs/pkg/seed"
	"deskvfs/pkg/storage/sqldb"
	"deskvfs/pkg/vfs"
)

// setupTestApp 构建一个隔离的 App：内存 SQLite 存储 + 内置种子树
func setupTestApp(t *testing.T) *app.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	conn := sqldb.NewWithConn(db)
	require.NoError(t, conn.AutoMigrate(&sqldb.Entry{}))
	store := sqldb.NewStore(conn)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	seeds := seed.NewLoader(nil)
	ids := id.NewGenerator(ctx, store)

	return &app.App{
		Store: store,
		Seeds: seeds,
		IDs:   ids,
		VFS:   vfs.New(store, seeds, ids),
	}
}

func setupTestService(t *testing.T) (*VFSService, *app.App) {
	t.Helper()
	a := setupTestApp(t)
	_, err := a.VFS.Load(context.Background())
	require.NoError(t, err)
	return NewVFSService(a), a
}
