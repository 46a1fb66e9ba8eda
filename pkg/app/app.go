// pkg/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"deskvfs/pkg/core"
	"deskvfs/pkg/id"
	"deskvfs/pkg/seed"
	"deskvfs/pkg/storage"
	"deskvfs/pkg/storage/disk"
	"deskvfs/pkg/storage/memory"
	"deskvfs/pkg/storage/redis"
	"deskvfs/pkg/storage/s3"
	"deskvfs/pkg/storage/sqldb"
	"deskvfs/pkg/vfs"
)

// App 是整个应用程序的依赖容器
// 它持有所有"单例"服务
type App struct {
	Store storage.Store
	Seeds *seed.Loader
	IDs   *id.Generator
	VFS   *vfs.VFS
}

// NewApp 按 Viper 配置组装依赖，但不知道具体的 CLI 命令
// 返回的 VFS 尚未水合，调用方按需 Load
func NewApp(ctx context.Context) (*App, error) {
	// 1. 存储层
	store, err := initStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	// 2. 快照编码
	codec, err := core.CodecByName(viper.GetString("storage.codec"))
	if err != nil {
		closeStore(store)
		return nil, err
	}

	// 3. 种子来源 + ID 生成器 (时钟状态与快照放在同一个存储里)
	seeds := seed.NewLoader(initSeedSource())
	ids := id.NewGenerator(ctx, store)

	v := vfs.New(store, seeds, ids,
		vfs.WithKey(viper.GetString("storage.key")),
		vfs.WithCodec(codec),
	)

	return &App{Store: store, Seeds: seeds, IDs: ids, VFS: v}, nil
}

// Close 释放存储持有的外部连接
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	return closeStore(a.Store)
}

func closeStore(s storage.Store) error {
	if c, ok := s.(storage.Closer); ok {
		return c.Close()
	}
	return nil
}

// initStore 根据 storage.type 选择适配器
func initStore(ctx context.Context) (storage.Store, error) {
	storeType := viper.GetString("storage.type")

	switch storeType {
	case "memory":
		return memory.NewStore(), nil

	case "disk", "":
		path := viper.GetString("storage.path")
		if path == "" {
			return nil, errors.New("storage path not set")
		}
		adapter, err := disk.NewAdapter(path)
		if err != nil {
			return nil, err
		}
		return adapter, nil

	case "sqlite":
		db, err := sqldb.NewSQLite(ctx, viper.GetString("sqlite.path"))
		if err != nil {
			return nil, err
		}
		return sqldb.NewStore(db), nil

	case "postgres":
		db, err := sqldb.NewPostgres(ctx, sqldb.Config{
			Host:     viper.GetString("database.host"),
			Port:     viper.GetInt("database.port"),
			User:     viper.GetString("database.user"),
			Password: viper.GetString("database.password"),
			DBName:   viper.GetString("database.name"),
			SSLMode:  viper.GetString("database.sslmode"),
		})
		if err != nil {
			return nil, err
		}
		return sqldb.NewStore(db), nil

	case "redis":
		rs, err := redis.NewStore(redis.Config{
			RedisURL: viper.GetString("redis.url"),
			Prefix:   viper.GetString("redis.prefix"),
		})
		if err != nil {
			return nil, err
		}
		return rs, nil

	case "s3":
		adapter, err := s3.NewAdapter(ctx, s3.Config{
			Endpoint:        viper.GetString("s3.endpoint"),
			Region:          viper.GetString("s3.region"),
			Bucket:          viper.GetString("s3.bucket"),
			Prefix:          viper.GetString("s3.prefix"),
			AccessKeyID:     viper.GetString("s3.access_key"),
			SecretAccessKey: viper.GetString("s3.secret_key"),
		})
		if err != nil {
			return nil, err
		}
		return adapter, nil

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storeType)
	}
}

// initSeedSource 按优先级 url > file > dir 选择种子来源，都没有时返回 nil (内置树)
func initSeedSource() seed.Source {
	switch {
	case viper.GetString("seed.url") != "":
		return seed.NewHTTPSource(viper.GetString("seed.url"), viper.GetDuration("seed.timeout"))
	case viper.GetString("seed.file") != "":
		return &seed.FileSource{Path: viper.GetString("seed.file")}
	case viper.GetString("seed.dir") != "":
		return &seed.DirSource{
			Root:   viper.GetString("seed.dir"),
			Ignore: viper.GetStringSlice("seed.ignore"),
		}
	}
	return nil
}
