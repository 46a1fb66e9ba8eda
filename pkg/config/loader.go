package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load 初始化 Viper 配置
// cfgFile: 可选，用户显式指定的配置文件路径
func Load(cfgFile string) error {
	// 1. 设置默认值
	setDefaults()

	// 2. 配置搜索路径
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		// 搜索顺序：当前目录 -> ./.vfs -> ~/.vfs
		viper.AddConfigPath(".")
		viper.AddConfigPath(".vfs")
		viper.AddConfigPath(filepath.Join(home, ".vfs"))

		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// 3. 环境变量 (VFS_STORAGE_TYPE, VFS_SEED_URL 等)
	viper.SetEnvPrefix("VFS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 4. 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		// 没找到配置文件不算错，可能全靠默认值和环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("fatal error config file: %w", err)
		}
	}

	return nil
}

// Used 返回实际读取的配置文件，没有时为空
func Used() string {
	return viper.ConfigFileUsed()
}

func setDefaults() {
	// 存储
	wd, _ := os.Getwd()
	viper.SetDefault("storage.type", "disk")
	viper.SetDefault("storage.path", filepath.Join(wd, ".vfs", "store"))
	viper.SetDefault("storage.key", "website-os.vfs")
	viper.SetDefault("storage.codec", "json")

	// 种子来源，全部为空时使用内置树
	viper.SetDefault("seed.url", "")
	viper.SetDefault("seed.file", "")
	viper.SetDefault("seed.dir", "")
	viper.SetDefault("seed.ignore", []string{})
	viper.SetDefault("seed.timeout", 5*time.Second)

	// 数据库
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("sqlite.path", filepath.Join(wd, ".vfs", "vfs.db"))

	// Redis / S3
	viper.SetDefault("redis.url", "redis://localhost:6379/0")
	viper.SetDefault("redis.prefix", "vfs:kv:")
	viper.SetDefault("s3.region", "us-east-1")

	// 日志
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")

	// 服务端
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.metrics_addr", ":9090")
}
