package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"deskvfs/pkg/app"
	"deskvfs/pkg/client"
	"deskvfs/pkg/config"
	"deskvfs/pkg/logging"
)

var (
	cfgFile string
	// 全局实例，供子命令使用
	// DV 在 --remote 模式下为 nil，只有 FS 可用
	DV *app.App
	FS Backend
)

var rootCmd = &cobra.Command{
	Use:           "vfs",
	Short:         "deskvfs: a persisted virtual desktop file system",
	SilenceUsage:  true,
	SilenceErrors: true,
	// PersistentPreRunE 会在所有子命令执行前运行
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Init(logging.Config{
			Level:      viper.GetString("log.level"),
			Format:     viper.GetString("log.format"),
			OutputPath: "stderr",
		}); err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}

		// init 自己负责组装环境
		if cmd.Name() == "init" {
			return nil
		}
		return connect(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		_ = logging.Sync()
		return disconnect()
	},
}

// Execute 是入口
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "❌", err)
		_ = disconnect()
	}
	return err
}

// connect 按 --remote 选择后端：远端 gRPC 或本地存储
func connect(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if addr := viper.GetString("client.remote"); addr != "" {
		c, err := client.New(addr)
		if err != nil {
			return err
		}
		DV, FS = nil, c
		return nil
	}

	a, err := app.NewApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize deskvfs: %w\n(Did you run 'vfs init'?)", err)
	}
	DV, FS = a, NewLocal(a)
	return nil
}

func disconnect() error {
	if FS == nil {
		return nil
	}
	err := FS.Close()
	DV, FS = nil, nil
	return err
}

func init() {
	// 在初始化时，加载配置
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vfs/config.yaml)")

	// 既可以写在 yaml 里，也可以用参数覆盖
	flags.String("storage-type", "", "storage backend: memory, disk, sqlite, postgres, redis, s3")
	flags.String("storage-path", "", "directory for the disk store")
	flags.String("remote", "", "address of a vfs-server; operations go over gRPC when set")
	flags.String("cwd", "/", "current directory inside the desktop (see 'vfs cd')")

	bind := map[string]string{
		"storage.type":  "storage-type",
		"storage.path":  "storage-path",
		"client.remote": "remote",
		"client.cwd":    "cwd",
	}
	for key, flag := range bind {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			fmt.Println("Failed to bind flag:", err)
			os.Exit(1)
		}
	}
}

// initConfig 读取配置文件和环境变量
func initConfig() {
	if err := config.Load(cfgFile); err != nil {
		fmt.Println("Config error:", err)
		os.Exit(1)
	}
}
