package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a desktop in the configured store",
	Long: `Create the local store directory (for the disk backend) and hydrate the desktop.
An existing snapshot is kept; otherwise the tree comes from the configured seed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		// 1. disk 存储需要先建目录
		if viper.GetString("storage.type") == "disk" {
			storePath := viper.GetString("storage.path")
			if err := os.MkdirAll(storePath, 0755); err != nil {
				return fmt.Errorf("failed to create store directory: %w", err)
			}
			abs, _ := filepath.Abs(storePath)
			fmt.Fprintf(out, "📁 Store: %s\n", abs)
		}

		// 2. 组装并水合
		if err := connect(cmd.Context()); err != nil {
			return err
		}
		root, err := FS.Load(cmd.Context())
		if err != nil {
			return err
		}

		source := "server"
		if DV != nil {
			source = DV.VFS.Source()
		}
		fmt.Fprintf(out, "✅ Desktop ready (%s, %d nodes)\n", source, root.Count())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
