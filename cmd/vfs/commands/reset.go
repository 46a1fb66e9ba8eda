package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"deskvfs/pkg/core"
	"deskvfs/pkg/exporter"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard every change and start again from the seed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := FS.Reset(ctx); err != nil {
			return err
		}
		root, digest, err := FS.Tree(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Desktop reset (%d nodes, digest %s)\n", root.Count(), digest[:12])
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the tree as a seed document or a real directory",
	Long: `Write the current tree as a JSON seed document (--format json, the default) or
materialize it as folders and empty files under --out (--format dir).
Both outputs can be fed back as seed.file / seed.dir.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, _, err := FS.Tree(cmd.Context())
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		switch format {
		case "json":
			if out == "" {
				return exporter.ExportJSON(root, cmd.OutOrStdout())
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := exporter.ExportJSON(root, f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Exported %d nodes to %s\n", root.Count(), out)
			return nil

		case "dir":
			if out == "" {
				return fmt.Errorf("--out is required for --format dir")
			}
			count := 0
			err := exporter.RestoreTree(root, out, func(string, *core.Node) { count++ })
			if err != nil {
				return err
			}
			abs, _ := filepath.Abs(out)
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Restored %d nodes into %s\n", count, abs)
			return nil

		default:
			return fmt.Errorf("unsupported export format: %s", format)
		}
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show what is actually persisted in the store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if DV == nil {
			return fmt.Errorf("inspect reads the store directly and is not available with --remote")
		}
		exp := exporter.NewExporter(DV.Store)
		return exp.PrintSnapshot(cmd.Context(), viper.GetString("storage.key"), cmd.OutOrStdout())
	},
}

func init() {
	exportCmd.Flags().String("format", "json", "json or dir")
	exportCmd.Flags().StringP("out", "o", "", "output file (json) or directory (dir)")

	rootCmd.AddCommand(resetCmd, exportCmd, inspectCmd)
}
