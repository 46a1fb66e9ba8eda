package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"deskvfs/pkg/exporter"
)

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List a folder (folders first, then by name)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := absPath(ctx, firstArg(args))
		if err != nil {
			return err
		}
		nodes, err := FS.List(ctx, p)
		if err != nil {
			return err
		}
		if len(nodes) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "(empty) %s\n", p)
			return nil
		}
		return exporter.PrintListing(cmd.OutOrStdout(), nodes)
	},
}

var cdCmd = &cobra.Command{
	Use:   "cd [segment]",
	Short: "Print the folder reached from --cwd",
	Long: `Resolve a navigation segment ("..", "up", an absolute path or a child name) against
--cwd and print the result. Use it as: export VFS_CLIENT_CWD=$(vfs cd Work)`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := FS.Navigate(ctx, cwd(), firstArg(args))
		if err != nil {
			return err
		}
		// 只允许进入存在的文件夹
		if _, err := FS.FolderIDByPath(ctx, p); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), p)
		return nil
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree [path|id]",
	Short: "Print a subtree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if len(args) == 0 && cwd().IsRoot() {
			root, digest, err := FS.Tree(ctx)
			if err != nil {
				return err
			}
			exporter.PrintTree(cmd.OutOrStdout(), root)
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d nodes, digest %s\n", root.Count(), digest[:12])
			return nil
		}

		n, _, err := resolve(ctx, firstArg(args))
		if err != nil {
			return err
		}
		exporter.PrintTree(cmd.OutOrStdout(), n)
		return nil
	},
}

var findCmd = &cobra.Command{
	Use:   "find <id|path>",
	Short: "Show a node and where it lives",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, p, err := resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		exporter.PrintNode(cmd.OutOrStdout(), n, p)
		return nil
	},
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func init() {
	rootCmd.AddCommand(lsCmd, cdCmd, treeCmd, findCmd)
}
