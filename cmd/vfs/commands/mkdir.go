package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"deskvfs/pkg/core"
	"deskvfs/pkg/types"
)

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a folder",
	Long: `Create a folder. By default an existing sibling with the same name is an error;
with --unique the name gets a " (2)", " (3)" ... suffix instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		parent, name, err := splitTarget(ctx, args[0])
		if err != nil {
			return err
		}

		unique, _ := cmd.Flags().GetBool("unique")
		if !unique {
			n, err := FS.Mkdir(ctx, parent, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Created %s (%s)\n", core.Join(parent, n.Name), n.ID)
			return nil
		}

		parentID, err := FS.FolderIDByPath(ctx, parent)
		if err != nil {
			return err
		}
		id, err := FS.MkdirUnique(ctx, parentID, name)
		if err != nil {
			return err
		}
		n, p, err := FS.Find(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Created %s (%s)\n", p, n.ID)
		return nil
	},
}

var touchCmd = &cobra.Command{
	Use:   "touch <path>",
	Short: "Create a file entry (metadata only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		parent, name, err := splitTarget(ctx, args[0])
		if err != nil {
			return err
		}

		mime, _ := cmd.Flags().GetString("mime")
		href, _ := cmd.Flags().GetString("href")
		n, err := FS.CreateFile(ctx, parent, name, core.FileAttrs{Mime: mime, Href: href})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Created %s (%s)\n", core.Join(parent, n.Name), n.ID)
		return nil
	},
}

var mvCmd = &cobra.Command{
	Use:   "mv <id|path> <new-name>",
	Short: "Rename a node in place (its ID is kept)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		n, p, err := resolve(ctx, args[0])
		if err != nil {
			return err
		}

		name := args[1]
		if unique, _ := cmd.Flags().GetBool("unique"); unique {
			name, err = FS.RenameUnique(ctx, n.ID, name)
		} else {
			err = FS.Rename(ctx, n.ID, name)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Renamed %s -> %s\n", p, core.Join(core.ParentPath(p), name))
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id|path>...",
	Short: "Delete nodes and everything beneath them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// 先全部解析，避免删到一半才发现参数有误
		ids := make([]types.NodeID, 0, len(args))
		paths := make([]types.Path, 0, len(args))
		for _, arg := range args {
			n, p, err := resolve(ctx, arg)
			if err != nil {
				return err
			}
			ids = append(ids, n.ID)
			paths = append(paths, p)
		}

		for i, id := range ids {
			if err := FS.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted: %s\n", paths[i])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Removed %d node(s).\n", len(ids))
		return nil
	},
}

func init() {
	mkdirCmd.Flags().BoolP("unique", "u", false, "pick a free name instead of failing on duplicates")
	mvCmd.Flags().BoolP("unique", "u", false, "pick a free name instead of failing on duplicates")
	touchCmd.Flags().String("mime", "", "mime type of the file")
	touchCmd.Flags().String("href", "", "link the file points to")

	rootCmd.AddCommand(mkdirCmd, touchCmd, mvCmd, rmCmd)
}
