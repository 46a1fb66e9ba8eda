package exporter

import (
	"fmt"
	"io"
	"text/tabwriter"

	"deskvfs/pkg/core"
	"deskvfs/pkg/seed"
	"deskvfs/pkg/types"
)

// PrintListing 以 ls -l 的风格打印目录内容
func PrintListing(w io.Writer, nodes []*core.Node) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "KIND\tID\tNAME\tMIME\n")
	for _, n := range nodes {
		name := n.Name
		if n.IsFolder() {
			name += "/"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.Kind, n.ID, name, orDash(n.Mime))
	}
	return tw.Flush()
}

// PrintNode 打印单个节点的详细信息
func PrintNode(w io.Writer, n *core.Node, p types.Path) {
	fmt.Fprintf(w, "ID:    %s\n", n.ID)
	fmt.Fprintf(w, "Name:  %s\n", n.Name)
	fmt.Fprintf(w, "Kind:  %s\n", n.Kind)
	if p != "" {
		fmt.Fprintf(w, "Path:  %s\n", p)
	}
	if n.IsFolder() {
		fmt.Fprintf(w, "Items: %d\n", len(n.Children))
		return
	}
	fmt.Fprintf(w, "Mime:  %s\n", orDash(n.Mime))
	fmt.Fprintf(w, "Href:  %s\n", orDash(n.Href))
	for k, v := range n.Meta {
		fmt.Fprintf(w, "Meta:  %s=%v\n", k, v)
	}
}

// PrintTree 以 tree 命令的风格打印子树，同级按列表顺序排序
func PrintTree(w io.Writer, root *core.Node) {
	fmt.Fprintln(w, root.Name)
	printChildren(w, root, "")
}

func printChildren(w io.Writer, n *core.Node, prefix string) {
	children := append([]*core.Node(nil), n.Children...)
	seed.SortNodes(children)
	for i, c := range children {
		branch, next := "├── ", "│   "
		if i == len(children)-1 {
			branch, next = "└── ", "    "
		}
		name := c.Name
		if c.IsFolder() {
			name += "/"
		}
		fmt.Fprintf(w, "%s%s%s\n", prefix, branch, name)
		printChildren(w, c, prefix+next)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func fmtSize(s int64) string {
	if s < 1024 {
		return fmt.Sprintf("%dB", s)
	} else if s < 1024*1024 {
		return fmt.Sprintf("%.1fKB", float64(s)/1024)
	}
	return fmt.Sprintf("%.2fMB", float64(s)/1024/1024)
}
