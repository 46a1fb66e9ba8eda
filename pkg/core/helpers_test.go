package core

import (
	"testing"

	"deskvfs/pkg/types"

	"github.com/stretchr/testify/require"
)

// sampleTree 构造一棵小树:
// /
// ├── Desktop
// │   └── README.txt
// └── Work
//     └── Projects
func sampleTree() *Node {
	root := NewFolder("root", "/")
	desk := NewFolder("desk", "Desktop")
	desk.Children = []*Node{NewFile("readme", "README.txt", FileAttrs{Mime: "text/plain", Href: "/README.md"})}
	work := NewFolder("work", "Work")
	work.Children = []*Node{NewFolder("proj", "Projects")}
	root.Children = []*Node{desk, work}
	return root
}

// mustRoundTrip 编码再解码，失败直接终止测试
func mustRoundTrip(t *testing.T, c Codec, root *Node) *Node {
	t.Helper()
	data, err := c.Marshal(root)
	require.NoError(t, err)
	out, err := c.Unmarshal(data)
	require.NoError(t, err)
	return out
}

func ids(nodes []*Node) []types.NodeID {
	out := make([]types.NodeID, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}
