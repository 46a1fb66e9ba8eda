package seed

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"deskvfs/pkg/core"
	"deskvfs/pkg/types"
)

var (
	ErrPathNotFound = errors.New("path not found")
	ErrPathIsFile   = errors.New("path is a file")
	ErrNodeNotFound = errors.New("node not found")
)

// Resolve 沿路径逐段查找节点
// 每一段既可以是子节点名字，也可以是子节点 ID
// 中途遇到文件即视为不存在
func Resolve(root *core.Node, p types.Path) (*core.Node, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, p)
	}
	cur := root
	segs := core.Segments(p)
	for i, seg := range segs {
		if !cur.IsFolder() {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, p)
		}
		next := cur.ChildBySegment(seg)
		if next == nil {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, p)
		}
		if !next.IsFolder() && i != len(segs)-1 {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, p)
		}
		cur = next
	}
	return cur, nil
}

// List 返回目录下的子节点：文件夹在前，然后按名字字节序 (区分大小写)
// 返回的切片是新分配的，但元素指向原树，调用方不得修改
func List(root *core.Node, p types.Path) ([]*core.Node, error) {
	n, err := Resolve(root, p)
	if err != nil {
		return nil, err
	}
	if !n.IsFolder() {
		return nil, fmt.Errorf("%w: %s", ErrPathIsFile, core.NormalizePath(string(p)))
	}
	out := make([]*core.Node, len(n.Children))
	copy(out, n.Children)
	SortNodes(out)
	return out, nil
}

// SortNodes 原地排序：文件夹在前，同类按名字
func SortNodes(nodes []*core.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.IsFolder() != b.IsFolder() {
			return a.IsFolder()
		}
		return strings.Compare(a.Name, b.Name) < 0
	})
}

// Navigate 计算 cd 之后的路径，不检查目标是否存在
//   - ".." 或 "up" 回到上一级，根目录的上一级仍是根
//   - 以 "/" 开头的段视为绝对路径
//   - 其它情况拼接到当前路径之后
func Navigate(current types.Path, segment string) types.Path {
	cur := core.NormalizePath(string(current))
	switch {
	case segment == ".." || segment == "up":
		return core.ParentPath(cur)
	case strings.HasPrefix(segment, "/"):
		return core.NormalizePath(segment)
	case segment == "" || segment == ".":
		return cur
	}
	return core.NormalizePath(string(cur) + "/" + segment)
}

// FindByID 广度优先查找节点
// 同一 ID 出现多次属于内部一致性错误，返回 core.ErrDuplicateID 而不是任取其一
func FindByID(root *core.Node, id types.NodeID) (*core.Node, error) {
	if root == nil || id.IsZero() {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	var found *core.Node
	queue := []*core.Node{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.ID == id {
			if found != nil {
				return nil, fmt.Errorf("%w: %s", core.ErrDuplicateID, id)
			}
			found = cur
		}
		queue = append(queue, cur.Children...)
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return found, nil
}

// FindParent 返回 id 对应节点的父节点，根节点没有父节点
func FindParent(root *core.Node, id types.NodeID) (*core.Node, error) {
	var parent *core.Node
	hits := 0
	err := core.Walk(root, func(_ types.Path, n, p *core.Node) error {
		if n.ID == id {
			hits++
			parent = p
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	switch {
	case hits == 0:
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	case hits > 1:
		return nil, fmt.Errorf("%w: %s", core.ErrDuplicateID, id)
	}
	return parent, nil
}

// PathOf 返回节点的规范路径
func PathOf(root *core.Node, id types.NodeID) (types.Path, error) {
	var out types.Path
	hits := 0
	err := core.Walk(root, func(p types.Path, n, _ *core.Node) error {
		if n.ID == id {
			hits++
			out = p
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	switch {
	case hits == 0:
		return "", fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	case hits > 1:
		return "", fmt.Errorf("%w: %s", core.ErrDuplicateID, id)
	}
	return out, nil
}
