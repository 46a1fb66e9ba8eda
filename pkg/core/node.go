package core

import (
	"errors"
	"fmt"
	"strings"

	"deskvfs/pkg/types"
)

var (
	ErrInvalidName   = errors.New("invalid name")
	ErrDuplicateName = errors.New("name already exists")
	ErrDuplicateID   = errors.New("duplicate node identifier")
)

// Node 是 VFS 中的基本实体：文件夹或文件
// 文件只携带元数据，不携带内容
type Node struct {
	ID   types.NodeID `json:"id,omitempty" cbor:"i,omitempty"`
	Name string       `json:"name" cbor:"n"`
	Kind types.Kind   `json:"kind" cbor:"k"`

	// 仅文件夹有效 (顺序无语义，展示时排序)
	Children []*Node `json:"children,omitempty" cbor:"c,omitempty"`

	// 仅文件有效
	Mime string         `json:"mime,omitempty" cbor:"m,omitempty"`
	Href string         `json:"href,omitempty" cbor:"h,omitempty"`
	Meta map[string]any `json:"meta,omitempty" cbor:"x,omitempty"`
}

// FileAttrs 是创建文件时可选的属性
type FileAttrs struct {
	Mime string
	Href string
	Meta map[string]any
}

func NewFolder(id types.NodeID, name string) *Node {
	return &Node{ID: id, Name: name, Kind: types.KindFolder}
}

func NewFile(id types.NodeID, name string, attrs FileAttrs) *Node {
	return &Node{
		ID:   id,
		Name: name,
		Kind: types.KindFile,
		Mime: attrs.Mime,
		Href: attrs.Href,
		Meta: cloneMeta(attrs.Meta),
	}
}

func (n *Node) IsFolder() bool { return n.Kind == types.KindFolder }

// Clone 深拷贝整棵子树
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		ID:   n.ID,
		Name: n.Name,
		Kind: n.Kind,
		Mime: n.Mime,
		Href: n.Href,
		Meta: cloneMeta(n.Meta),
	}
	if n.Children != nil {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Child 按名字精确查找直接子节点
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildBySegment 路径段既可以是名字也可以是 ID
func (n *Node) ChildBySegment(seg string) *Node {
	for _, c := range n.Children {
		if c.Name == seg || string(c.ID) == seg {
			return c
		}
	}
	return nil
}

// HasChildNamed 检查同名兄弟，except 用于重命名时排除自身
func (n *Node) HasChildNamed(name string, except *Node) bool {
	for _, c := range n.Children {
		if c != except && c.Name == name {
			return true
		}
	}
	return false
}

// RemoveChild 按 ID 删除直接子节点，返回是否删除成功
func (n *Node) RemoveChild(id types.NodeID) bool {
	for i, c := range n.Children {
		if c.ID == id {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return true
		}
	}
	return false
}

// Count 统计子树节点数 (含自身)
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	count := 1
	for _, c := range n.Children {
		count += c.Count()
	}
	return count
}

// WalkFunc 在自顶向下遍历时被调用，parent 对根节点为 nil
type WalkFunc func(p types.Path, node, parent *Node) error

// Walk 先序遍历，保证父节点先于子节点被访问
func Walk(root *Node, fn WalkFunc) error {
	return walk(types.RootPath, root, nil, fn)
}

func walk(p types.Path, n, parent *Node, fn WalkFunc) error {
	if err := fn(p, n, parent); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := walk(Join(p, c.Name), c, n, fn); err != nil {
			return err
		}
	}
	return nil
}

// CheckName 名字非空且不含路径分隔符
func CheckName(name string) error {
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Validate 检查整棵树的结构不变量：
// ID 全局唯一、同目录下名字唯一、名字合法、Kind 合法
// 根节点名字不做检查
func Validate(root *Node) error {
	seen := make(map[types.NodeID]types.Path)
	return Walk(root, func(p types.Path, n, parent *Node) error {
		if !n.Kind.IsValid() {
			return fmt.Errorf("invalid kind %q at %s", n.Kind, p)
		}
		if n.Kind == types.KindFile && len(n.Children) > 0 {
			return fmt.Errorf("file %s has children", p)
		}
		if parent != nil {
			if err := CheckName(n.Name); err != nil {
				return err
			}
		}
		if !n.ID.IsZero() {
			if prev, dup := seen[n.ID]; dup {
				return fmt.Errorf("%w: %s at %s and %s", ErrDuplicateID, n.ID, prev, p)
			}
			seen[n.ID] = p
		}
		names := make(map[string]struct{}, len(n.Children))
		for _, c := range n.Children {
			if _, dup := names[c.Name]; dup {
				return fmt.Errorf("%w: %q in %s", ErrDuplicateName, c.Name, p)
			}
			names[c.Name] = struct{}{}
		}
		return nil
	})
}

func cloneMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return cloneMeta(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	case []byte:
		return append([]byte(nil), x...)
	default:
		return x
	}
}
