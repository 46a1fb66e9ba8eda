// pkg/types/common.go
package types

import "strings"

// NodeID 是节点的稳定标识符
// 种子节点: UUID v5 (36 字符, 带连字符)
// 用户新建节点: ULID (26 字符, Crockford Base32)
type NodeID string

func (id NodeID) String() string { return string(id) }
func (id NodeID) IsZero() bool   { return id == "" }

// IsSeed 粗略判断是否为路径派生的 UUID 形式
func (id NodeID) IsSeed() bool { return len(id) == 36 && strings.Count(string(id), "-") == 4 }

// IsLive 粗略判断是否为 ULID 形式
func (id NodeID) IsLive() bool { return len(id) == 26 }

// Path 是规范化后的正斜杠路径，例如 "/Work/Projects"
// 根目录是 "/"
type Path string

const RootPath Path = "/"

func (p Path) String() string { return string(p) }
func (p Path) IsRoot() bool   { return p == RootPath }

// Kind 区分文件夹和文件
type Kind string

const (
	KindFolder Kind = "folder"
	KindFile   Kind = "file"
)

func (k Kind) IsValid() bool { return k == KindFolder || k == KindFile }
