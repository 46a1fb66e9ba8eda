// Package id 生成 VFS 节点标识符
//
// 两类 ID:
//   - 种子 ID: 由规范化路径派生的 UUID v5，同一路径永远得到同一个 ID
//   - 实时 ID: 用户新建节点使用的 ULID，同一进程内严格递增
package id

import (
	"github.com/google/uuid"

	"deskvfs/pkg/core"
	"deskvfs/pkg/types"
)

// SeedID 对规范化路径计算 UUID v5 (DNS 命名空间, SHA-1)
// 纯函数，调用方传入未规范化的路径也会先被规范化
func SeedID(p types.Path) types.NodeID {
	canonical := core.NormalizePath(string(p))
	return types.NodeID(uuid.NewSHA1(uuid.NameSpaceDNS, []byte(canonical)).String())
}
