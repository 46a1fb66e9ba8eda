package core

import (
	"strings"

	"deskvfs/pkg/types"
)

// NormalizePath 规范化路径：
// 空串 -> "/"，补齐前导斜杠，折叠重复斜杠，去掉尾部斜杠 (根除外)
// 注意：这里不解析 "." 和 ".."，它们只在 Navigate 中有意义
func NormalizePath(raw string) types.Path {
	if raw == "" {
		return types.RootPath
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}

	var b strings.Builder
	b.Grow(len(raw))
	prevSlash := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(c)
	}

	out := b.String()
	if out != "/" {
		out = strings.TrimSuffix(out, "/")
	}
	return types.Path(out)
}

// Segments 把路径拆成名字段，根目录返回空切片
func Segments(p types.Path) []string {
	n := NormalizePath(string(p))
	if n.IsRoot() {
		return nil
	}
	return strings.Split(strings.TrimPrefix(string(n), "/"), "/")
}

// Join 拼接父路径和子节点名字
func Join(parent types.Path, name string) types.Path {
	if parent.IsRoot() || parent == "" {
		return types.Path("/" + name)
	}
	return types.Path(string(parent) + "/" + name)
}

// ParentPath 返回上一级路径，根的上一级仍是根
func ParentPath(p types.Path) types.Path {
	segs := Segments(p)
	if len(segs) <= 1 {
		return types.RootPath
	}
	return types.Path("/" + strings.Join(segs[:len(segs)-1], "/"))
}
