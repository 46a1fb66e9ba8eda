package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"deskvfs/pkg/core"
	"deskvfs/pkg/storage"
	"deskvfs/pkg/types"
)

type Exporter struct {
	store storage.Store
}

func NewExporter(store storage.Store) *Exporter {
	return &Exporter{store: store}
}

// PrintSnapshot 读取快照原始字节并打印摘要 (编码、大小、节点数、摘要)
// 与工作树无关，只看存储里实际落盘的内容
func (e *Exporter) PrintSnapshot(ctx context.Context, key string, w io.Writer) error {
	data, err := e.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read snapshot %s: %w", key, err)
	}

	// 依次尝试各编码，探测快照格式
	for _, name := range []string{core.CodecJSON, core.CodecCBOR} {
		codec, _ := core.CodecByName(name)
		root, err := codec.Unmarshal(data)
		if err != nil || root == nil || !root.IsFolder() {
			continue
		}
		digest, err := core.Digest(root)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Key:    %s\n", key)
		fmt.Fprintf(w, "Codec:  %s\n", name)
		fmt.Fprintf(w, "Size:   %s\n", fmtSize(int64(len(data))))
		fmt.Fprintf(w, "Nodes:  %d\n", root.Count())
		fmt.Fprintf(w, "Digest: %s\n", digest)
		return nil
	}

	fmt.Fprintf(w, "Key:    %s\nSize:   %s\n\n", key, fmtSize(int64(len(data))))
	fmt.Fprintf(w, "(snapshot is corrupted, it will be replaced on the next change)\n")
	return nil
}

// ExportJSON 把树写成 JSON 种子文档，可直接作为 seed.file 使用
func ExportJSON(root *core.Node, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(root)
}

type RestoreCallback func(path string, node *core.Node)

// RestoreTree 把树还原成真实目录：文件夹建目录，文件建空文件
// 得到的目录可以再作为 seed.dir 导入
func RestoreTree(root *core.Node, targetDir string, onRestore RestoreCallback) error {
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", targetDir, err)
	}
	return core.Walk(root, func(p types.Path, n, parent *core.Node) error {
		if parent == nil {
			return nil
		}
		fullPath := filepath.Join(targetDir, filepath.FromSlash(string(p)))

		if n.IsFolder() {
			if err := os.MkdirAll(fullPath, 0755); err != nil {
				return fmt.Errorf("failed to create dir %s: %w", p, err)
			}
		} else {
			f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
			if err != nil {
				return fmt.Errorf("failed to create file %s: %w", p, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
		}
		if onRestore != nil {
			onRestore(string(p), n)
		}
		return nil
	})
}
