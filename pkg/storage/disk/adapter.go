package disk

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"deskvfs/pkg/storage"
)

// Adapter 实现了 storage.Store 接口，每个 key 对应 root 下的一个文件
type Adapter struct {
	rootPath string // 比如: /home/user/.vfs/store
}

// NewAdapter 创建一个新的磁盘存储适配器
func NewAdapter(root string) (*Adapter, error) {
	// 确保根目录存在
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage dir: %w", err)
	}
	return &Adapter{rootPath: root}, nil
}

// layout 返回 key 对应的物理路径
// key 里可能有 ':' '/' 等字符，统一转义成合法文件名
// Example: "vfs:deviceNonce" -> root/vfs%3AdeviceNonce
func (s *Adapter) layout(key string) string {
	return filepath.Join(s.rootPath, url.QueryEscape(key))
}

func (s *Adapter) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.layout(key))
	if os.IsNotExist(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

func (s *Adapter) Set(_ context.Context, key string, value []byte) error {
	targetPath := s.layout(key)

	// 原子写入 (Atomic Write)
	// 先写临时文件，fsync 后再 Rename。
	// 这样保证要么是旧内容，要么是完整的新内容，不会出现写了一半的快照。
	tempFile, err := os.CreateTemp(s.rootPath, "temp-*")
	if err != nil {
		return err
	}
	// 成功 Rename 后这个删除无害
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(value); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Close(); err != nil { // 必须先关闭才能 Rename
		return err
	}

	return os.Rename(tempFile.Name(), targetPath)
}

func (s *Adapter) Remove(_ context.Context, key string) error {
	err := os.Remove(s.layout(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
