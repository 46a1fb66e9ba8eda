package vfs

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"deskvfs/pkg/core"
	"deskvfs/pkg/seed"
	"deskvfs/pkg/types"
)

// --- 只读操作：只读工作树，不访问存储 ---

// List 列出目录，文件夹在前，再按名字排序
func (v *VFS) List(p types.Path) ([]*core.Node, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.live == nil {
		return nil, opErr("list", string(p), ErrNotHydrated)
	}

	nodes, err := seed.List(v.live, p)
	if err != nil {
		return nil, opErr("list", string(p), err)
	}
	out := make([]*core.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out, nil
}

// Navigate 计算 cd 之后的路径，不依赖工作树
func (v *VFS) Navigate(p types.Path, segment string) types.Path {
	return seed.Navigate(p, segment)
}

// FindByID 按 ID 查找节点
func (v *VFS) FindByID(nodeID types.NodeID) (*core.Node, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.live == nil {
		return nil, opErr("find", string(nodeID), ErrNotHydrated)
	}
	n, err := seed.FindByID(v.live, nodeID)
	if err != nil {
		return nil, opErr("find", string(nodeID), err)
	}
	return n.Clone(), nil
}

// PathOf 返回节点的规范路径
func (v *VFS) PathOf(nodeID types.NodeID) (types.Path, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.live == nil {
		return "", opErr("path", string(nodeID), ErrNotHydrated)
	}
	p, err := seed.PathOf(v.live, nodeID)
	return p, opErr("path", string(nodeID), err)
}

// FolderIDByPath 返回路径对应文件夹的 ID
func (v *VFS) FolderIDByPath(p types.Path) (types.NodeID, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.live == nil {
		return "", opErr("folder-id", string(p), ErrNotHydrated)
	}
	n, err := folderAt(v.live, p)
	if err != nil {
		return "", opErr("folder-id", string(p), err)
	}
	return n.ID, nil
}

// --- 修改操作：全部走 commit ---

// Mkdir 在 parent 路径下新建文件夹，重名时返回 ErrDuplicateName
func (v *VFS) Mkdir(ctx context.Context, parent types.Path, name string) (*core.Node, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var created *core.Node
	err := v.commit(ctx, "mkdir", func(root *core.Node) error {
		target, err := folderAt(root, parent)
		if err != nil {
			return err
		}
		if err := checkNewChild(target, name); err != nil {
			return err
		}
		nodeID, err := v.ids.Fresh(ctx)
		if err != nil {
			return err
		}
		created = core.NewFolder(nodeID, name)
		target.Children = append(target.Children, created)
		return nil
	})
	if err != nil {
		return nil, opErr("mkdir", string(core.Join(core.NormalizePath(string(parent)), name)), err)
	}
	v.logger.Debug("mkdir", zap.String("id", created.ID.String()), zap.String("name", name))
	return created.Clone(), nil
}

// MkdirUnique 在 parentID 指向的文件夹下新建文件夹
// 名字会先去掉首尾空白，重名时自动追加 " (2)"、" (3)" ...
func (v *VFS) MkdirUnique(ctx context.Context, parentID types.NodeID, name string) (types.NodeID, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var created *core.Node
	err := v.commit(ctx, "mkdir", func(root *core.Node) error {
		target, err := seed.FindByID(root, parentID)
		if err != nil {
			return err
		}
		if !target.IsFolder() {
			return fmt.Errorf("%w: %s is not a folder", ErrNodeNotFound, parentID)
		}
		unique, err := UniqueName(target, strings.TrimSpace(name), nil)
		if err != nil {
			return err
		}
		nodeID, err := v.ids.Fresh(ctx)
		if err != nil {
			return err
		}
		created = core.NewFolder(nodeID, unique)
		target.Children = append(target.Children, created)
		return nil
	})
	if err != nil {
		return "", opErr("mkdir", string(parentID), err)
	}
	v.logger.Debug("mkdir", zap.String("id", created.ID.String()), zap.String("name", created.Name))
	return created.ID, nil
}

// CreateFile 在 parent 路径下新建文件 (只有元数据，没有内容)
func (v *VFS) CreateFile(ctx context.Context, parent types.Path, name string, attrs core.FileAttrs) (*core.Node, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var created *core.Node
	err := v.commit(ctx, "create", func(root *core.Node) error {
		target, err := folderAt(root, parent)
		if err != nil {
			return err
		}
		if err := checkNewChild(target, name); err != nil {
			return err
		}
		nodeID, err := v.ids.Fresh(ctx)
		if err != nil {
			return err
		}
		created = core.NewFile(nodeID, name, attrs)
		target.Children = append(target.Children, created)
		return nil
	})
	if err != nil {
		return nil, opErr("create", string(core.Join(core.NormalizePath(string(parent)), name)), err)
	}
	v.logger.Debug("create", zap.String("id", created.ID.String()), zap.String("name", name))
	return created.Clone(), nil
}

// Rename 重命名节点，ID 不变；与兄弟重名时返回 ErrDuplicateName
func (v *VFS) Rename(ctx context.Context, nodeID types.NodeID, newName string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	err := v.commit(ctx, "rename", func(root *core.Node) error {
		if err := core.CheckName(newName); err != nil {
			return err
		}
		parent, node, err := locate(root, nodeID)
		if err != nil {
			return err
		}
		if parent.HasChildNamed(newName, node) {
			return fmt.Errorf("%w: %q", ErrDuplicateName, newName)
		}
		node.Name = newName
		return nil
	})
	if err != nil {
		return opErr("rename", string(nodeID), err)
	}
	v.logger.Debug("rename", zap.String("id", nodeID.String()), zap.String("name", newName))
	return nil
}

// RenameUnique 重命名节点，名字去掉首尾空白，重名时自动追加后缀
// 返回最终采用的名字
func (v *VFS) RenameUnique(ctx context.Context, nodeID types.NodeID, newName string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var final string
	err := v.commit(ctx, "rename", func(root *core.Node) error {
		parent, node, err := locate(root, nodeID)
		if err != nil {
			return err
		}
		final, err = UniqueName(parent, strings.TrimSpace(newName), node)
		if err != nil {
			return err
		}
		node.Name = final
		return nil
	})
	if err != nil {
		return "", opErr("rename", string(nodeID), err)
	}
	v.logger.Debug("rename", zap.String("id", nodeID.String()), zap.String("name", final))
	return final, nil
}

// Delete 删除节点及其整棵子树
func (v *VFS) Delete(ctx context.Context, nodeID types.NodeID) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	err := v.commit(ctx, "delete", func(root *core.Node) error {
		parent, _, err := locate(root, nodeID)
		if err != nil {
			return err
		}
		parent.RemoveChild(nodeID)
		return nil
	})
	if err != nil {
		return opErr("delete", string(nodeID), err)
	}
	v.logger.Debug("delete", zap.String("id", nodeID.String()))
	return nil
}

// --- helpers ---

// folderAt 解析路径并要求结果是文件夹
func folderAt(root *core.Node, p types.Path) (*core.Node, error) {
	n, err := seed.Resolve(root, p)
	if err != nil {
		return nil, err
	}
	if !n.IsFolder() {
		return nil, fmt.Errorf("%w: %s", ErrPathIsFile, core.NormalizePath(string(p)))
	}
	return n, nil
}

func checkNewChild(parent *core.Node, name string) error {
	if err := core.CheckName(name); err != nil {
		return err
	}
	if parent.HasChildNamed(name, nil) {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	return nil
}

// locate 返回节点及其父节点；根节点不能作为重命名或删除的目标
func locate(root *core.Node, nodeID types.NodeID) (parent, node *core.Node, err error) {
	parent, err = seed.FindParent(root, nodeID)
	if err != nil {
		return nil, nil, err
	}
	if parent == nil {
		return nil, nil, ErrCannotRenameRoot
	}
	for _, c := range parent.Children {
		if c.ID == nodeID {
			return parent, c, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
}

// UniqueName 返回 parent 下不与其它子节点冲突的名字
// desired 未冲突时原样返回，否则依次尝试 "desired (2)"、"desired (3)" ...
// self 是正在重命名的节点，它自己的名字不算冲突
func UniqueName(parent *core.Node, desired string, self *core.Node) (string, error) {
	if err := core.CheckName(desired); err != nil {
		return "", err
	}
	if !parent.HasChildNamed(desired, self) {
		return desired, nil
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", desired, n)
		if !parent.HasChildNamed(candidate, self) {
			return candidate, nil
		}
	}
}
