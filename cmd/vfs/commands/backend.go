package commands

import (
	"context"
	"fmt"
	"strings"

	"deskvfs/pkg/app"
	"deskvfs/pkg/core"
	"deskvfs/pkg/seed"
	"deskvfs/pkg/types"

	"github.com/spf13/viper"
)

// Backend 是命令行需要的全部操作
// 本地由 localFS 实现，远端由 *client.Client 实现
type Backend interface {
	Load(ctx context.Context) (*core.Node, error)
	List(ctx context.Context, p types.Path) ([]*core.Node, error)
	Navigate(ctx context.Context, p types.Path, segment string) (types.Path, error)
	Find(ctx context.Context, id types.NodeID) (*core.Node, types.Path, error)
	FolderIDByPath(ctx context.Context, p types.Path) (types.NodeID, error)
	Mkdir(ctx context.Context, parent types.Path, name string) (*core.Node, error)
	MkdirUnique(ctx context.Context, parentID types.NodeID, name string) (types.NodeID, error)
	CreateFile(ctx context.Context, parent types.Path, name string, attrs core.FileAttrs) (*core.Node, error)
	Rename(ctx context.Context, id types.NodeID, name string) error
	RenameUnique(ctx context.Context, id types.NodeID, name string) (string, error)
	Delete(ctx context.Context, id types.NodeID) error
	Reset(ctx context.Context) error
	Tree(ctx context.Context) (*core.Node, string, error)
	Close() error
}

// localFS 把进程内的 VFS 适配成 Backend，首次使用时水合
type localFS struct {
	app *app.App
}

func NewLocal(a *app.App) Backend {
	return &localFS{app: a}
}

func (l *localFS) ensure(ctx context.Context) error {
	if l.app.VFS.Loaded() {
		return nil
	}
	_, err := l.app.VFS.Load(ctx)
	return err
}

func (l *localFS) Load(ctx context.Context) (*core.Node, error) {
	return l.app.VFS.Load(ctx)
}

func (l *localFS) List(ctx context.Context, p types.Path) ([]*core.Node, error) {
	if err := l.ensure(ctx); err != nil {
		return nil, err
	}
	return l.app.VFS.List(p)
}

func (l *localFS) Navigate(_ context.Context, p types.Path, segment string) (types.Path, error) {
	return l.app.VFS.Navigate(p, segment), nil
}

func (l *localFS) Find(ctx context.Context, id types.NodeID) (*core.Node, types.Path, error) {
	if err := l.ensure(ctx); err != nil {
		return nil, "", err
	}
	n, err := l.app.VFS.FindByID(id)
	if err != nil {
		return nil, "", err
	}
	p, err := l.app.VFS.PathOf(id)
	return n, p, err
}

func (l *localFS) FolderIDByPath(ctx context.Context, p types.Path) (types.NodeID, error) {
	if err := l.ensure(ctx); err != nil {
		return "", err
	}
	return l.app.VFS.FolderIDByPath(p)
}

func (l *localFS) Mkdir(ctx context.Context, parent types.Path, name string) (*core.Node, error) {
	if err := l.ensure(ctx); err != nil {
		return nil, err
	}
	return l.app.VFS.Mkdir(ctx, parent, name)
}

func (l *localFS) MkdirUnique(ctx context.Context, parentID types.NodeID, name string) (types.NodeID, error) {
	if err := l.ensure(ctx); err != nil {
		return "", err
	}
	return l.app.VFS.MkdirUnique(ctx, parentID, name)
}

func (l *localFS) CreateFile(ctx context.Context, parent types.Path, name string, attrs core.FileAttrs) (*core.Node, error) {
	if err := l.ensure(ctx); err != nil {
		return nil, err
	}
	return l.app.VFS.CreateFile(ctx, parent, name, attrs)
}

func (l *localFS) Rename(ctx context.Context, id types.NodeID, name string) error {
	if err := l.ensure(ctx); err != nil {
		return err
	}
	return l.app.VFS.Rename(ctx, id, name)
}

func (l *localFS) RenameUnique(ctx context.Context, id types.NodeID, name string) (string, error) {
	if err := l.ensure(ctx); err != nil {
		return "", err
	}
	return l.app.VFS.RenameUnique(ctx, id, name)
}

func (l *localFS) Delete(ctx context.Context, id types.NodeID) error {
	if err := l.ensure(ctx); err != nil {
		return err
	}
	return l.app.VFS.Delete(ctx, id)
}

func (l *localFS) Reset(ctx context.Context) error {
	if err := l.app.VFS.Reset(ctx); err != nil {
		return err
	}
	_, err := l.app.VFS.Load(ctx)
	return err
}

func (l *localFS) Tree(ctx context.Context) (*core.Node, string, error) {
	if err := l.ensure(ctx); err != nil {
		return nil, "", err
	}
	root, err := l.app.VFS.Tree()
	if err != nil {
		return nil, "", err
	}
	digest, err := l.app.VFS.Digest()
	return root, digest, err
}

func (l *localFS) Close() error {
	return l.app.Close()
}

// --- 参数解析 ---

// cwd 是 --cwd / VFS_CLIENT_CWD 给出的当前目录
func cwd() types.Path {
	return core.NormalizePath(viper.GetString("client.cwd"))
}

// absPath 把相对参数接到当前目录上
func absPath(ctx context.Context, arg string) (types.Path, error) {
	if arg == "" {
		return cwd(), nil
	}
	if strings.HasPrefix(arg, "/") {
		return core.NormalizePath(arg), nil
	}
	p := cwd()
	for _, seg := range strings.Split(arg, "/") {
		next, err := FS.Navigate(ctx, p, seg)
		if err != nil {
			return "", err
		}
		p = next
	}
	return p, nil
}

// splitTarget 把参数拆成父目录和最后一段名字
func splitTarget(ctx context.Context, arg string) (types.Path, string, error) {
	arg = strings.TrimRight(arg, "/")
	i := strings.LastIndex(arg, "/")
	if i < 0 {
		return cwd(), arg, nil
	}
	dir := arg[:i]
	if dir == "" {
		dir = "/"
	}
	parent, err := absPath(ctx, dir)
	return parent, arg[i+1:], err
}

// resolve 接受节点 ID 或路径，返回节点及其绝对路径
func resolve(ctx context.Context, arg string) (*core.Node, types.Path, error) {
	if id := types.NodeID(arg); id.IsSeed() || id.IsLive() {
		if n, p, err := FS.Find(ctx, id); err == nil {
			return n, p, nil
		}
	}

	p, err := absPath(ctx, arg)
	if err != nil {
		return nil, "", err
	}
	if p.IsRoot() {
		root, _, err := FS.Tree(ctx)
		return root, p, err
	}

	nodes, err := FS.List(ctx, core.ParentPath(p))
	if err != nil {
		return nil, "", err
	}
	segs := core.Segments(p)
	name := segs[len(segs)-1]
	for _, n := range nodes {
		if n.Name == name {
			return n, p, nil
		}
	}
	return nil, "", fmt.Errorf("%w: %s", seed.ErrPathNotFound, p)
}
