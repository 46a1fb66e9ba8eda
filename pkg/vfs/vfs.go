// Package vfs 是持久化的虚拟文件系统层
//
// VFS 持有唯一的可变工作树。每次修改都在深拷贝上进行，
// 候选树写入存储成功后才替换工作树；写入失败时工作树和存储都保持原样。
package vfs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"deskvfs/pkg/core"
	"deskvfs/pkg/id"
	"deskvfs/pkg/logging"
	"deskvfs/pkg/metrics"
	"deskvfs/pkg/storage"
	"deskvfs/pkg/types"
)

// DefaultKey 是快照在 KV 存储中的 key
const DefaultKey = "website-os.vfs"

// 水合来源
const (
	SourceSnapshot = "snapshot"
	SourceSeed     = "seed"
)

// SeedProvider 提供只读种子树，seed.Loader 实现了它
type SeedProvider interface {
	Load(ctx context.Context) *core.Node
}

// IDSource 为新建节点分配 ID，id.Generator 实现了它
type IDSource interface {
	Fresh(ctx context.Context) (types.NodeID, error)
}

type VFS struct {
	mu sync.RWMutex

	store  storage.Store
	seeds  SeedProvider
	ids    IDSource
	key    string
	codec  core.Codec
	logger *zap.Logger

	live   *core.Node
	source string
}

type Option func(*VFS)

func WithKey(key string) Option {
	return func(v *VFS) { v.key = key }
}

func WithCodec(c core.Codec) Option {
	return func(v *VFS) { v.codec = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(v *VFS) { v.logger = l }
}

// New 创建 VFS 句柄，此时尚未水合
func New(store storage.Store, seeds SeedProvider, ids IDSource, opts ...Option) *VFS {
	v := &VFS{
		store: store,
		seeds: seeds,
		ids:   ids,
		key:   DefaultKey,
		codec: core.JSONCodec{},
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = logging.Named("vfs")
	}
	return v
}

// Load 水合工作树，幂等
//  1. 存储中有快照：直接采用
//  2. 否则深拷贝种子树，为缺 ID 的节点按路径派生 ID
//
// 水合本身不写存储，第一次修改时才持久化
func (v *VFS) Load(ctx context.Context) (*core.Node, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.live != nil {
		return v.live.Clone(), nil
	}

	root, err := v.loadSnapshot(ctx)
	if err != nil {
		return nil, opErr("load", v.key, err)
	}
	source := SourceSnapshot
	if root == nil {
		root, err = v.fromSeed(ctx)
		if err != nil {
			return nil, opErr("load", "seed", err)
		}
		source = SourceSeed
	}

	v.live, v.source = root, source
	metrics.RecordHydration(source)
	metrics.SetTreeSize(root.Count())
	v.logger.Info("vfs hydrated", zap.String("source", source), zap.Int("nodes", root.Count()))
	return root.Clone(), nil
}

// loadSnapshot 读取并解码快照；不存在或已损坏时返回 (nil, nil)
func (v *VFS) loadSnapshot(ctx context.Context) (*core.Node, error) {
	data, err := v.store.Get(ctx, v.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		// 读失败不能当作"没有快照"，否则下一次写入会覆盖用户数据
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	root, err := v.decode(data)
	if err != nil {
		// 损坏的快照被忽略，原字节保留到下一次成功提交
		v.logger.Warn("snapshot corrupted, falling back to seed", zap.String("key", v.key), zap.Error(err))
		return nil, nil
	}
	if err := core.Validate(root); err != nil {
		// 违反不变量的快照按损坏处理，同样保留原字节
		v.logger.Warn("snapshot violates tree invariants, falling back to seed", zap.String("key", v.key), zap.Error(err))
		return nil, nil
	}
	return root, nil
}

// decode 先用配置的编码，失败再尝试其它编码，便于切换 storage.codec 后继续读旧快照
func (v *VFS) decode(data []byte) (*core.Node, error) {
	root, err := v.codec.Unmarshal(data)
	if err == nil && root != nil && root.IsFolder() {
		return root, nil
	}
	firstErr := err
	if firstErr == nil {
		firstErr = fmt.Errorf("snapshot root is not a folder")
	}
	for _, name := range []string{core.CodecJSON, core.CodecCBOR} {
		if name == v.codec.Name() {
			continue
		}
		c, _ := core.CodecByName(name)
		if alt, err := c.Unmarshal(data); err == nil && alt != nil && alt.IsFolder() {
			return alt, nil
		}
	}
	return nil, firstErr
}

func (v *VFS) fromSeed(ctx context.Context) (*core.Node, error) {
	if v.seeds == nil {
		return nil, errors.New("no seed provider")
	}
	src := v.seeds.Load(ctx)
	if src == nil {
		return nil, errors.New("seed provider returned nil tree")
	}
	// 深拷贝，之后的修改永远不会污染种子缓存
	root := src.Clone()
	if err := AssignSeedIDs(root); err != nil {
		return nil, err
	}
	return root, nil
}

// AssignSeedIDs 自顶向下为缺 ID 的节点分配 SeedID(规范路径)
func AssignSeedIDs(root *core.Node) error {
	err := core.Walk(root, func(p types.Path, n, _ *core.Node) error {
		if n.ID.IsZero() {
			n.ID = id.SeedID(p)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return core.Validate(root)
}

// Reset 删除快照并清空工作树，下一次 Load 重新从种子派生
func (v *VFS) Reset(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.store.Remove(ctx, v.key); err != nil {
		return opErr("reset", v.key, fmt.Errorf("%w: %w", ErrStorageWrite, err))
	}
	v.live, v.source = nil, ""
	v.logger.Info("vfs reset", zap.String("key", v.key))
	return nil
}

// Loaded 报告是否已水合
func (v *VFS) Loaded() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.live != nil
}

// Source 返回水合来源 (snapshot / seed)，未水合时为空
func (v *VFS) Source() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.source
}

// Tree 返回整棵工作树的深拷贝
func (v *VFS) Tree() (*core.Node, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.live == nil {
		return nil, ErrNotHydrated
	}
	return v.live.Clone(), nil
}

// Digest 返回工作树的规范摘要，可用于比较两次水合是否一致
func (v *VFS) Digest() (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.live == nil {
		return "", ErrNotHydrated
	}
	return core.Digest(v.live)
}

// commit 执行一次写时复制事务
// mutate 只能修改传入的候选树；返回错误时什么都不会发生
// 调用方必须持有写锁
func (v *VFS) commit(ctx context.Context, op string, mutate func(candidate *core.Node) error) error {
	if v.live == nil {
		return ErrNotHydrated
	}
	start := time.Now()

	// 1. 深拷贝
	candidate := v.live.Clone()

	// 2 & 3. 在候选树上修改并校验
	if err := mutate(candidate); err != nil {
		return err
	}
	if err := core.Validate(candidate); err != nil {
		return err
	}

	// 4. 序列化并写入
	data, err := v.codec.Marshal(candidate)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := v.store.Set(ctx, v.key, data); err != nil {
		// 6. 丢弃候选树
		metrics.RecordTransaction(op, false, time.Since(start))
		v.logger.Warn("snapshot write failed, rolled back", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	// 5. 替换工作树
	v.live = candidate
	metrics.RecordTransaction(op, true, time.Since(start))
	metrics.SetSnapshotBytes(len(data))
	metrics.SetTreeSize(candidate.Count())
	return nil
}
