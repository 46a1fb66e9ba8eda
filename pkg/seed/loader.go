// Package seed 提供只读的种子层级：加载默认树，并在其上做路径解析和查找
//
// 种子树加载后不可变，任何需要修改的调用方必须先 Clone
package seed

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"deskvfs/pkg/core"
	"deskvfs/pkg/logging"
	"deskvfs/pkg/types"
)

// Loader 缓存种子树，只在第一次 Load 时访问 Source
type Loader struct {
	src    Source
	logger *zap.Logger

	group singleflight.Group

	mu     sync.RWMutex
	root   *core.Node
	origin string
}

type LoaderOption func(*Loader)

func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) { ld.logger = l }
}

// NewLoader src 为 nil 时直接使用内置树
func NewLoader(src Source, opts ...LoaderOption) *Loader {
	if src == nil {
		src = FallbackSource()
	}
	l := &Loader{src: src}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logging.Named("seed")
	}
	return l
}

// Load 返回种子树，幂等
// 来源失败 (网络、解析、形状不符) 时静默退回内置树，只记录日志，不向调用方报错
// 并发调用只会触发一次 Fetch
func (l *Loader) Load(ctx context.Context) *core.Node {
	l.mu.RLock()
	root := l.root
	l.mu.RUnlock()
	if root != nil {
		return root
	}

	v, _, _ := l.group.Do("seed", func() (any, error) {
		// 双重检查：可能在等待期间已被其它调用填充
		l.mu.RLock()
		cached := l.root
		l.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		// 结果会被所有调用方共享并缓存，不能因为第一个调用方取消而退回内置树
		origin := l.src.Name()
		loaded, err := l.src.Fetch(context.WithoutCancel(ctx))
		if err == nil && loaded == nil {
			err = ErrInvalidDocument
		}
		if err != nil {
			l.logger.Info("seed source unavailable, using built-in tree",
				zap.String("source", origin), zap.Error(err))
			loaded, origin = Fallback(), "fallback"
		} else {
			l.logger.Debug("seed loaded", zap.String("source", origin), zap.Int("nodes", loaded.Count()))
		}

		l.mu.Lock()
		l.root, l.origin = loaded, origin
		l.mu.Unlock()
		return loaded, nil
	})
	return v.(*core.Node)
}

// Origin 返回实际使用的来源名，未加载时为空
func (l *Loader) Origin() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.origin
}

// Forget 清空缓存，下一次 Load 重新访问 Source
func (l *Loader) Forget() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.root, l.origin = nil, ""
}

// List 在已加载的种子树上列目录
func (l *Loader) List(ctx context.Context, p types.Path) ([]*core.Node, error) {
	return List(l.Load(ctx), p)
}

// Navigate 计算 cd 之后的路径，与树内容无关
func (l *Loader) Navigate(current types.Path, segment string) types.Path {
	return Navigate(current, segment)
}

// FindByID 在已加载的种子树上按 ID 查找
func (l *Loader) FindByID(ctx context.Context, nodeID types.NodeID) (*core.Node, error) {
	return FindByID(l.Load(ctx), nodeID)
}
