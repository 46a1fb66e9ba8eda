package id

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"deskvfs/pkg/logging"
	"deskvfs/pkg/storage"
	"deskvfs/pkg/types"
)

// 持久化时钟状态使用的 key
const (
	KeyDeviceNonce = "vfs:deviceNonce"
	KeyLastTime    = "vfs:idLastTime"
	KeyLastPayload = "vfs:idLastPayload"
	KeyCounter     = "vfs:idCounter"
)

const payloadLen = 10 // 80 bit

var ErrClockOverflow = errors.New("ulid timestamp overflow")

// Generator 产生单调递增的 ULID
// 并发安全；同一毫秒内的多次调用通过对随机部分 +1 保证严格有序
type Generator struct {
	mu sync.Mutex

	kv      storage.Store
	now     func() time.Time
	entropy io.Reader
	logger  *zap.Logger

	nonce       [2]byte
	lastMs      uint64
	lastPayload [payloadLen]byte
	hasLast     bool
	counter     uint64
}

type Option func(*Generator)

// WithClock 注入时钟，测试用
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithEntropy 注入随机源，测试用
func WithEntropy(r io.Reader) Option {
	return func(g *Generator) { g.entropy = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator 创建生成器并尝试从 kv 恢复时钟状态
// kv 可以为 nil (纯内存模式)；读取失败时退化为全新的设备 nonce
func NewGenerator(ctx context.Context, kv storage.Store, opts ...Option) *Generator {
	g := &Generator{
		kv:      kv,
		now:     time.Now,
		entropy: rand.Reader,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = logging.Named("id")
	}
	g.restore(ctx)
	return g
}

func (g *Generator) restore(ctx context.Context) {
	nonceOK := false
	if g.kv != nil {
		if raw, err := g.kv.Get(ctx, KeyDeviceNonce); err == nil {
			if b, err := hex.DecodeString(string(raw)); err == nil && len(b) == 2 {
				copy(g.nonce[:], b)
				nonceOK = true
			}
		}
	}
	if !nonceOK {
		if _, err := io.ReadFull(g.entropy, g.nonce[:]); err != nil {
			g.logger.Warn("failed to draw device nonce", zap.Error(err))
		}
		g.put(ctx, KeyDeviceNonce, hex.EncodeToString(g.nonce[:]))
		// 新设备不沿用任何旧的时钟状态
		return
	}

	lastRaw, err1 := g.kv.Get(ctx, KeyLastTime)
	payloadRaw, err2 := g.kv.Get(ctx, KeyLastPayload)
	if err1 != nil || err2 != nil {
		return
	}
	ms, err := strconv.ParseUint(string(lastRaw), 10, 64)
	if err != nil {
		return
	}
	payload, err := hex.DecodeString(string(payloadRaw))
	if err != nil || len(payload) != payloadLen {
		return
	}
	g.lastMs = ms
	copy(g.lastPayload[:], payload)
	g.hasLast = true

	if raw, err := g.kv.Get(ctx, KeyCounter); err == nil {
		if n, err := strconv.ParseUint(string(raw), 10, 64); err == nil {
			g.counter = n
		}
	}
}

// Fresh 返回一个新的实时 ID，保证字典序严格大于本进程上一次的返回值
func (g *Generator) Fresh(ctx context.Context) (types.NodeID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := ulid.Timestamp(g.now())
	// 时钟回拨时沿用上次的时间戳，继续在其上递增
	if g.hasLast && ms < g.lastMs {
		ms = g.lastMs
	}

	var payload [payloadLen]byte
	if g.hasLast && ms == g.lastMs {
		payload = g.lastPayload
		if !increment(payload[:]) {
			// 80 bit 用尽：借用下一毫秒
			ms++
			if err := g.randomPayload(&payload); err != nil {
				return "", err
			}
		}
	} else {
		if err := g.randomPayload(&payload); err != nil {
			return "", err
		}
	}

	if ms > ulid.MaxTime() {
		return "", ErrClockOverflow
	}

	var u ulid.ULID
	if err := u.SetTime(ms); err != nil {
		return "", fmt.Errorf("set ulid time: %w", err)
	}
	if err := u.SetEntropy(payload[:]); err != nil {
		return "", fmt.Errorf("set ulid entropy: %w", err)
	}

	g.lastMs = ms
	g.lastPayload = payload
	g.hasLast = true
	g.counter++

	// 状态持久化是尽力而为：进程内的单调性由内存状态保证
	g.put(ctx, KeyLastTime, strconv.FormatUint(ms, 10))
	g.put(ctx, KeyLastPayload, hex.EncodeToString(payload[:]))
	g.put(ctx, KeyCounter, strconv.FormatUint(g.counter, 10))

	return types.NodeID(u.String()), nil
}

// Counter 返回累计生成的实时 ID 数量
func (g *Generator) Counter() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counter
}

// Nonce 返回 4 位十六进制的设备 nonce
func (g *Generator) Nonce() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return hex.EncodeToString(g.nonce[:])
}

func (g *Generator) randomPayload(p *[payloadLen]byte) error {
	if _, err := io.ReadFull(g.entropy, p[2:]); err != nil {
		return fmt.Errorf("read entropy: %w", err)
	}
	p[0], p[1] = g.nonce[0], g.nonce[1]
	return nil
}

func (g *Generator) put(ctx context.Context, key, value string) {
	if g.kv == nil {
		return
	}
	if err := g.kv.Set(ctx, key, []byte(value)); err != nil {
		g.logger.Warn("persist id clock state failed", zap.String("key", key), zap.Error(err))
	}
}

// increment 把 b 视为大端无符号整数加一，溢出时返回 false
func increment(b []byte) bool {
	for i := len(b) - 1; i >= 0; i-- {
		b[i]++
		if b[i] != 0 {
			return true
		}
	}
	return false
}
