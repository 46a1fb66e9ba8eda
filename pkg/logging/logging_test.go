package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestL_DefaultsToNop(t *testing.T) {
	Replace(nil)
	assert.NotNil(t, L())
	assert.NotPanics(t, func() { L().Info("ignored") })
}

func TestReplace_Observed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Replace(zap.New(core))
	t.Cleanup(func() { Replace(nil) })

	Named("vfs").Info("hydrated", zap.String("source", "seed"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "vfs", entry.LoggerName)
	assert.Equal(t, "seed", entry.ContextMap()["source"])
}

func TestWithContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctxLogger := zap.New(core).With(zap.String("request_id", "r1"))

	ctx := IntoContext(context.Background(), ctxLogger)
	WithContext(ctx).Info("hello")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "r1", logs.All()[0].ContextMap()["request_id"])
	assert.NotNil(t, WithContext(context.Background()))
}

func TestInit_Levels(t *testing.T) {
	require.NoError(t, Init(Config{Level: "warn", Format: "console", OutputPath: "stderr"}))
	t.Cleanup(func() { Replace(nil) })

	assert.False(t, L().Core().Enabled(zapcore.InfoLevel))
	SetLevel("debug")
	assert.True(t, L().Core().Enabled(zapcore.DebugLevel))
	SetLevel("bogus") // 非法级别被忽略
	assert.True(t, L().Core().Enabled(zapcore.DebugLevel))
}
