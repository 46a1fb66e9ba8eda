package server

import (
	"context"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"deskvfs/pkg/logging"
	"deskvfs/pkg/metrics"
)

// =============================================================================
// 1. Logging Interceptor (结构化日志 + 指标)
// =============================================================================

// UnaryLoggingInterceptor 记录每个请求的方法、状态码和耗时
func UnaryLoggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	logRPC(info.FullMethod, time.Since(start), err)
	return resp, err
}

func logRPC(method string, duration time.Duration, err error) {
	code := status.Code(err)
	metrics.RecordRPC(method, code.String(), duration)

	// 业务错误 (NotFound, AlreadyExists ...) 记 Warn，Internal/Unknown 记 Error
	level := zapcore.InfoLevel
	switch code {
	case codes.OK:
	case codes.Internal, codes.Unknown:
		level = zapcore.ErrorLevel
	default:
		level = zapcore.WarnLevel
	}

	fields := []zap.Field{
		zap.String("method", method),
		zap.String("code", code.String()),
		zap.Duration("dur", duration),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logging.Named("grpc").Log(level, "gRPC request", fields...)
}

// =============================================================================
// 2. Recovery Interceptor
// =============================================================================

// UnaryRecoveryInterceptor 捕获 Panic，返回 Internal 而不是断开连接
func UnaryRecoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverFromPanic(info.FullMethod, r)
		}
	}()
	return handler(ctx, req)
}

func recoverFromPanic(method string, p any) error {
	logging.Named("grpc").Error("panic recovered",
		zap.String("method", method),
		zap.Any("panic", p),
		zap.String("stack", string(debug.Stack())),
	)
	return status.Errorf(codes.Internal, "internal server error: panic recovered")
}

// NewGRPCServer 创建带日志和恢复拦截器的 gRPC 服务端
// 恢复拦截器在内层，panic 也会被日志拦截器记录为 Internal
func NewGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(UnaryLoggingInterceptor, UnaryRecoveryInterceptor),
	}, opts...)
	return grpc.NewServer(opts...)
}
