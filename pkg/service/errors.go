package service

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"deskvfs/pkg/vfs"
)

// toStatus 把领域错误映射为 gRPC 状态码
// 消息保留完整错误链文本，客户端据此还原哨兵错误
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	code := codes.Internal
	switch {
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, vfs.ErrInvalidName):
		code = codes.InvalidArgument
	case errors.Is(err, vfs.ErrDuplicateName):
		code = codes.AlreadyExists
	case errors.Is(err, vfs.ErrNodeNotFound), errors.Is(err, vfs.ErrPathNotFound):
		code = codes.NotFound
	case errors.Is(err, vfs.ErrPathIsFile), errors.Is(err, vfs.ErrNotHydrated):
		code = codes.FailedPrecondition
	case errors.Is(err, vfs.ErrCannotRenameRoot):
		code = codes.PermissionDenied
	case errors.Is(err, vfs.ErrStorageWrite):
		code = codes.Unavailable
	}
	return status.Error(code, err.Error())
}
