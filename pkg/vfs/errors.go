package vfs

import (
	"errors"
	"fmt"

	"deskvfs/pkg/core"
	"deskvfs/pkg/seed"
)

var (
	ErrNotHydrated      = errors.New("vfs not loaded")
	ErrCannotRenameRoot = errors.New("cannot rename or delete root")
	ErrStorageWrite     = errors.New("storage write failed")

	// 以下与 core / seed 中的值相同，errors.Is 可跨层使用
	ErrInvalidName   = core.ErrInvalidName
	ErrDuplicateName = core.ErrDuplicateName
	ErrDuplicateID   = core.ErrDuplicateID
	ErrNodeNotFound  = seed.ErrNodeNotFound
	ErrPathNotFound  = seed.ErrPathNotFound
	ErrPathIsFile    = seed.ErrPathIsFile
)

// OpError 记录失败的操作及其目标 (路径或 ID)
type OpError struct {
	Op     string
	Target string
	Err    error
}

func (e *OpError) Error() string {
	if e.Target == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func opErr(op, target string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Target: target, Err: err}
}
