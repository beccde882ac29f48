package composer

import (
	"errors"
	"fmt"
)

var (
	// ErrNilIdentity 未提供节点身份
	ErrNilIdentity = errors.New("composer: identity is nil")
	// ErrNilFactory 未提供模块工厂
	ErrNilFactory = errors.New("composer: factory is nil")
	// ErrTransportFirst 传输层必须先于其他模块构造
	ErrTransportFirst = errors.New("composer: transport must be built first")
)

// BuildError 模块构造失败
type BuildError struct {
	Module string
	Err    error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("构造模块 %s 失败: %v", e.Module, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }
