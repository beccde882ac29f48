package identity

import (
	"errors"
	"fmt"
)

var (
	// ErrNilKey 私钥为空
	ErrNilKey = errors.New("identity: nil private key")
	// ErrEmptyKey 密钥数据为空
	ErrEmptyKey = errors.New("identity: empty key data")
	// ErrCorruptKey 密钥数据无法解码
	ErrCorruptKey = errors.New("identity: corrupt key data")
)

// PathError 身份文件的文件系统错误
//
// 这类错误是致命的，Path 指出出错的路径。
type PathError struct {
	Op   string
	Path string
	Err  error
}

// Error 实现 error 接口
func (e *PathError) Error() string {
	return fmt.Sprintf("identity %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap 支持 errors.Is / errors.As
func (e *PathError) Unwrap() error {
	return e.Err
}
