package bootstrap

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRoutingTable 没有路由表模块实例
	ErrNoRoutingTable = errors.New("bootstrap: no routing table module")
	// ErrNoTransport 没有传输层实例
	ErrNoTransport = errors.New("bootstrap: no transport")
	// ErrNoTransportAddr 种子只有 /p2p/<PeerID>，没有可用地址
	ErrNoTransportAddr = errors.New("bootstrap: seed has no transport address")
)

// SeedError 单个种子的错误
type SeedError struct {
	Op   string // parse / insert / dial
	Seed string
	Err  error
}

// Error 实现 error 接口
func (e *SeedError) Error() string {
	return fmt.Sprintf("bootstrap %s %q: %v", e.Op, e.Seed, e.Err)
}

// Unwrap 支持 errors.Unwrap
func (e *SeedError) Unwrap() error {
	return e.Err
}
