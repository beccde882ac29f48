package mocks

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-docstore/pkg/types"
)

// MockLiveness 模拟 interfaces.Liveness
type MockLiveness struct {
	PingFunc  func(ctx context.Context, peer types.PeerID) (time.Duration, error)
	CloseFunc func() error

	closed atomic.Bool
}

// Ping 实现 Liveness
func (m *MockLiveness) Ping(ctx context.Context, peer types.PeerID) (time.Duration, error) {
	if m.PingFunc != nil {
		return m.PingFunc(ctx, peer)
	}
	return time.Millisecond, nil
}

// Close 实现 Liveness
func (m *MockLiveness) Close() error {
	m.closed.Store(true)
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Closed 是否已关闭
func (m *MockLiveness) Closed() bool { return m.closed.Load() }

// MockRelay 模拟 interfaces.Relay
type MockRelay struct {
	CloseFunc func() error

	closed atomic.Bool
}

// Close 实现 Relay
func (m *MockRelay) Close() error {
	m.closed.Store(true)
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Closed 是否已关闭
func (m *MockRelay) Closed() bool { return m.closed.Load() }
