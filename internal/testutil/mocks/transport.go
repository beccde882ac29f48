package mocks

import (
	"context"
	"sync"

	"github.com/dep2p/go-docstore/pkg/types"
)

// MockTransport 模拟 interfaces.Transport
type MockTransport struct {
	mu sync.Mutex

	PeerIDValue types.PeerID

	ListenOnFunc func(ep types.Endpoint) error
	DialFunc     func(ctx context.Context, ep types.Endpoint) error
	CloseFunc    func() error

	listened []types.Endpoint
	dialed   []types.Endpoint
	closed   bool
}

// NewMockTransport 创建 MockTransport
func NewMockTransport(id types.PeerID) *MockTransport {
	return &MockTransport{PeerIDValue: id}
}

// LocalPeer 实现 Transport
func (m *MockTransport) LocalPeer() types.PeerID { return m.PeerIDValue }

// ListenOn 实现 Transport
func (m *MockTransport) ListenOn(ep types.Endpoint) error {
	if m.ListenOnFunc != nil {
		if err := m.ListenOnFunc(ep); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.listened = append(m.listened, ep)
	m.mu.Unlock()
	return nil
}

// Dial 实现 Transport
func (m *MockTransport) Dial(ctx context.Context, ep types.Endpoint) error {
	m.mu.Lock()
	m.dialed = append(m.dialed, ep)
	m.mu.Unlock()
	if m.DialFunc != nil {
		return m.DialFunc(ctx, ep)
	}
	return nil
}

// ListenAddrs 实现 Transport
func (m *MockTransport) ListenAddrs() []types.Endpoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.Endpoint(nil), m.listened...)
}

// Close 实现 Transport
func (m *MockTransport) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Dialed 已拨号地址
func (m *MockTransport) Dialed() []types.Endpoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.Endpoint(nil), m.dialed...)
}

// Closed 是否已关闭
func (m *MockTransport) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
