package mocks

import (
	"fmt"
	"sync"

	"github.com/dep2p/go-docstore/pkg/interfaces"
	"github.com/dep2p/go-docstore/pkg/types"
)

// MockRoutingTable 模拟 interfaces.RoutingTable
//
// 默认行为是一个内存路由表：AddAddress 幂等，表为空时 FindClosestPeers
// 返回 interfaces.ErrNoKnownPeers。
type MockRoutingTable struct {
	mu sync.Mutex

	ModeValue types.RoutingMode

	AddAddressFunc       func(peer types.PeerID, ep types.Endpoint) (bool, error)
	FindClosestPeersFunc func(target types.PeerID) (interfaces.QueryID, error)
	BootstrapFunc        func() error
	CloseFunc            func() error

	entries    map[types.PeerID][]types.Endpoint
	queries    []types.PeerID
	bootstraps int
	closed     bool
}

// NewMockRoutingTable 创建 MockRoutingTable
func NewMockRoutingTable(mode types.RoutingMode) *MockRoutingTable {
	return &MockRoutingTable{
		ModeValue: mode,
		entries:   make(map[types.PeerID][]types.Endpoint),
	}
}

// Mode 实现 RoutingTable
func (m *MockRoutingTable) Mode() types.RoutingMode { return m.ModeValue }

// AddAddress 实现 RoutingTable
func (m *MockRoutingTable) AddAddress(peer types.PeerID, ep types.Endpoint) (bool, error) {
	if m.AddAddressFunc != nil {
		return m.AddAddressFunc(peer, ep)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[types.PeerID][]types.Endpoint)
	}
	for _, e := range m.entries[peer] {
		if e == ep {
			return false, nil
		}
	}
	m.entries[peer] = append(m.entries[peer], ep)
	return true, nil
}

// FindClosestPeers 实现 RoutingTable
func (m *MockRoutingTable) FindClosestPeers(target types.PeerID) (interfaces.QueryID, error) {
	m.mu.Lock()
	m.queries = append(m.queries, target)
	n := len(m.queries)
	size := len(m.entries)
	m.mu.Unlock()

	if m.FindClosestPeersFunc != nil {
		return m.FindClosestPeersFunc(target)
	}
	if size == 0 {
		return "", interfaces.ErrNoKnownPeers
	}
	return interfaces.QueryID(fmt.Sprintf("q-%d", n)), nil
}

// Bootstrap 实现 RoutingTable
func (m *MockRoutingTable) Bootstrap() error {
	m.mu.Lock()
	m.bootstraps++
	m.mu.Unlock()
	if m.BootstrapFunc != nil {
		return m.BootstrapFunc()
	}
	return nil
}

// Size 实现 RoutingTable
func (m *MockRoutingTable) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close 实现 RoutingTable
func (m *MockRoutingTable) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Endpoints 某节点在表中的地址
func (m *MockRoutingTable) Endpoints(peer types.PeerID) []types.Endpoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.Endpoint(nil), m.entries[peer]...)
}

// Queries 已发起的查询目标
func (m *MockRoutingTable) Queries() []types.PeerID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.PeerID(nil), m.queries...)
}

// BootstrapCalls Bootstrap 调用次数
func (m *MockRoutingTable) BootstrapCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bootstraps
}

// Closed 是否已关闭
func (m *MockRoutingTable) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
