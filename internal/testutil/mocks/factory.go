package mocks

import (
	"sync"

	"github.com/dep2p/go-docstore/internal/core/identity"
	"github.com/dep2p/go-docstore/pkg/interfaces"
	"github.com/dep2p/go-docstore/pkg/types"
)

// MockFactory 模拟模块工厂，产出上面的各个 Mock
//
// Fail 中按模块名（transport / liveness / gossip / routing / relay）注入构造错误。
type MockFactory struct {
	mu sync.Mutex

	Fail map[string]error

	TransportMock *MockTransport
	LivenessMock  *MockLiveness
	GossipMock    *MockGossip
	RoutingMock   *MockRoutingTable
	RelayMock     *MockRelay

	GossipSpec  interfaces.GossipSpec
	RoutingMode types.RoutingMode

	built []string
}

// NewMockFactory 创建 MockFactory
func NewMockFactory() *MockFactory {
	return &MockFactory{
		LivenessMock: &MockLiveness{},
		GossipMock:   NewMockGossip(),
		RelayMock:    &MockRelay{},
	}
}

func (f *MockFactory) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Fail[name]; err != nil {
		return err
	}
	f.built = append(f.built, name)
	return nil
}

// Transport 构造传输层
func (f *MockFactory) Transport(id *identity.Identity) (interfaces.Transport, error) {
	if err := f.record("transport"); err != nil {
		return nil, err
	}
	if f.TransportMock == nil {
		f.TransportMock = NewMockTransport(id.PeerID())
	}
	return f.TransportMock, nil
}

// Liveness 构造存活检测
func (f *MockFactory) Liveness() (interfaces.Liveness, error) {
	if err := f.record("liveness"); err != nil {
		return nil, err
	}
	return f.LivenessMock, nil
}

// Gossip 构造广播模块
func (f *MockFactory) Gossip(spec interfaces.GossipSpec) (interfaces.Gossip, error) {
	if err := f.record("gossip"); err != nil {
		return nil, err
	}
	f.GossipSpec = spec
	return f.GossipMock, nil
}

// Routing 构造路由表
func (f *MockFactory) Routing(mode types.RoutingMode) (interfaces.RoutingTable, error) {
	if err := f.record("routing"); err != nil {
		return nil, err
	}
	f.RoutingMode = mode
	if f.RoutingMock == nil {
		f.RoutingMock = NewMockRoutingTable(mode)
	}
	f.RoutingMock.ModeValue = mode
	return f.RoutingMock, nil
}

// Relay 构造中继
func (f *MockFactory) Relay() (interfaces.Relay, error) {
	if err := f.record("relay"); err != nil {
		return nil, err
	}
	return f.RelayMock, nil
}

// Built 已成功构造的模块（按顺序）
func (f *MockFactory) Built() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.built...)
}
