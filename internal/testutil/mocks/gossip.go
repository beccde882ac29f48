package mocks

import (
	"context"
	"fmt"
	"sync"
)

// PublishCall 记录 Publish 调用
type PublishCall struct {
	Topic string
	Data  []byte
}

// MockGossip 模拟 interfaces.Gossip
type MockGossip struct {
	mu sync.Mutex

	SubscribeFunc func(topic string) error
	PublishFunc   func(ctx context.Context, topic string, data []byte) (string, error)
	CloseFunc     func() error

	topics    []string
	published []PublishCall
	closed    bool
}

// NewMockGossip 创建 MockGossip
func NewMockGossip() *MockGossip {
	return &MockGossip{}
}

// Subscribe 实现 Gossip
func (m *MockGossip) Subscribe(topic string) error {
	if m.SubscribeFunc != nil {
		if err := m.SubscribeFunc(topic); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.topics = append(m.topics, topic)
	m.mu.Unlock()
	return nil
}

// Publish 实现 Gossip
func (m *MockGossip) Publish(ctx context.Context, topic string, data []byte) (string, error) {
	m.mu.Lock()
	m.published = append(m.published, PublishCall{Topic: topic, Data: append([]byte(nil), data...)})
	n := len(m.published)
	m.mu.Unlock()
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, data)
	}
	return fmt.Sprintf("msg-%d", n), nil
}

// Topics 实现 Gossip
func (m *MockGossip) Topics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.topics...)
}

// Close 实现 Gossip
func (m *MockGossip) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Published 已发布的消息
func (m *MockGossip) Published() []PublishCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PublishCall(nil), m.published...)
}

// Closed 是否已关闭
func (m *MockGossip) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
