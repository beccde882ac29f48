// Package mailbox 实现事件循环使用的多生产者、单消费者队列
//
// 默认无界：Push 永不阻塞，只有在 Close 之后才失败。
// 设置 Limit 后按 OverflowPolicy 处理溢出（丢弃最旧 / 拒绝新元素）。
package mailbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// ============================================================================
// 错误定义
// ============================================================================

var (
	// ErrClosed 队列已关闭
	ErrClosed = errors.New("mailbox closed")
	// ErrFull 队列已满（仅 RejectNew 策略）
	ErrFull = errors.New("mailbox full")
)

// ============================================================================
// 溢出策略
// ============================================================================

// OverflowPolicy 有界队列的溢出策略
type OverflowPolicy int

const (
	// DropOldest 丢弃队首元素，接受新元素
	DropOldest OverflowPolicy = iota
	// RejectNew 拒绝新元素，返回 ErrFull
	RejectNew
)

// String 返回策略名
func (p OverflowPolicy) String() string {
	if p == RejectNew {
		return "reject-new"
	}
	return "drop-oldest"
}

// ParseOverflowPolicy 解析策略名
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop-oldest", "drop_oldest":
		return DropOldest, nil
	case "reject-new", "reject_new":
		return RejectNew, nil
	default:
		return DropOldest, fmt.Errorf("unknown overflow policy %q", s)
	}
}

// ============================================================================
// Mailbox 实现
// ============================================================================

// Mailbox 多生产者单消费者队列
type Mailbox[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool

	// ready 容量为 1 的通知通道，有元素时保持可读
	ready chan struct{}
	done  chan struct{}

	limit   int
	policy  OverflowPolicy
	dropped atomic.Int64
}

// Option 配置选项
type Option func(*settings)

type settings struct {
	limit  int
	policy OverflowPolicy
}

// WithLimit 设置容量上限，<=0 表示无界
func WithLimit(limit int, policy OverflowPolicy) Option {
	return func(s *settings) {
		s.limit = limit
		s.policy = policy
	}
}

// New 创建队列
func New[T any](opts ...Option) *Mailbox[T] {
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}
	return &Mailbox[T]{
		ready:  make(chan struct{}, 1),
		done:   make(chan struct{}),
		limit:  s.limit,
		policy: s.policy,
	}
}

// Push 入队
//
// 无界队列只在关闭后返回 ErrClosed。有界队列在 RejectNew 策略下满时返回 ErrFull，
// 在 DropOldest 策略下丢弃队首并计数。
func (m *Mailbox[T]) Push(item T) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.limit > 0 && len(m.items) >= m.limit {
		if m.policy == RejectNew {
			m.mu.Unlock()
			m.dropped.Add(1)
			return ErrFull
		}
		var zero T
		m.items[0] = zero
		m.items = m.items[1:]
		m.dropped.Add(1)
	}
	m.items = append(m.items, item)
	m.mu.Unlock()

	m.signal()
	return nil
}

// TryPop 非阻塞出队
func (m *Mailbox[T]) TryPop() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	if len(m.items) == 0 {
		return zero, false
	}
	item := m.items[0]
	m.items[0] = zero
	m.items = m.items[1:]
	if len(m.items) > 0 {
		m.signal()
	}
	return item, true
}

// Pop 阻塞出队
//
// 队列关闭且已取空时返回 ErrClosed。
func (m *Mailbox[T]) Pop(ctx context.Context) (T, error) {
	for {
		if item, ok := m.TryPop(); ok {
			return item, nil
		}
		var zero T
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-m.ready:
		case <-m.done:
			if item, ok := m.TryPop(); ok {
				return item, nil
			}
			return zero, ErrClosed
		}
	}
}

// Ready 有元素时可读的通知通道
//
// 读到通知后应调用 TryPop；通知可能是陈旧的，TryPop 返回 false 时继续等待即可。
func (m *Mailbox[T]) Ready() <-chan struct{} {
	return m.ready
}

// Done 关闭后可读
func (m *Mailbox[T]) Done() <-chan struct{} {
	return m.done
}

// Close 关闭队列，已入队元素仍可取出
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.done)
}

// Closed 是否已关闭
func (m *Mailbox[T]) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Len 当前长度
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Dropped 因溢出被丢弃/拒绝的元素数
func (m *Mailbox[T]) Dropped() int64 {
	return m.dropped.Load()
}

func (m *Mailbox[T]) signal() {
	select {
	case m.ready <- struct{}{}:
	default:
	}
}
