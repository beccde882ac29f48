package eventbus

import (
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-docstore/pkg/types"
)

// Subscription 订阅
type Subscription struct {
	bus   *Bus
	out   chan types.DomainEvent
	kinds map[types.EventKind]struct{}

	dropped   atomic.Int64
	closeOnce sync.Once
}

// Out 返回事件通道，取消订阅后关闭
func (s *Subscription) Out() <-chan types.DomainEvent {
	return s.out
}

// Dropped 因缓冲区满被丢弃的事件数
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}

// Close 取消订阅，可重复调用
func (s *Subscription) Close() error {
	s.bus.remove(s)
	return nil
}

func (s *Subscription) wants(kind types.EventKind) bool {
	if len(s.kinds) == 0 {
		return true
	}
	_, ok := s.kinds[kind]
	return ok
}

// closeLocked 调用方持有 bus.mu 写锁，保证不会与 Publish 并发
func (s *Subscription) closeLocked() {
	s.closeOnce.Do(func() {
		close(s.out)
	})
}
