package eventbus

import (
	"errors"
	"sync"

	"github.com/dep2p/go-docstore/pkg/lib/log"
	"github.com/dep2p/go-docstore/pkg/types"
)

var logger = log.Logger("core/eventbus")

// ErrClosed 事件总线已关闭
var ErrClosed = errors.New("eventbus closed")

// dropWarnEvery 每丢弃这么多事件打印一次警告
const dropWarnEvery = 100

// Bus 领域事件总线
type Bus struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
}

// NewBus 创建事件总线
func NewBus() *Bus {
	return &Bus{subs: make(map[*Subscription]struct{})}
}

// Subscribe 订阅事件
func (b *Bus) Subscribe(opts ...SubscriptionOpt) (*Subscription, error) {
	s := subscriptionSettings{buffer: DefaultBufSize}
	for _, opt := range opts {
		opt(&s)
	}

	sub := &Subscription{
		bus:   b,
		out:   make(chan types.DomainEvent, s.buffer),
		kinds: s.kinds,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	b.subs[sub] = struct{}{}
	return sub, nil
}

// Publish 向所有订阅者投递事件副本
//
// 不阻塞：订阅者缓冲区满时丢弃。
func (b *Bus) Publish(ev types.DomainEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		if !sub.wants(ev.Kind()) {
			continue
		}
		select {
		case sub.out <- ev:
		default:
			if n := sub.dropped.Add(1); n%dropWarnEvery == 1 {
				logger.Warn("订阅者消费过慢，事件被丢弃", "kind", string(ev.Kind()), "dropped", n)
			}
		}
	}
}

// Subscribers 当前订阅者数量
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close 关闭总线及全部订阅
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		sub.closeLocked()
	}
	b.subs = nil
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	sub.closeLocked()
}
