package overlay

import (
	"errors"

	"github.com/dep2p/go-docstore/internal/util/mailbox"
	"github.com/dep2p/go-docstore/pkg/interfaces"
)

// Inbox 协议事件收件箱
//
// 实现 interfaces.EventSink，协议模块可在任意协程调用 Emit，永不阻塞。
// 事件循环是唯一的消费者。
type Inbox struct {
	mb *mailbox.Mailbox[interfaces.ProtocolEvent]
}

var _ interfaces.EventSink = (*Inbox)(nil)

// NewInbox 创建无界收件箱
func NewInbox() *Inbox {
	return &Inbox{mb: mailbox.New[interfaces.ProtocolEvent]()}
}

// Emit 实现 EventSink
//
// 循环终止后到达的事件被丢弃。
func (i *Inbox) Emit(ev interfaces.ProtocolEvent) {
	if err := i.mb.Push(ev); err != nil && !errors.Is(err, mailbox.ErrClosed) {
		logger.Warn("协议事件入队失败", "event", ev.EventName(), "error", err)
	}
}

// Len 待处理事件数
func (i *Inbox) Len() int { return i.mb.Len() }

// Close 关闭收件箱
func (i *Inbox) Close() { i.mb.Close() }
