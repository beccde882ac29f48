package types

import "fmt"

// ============================================================================
//                              DomainEvent - 领域事件
// ============================================================================

// EventKind 领域事件类型
type EventKind string

const (
	KindConnected        EventKind = "connected"
	KindDisconnected     EventKind = "disconnected"
	KindMessageReceived  EventKind = "message_received"
	KindMessagePublished EventKind = "message_published"
	KindPeerDiscovered   EventKind = "peer_discovered"
	KindError            EventKind = "error"
)

// DomainEvent 事件循环对外发出的事件
//
// 封闭集合：Connected, Disconnected, MessageReceived, MessagePublished,
// PeerDiscovered, Error。调用方通过类型 switch 处理。
type DomainEvent interface {
	Kind() EventKind
	isDomainEvent()
}

// Connected 与节点建立了第一条连接
type Connected struct {
	Peer     PeerID   `json:"peer"`
	Endpoint Endpoint `json:"endpoint"`
}

// Disconnected 与节点的最后一条连接已关闭
type Disconnected struct {
	Peer PeerID `json:"peer"`
}

// MessageReceived 收到主题消息
//
// Source 是转发给我们的节点，Author 是签名的原始发布者，二者在多跳传播时不同。
// Data 已做 UTF-8 尽力解码，非法字节被替换。
type MessageReceived struct {
	Source PeerID `json:"source"`
	Author PeerID `json:"author"`
	Topic  string `json:"topic"`
	ID     string `json:"id"`
	Data   string `json:"data"`
}

// MessagePublished 本地消息已交给 gossip 模块
type MessagePublished struct {
	ID    string `json:"id"`
	Topic string `json:"topic"`
}

// PeerDiscovered 路由表查询返回的节点
type PeerDiscovered struct {
	Peer      PeerID     `json:"peer"`
	Endpoints []Endpoint `json:"endpoints"`
}

// Error 运行期可恢复错误
//
// Op 标识出错的操作：publish / find_peer / dial / queue。
type Error struct {
	Op     string `json:"op"`
	Peer   PeerID `json:"peer,omitempty"`
	Reason string `json:"reason"`
}

func (Connected) Kind() EventKind        { return KindConnected }
func (Disconnected) Kind() EventKind     { return KindDisconnected }
func (MessageReceived) Kind() EventKind  { return KindMessageReceived }
func (MessagePublished) Kind() EventKind { return KindMessagePublished }
func (PeerDiscovered) Kind() EventKind   { return KindPeerDiscovered }
func (Error) Kind() EventKind            { return KindError }

func (Connected) isDomainEvent()        {}
func (Disconnected) isDomainEvent()     {}
func (MessageReceived) isDomainEvent()  {}
func (MessagePublished) isDomainEvent() {}
func (PeerDiscovered) isDomainEvent()   {}
func (Error) isDomainEvent()            {}

// String 实现 fmt.Stringer
func (e Error) String() string {
	if e.Peer != "" {
		return fmt.Sprintf("%s(%s): %s", e.Op, e.Peer.ShortString(), e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}
