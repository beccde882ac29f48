// Package interfaces 定义 docstore 公共接口
//
// 本文件定义协议模块投递给协调器的事件。
package interfaces

import (
	"github.com/dep2p/go-docstore/pkg/types"
)

// ProtocolEvent 协议模块事件
//
// 只在协调器内部流转，不会暴露给调用方。
type ProtocolEvent interface {
	EventName() string
	isProtocolEvent()
}

// EventSink 协议事件接收端
//
// 实现必须是非阻塞的，可被任意 goroutine 调用。
type EventSink interface {
	Emit(ev ProtocolEvent)
}

// EventSinkFunc 函数适配器
type EventSinkFunc func(ProtocolEvent)

// Emit 实现 EventSink
func (f EventSinkFunc) Emit(ev ProtocolEvent) { f(ev) }

// GossipMessage 收到主题消息
type GossipMessage struct {
	ReceivedFrom types.PeerID
	Author       types.PeerID
	Topic        string
	ID           string
	Data         []byte
}

// GossipSubscribed 对端加入主题
type GossipSubscribed struct {
	Peer  types.PeerID
	Topic string
}

// GossipUnsubscribed 对端离开主题
type GossipUnsubscribed struct {
	Peer  types.PeerID
	Topic string
}

// IdentifyReceived identify 交换完成
type IdentifyReceived struct {
	Peer         types.PeerID
	ListenAddrs  []types.Endpoint
	Protocols    []string
	AgentVersion string
}

// FoundPeer 查询结果中的节点
type FoundPeer struct {
	ID        types.PeerID
	Endpoints []types.Endpoint
}

// QueryCompleted 最近节点查询结束
type QueryCompleted struct {
	QueryID QueryID
	Target  types.PeerID
	Peers   []FoundPeer
	Err     error
}

// ConnectionEstablished 建立了一条连接
type ConnectionEstablished struct {
	Peer     types.PeerID
	Endpoint types.Endpoint
	Outbound bool
}

// ConnectionClosed 一条连接已关闭
type ConnectionClosed struct {
	Peer     types.PeerID
	Endpoint types.Endpoint
}

// NewListenAddr 本地新增监听地址
type NewListenAddr struct {
	Addr types.Endpoint
}

// ListenAddrExpired 本地监听地址失效
type ListenAddrExpired struct {
	Addr types.Endpoint
}

// OutgoingConnectionError 出站拨号失败
type OutgoingConnectionError struct {
	Peer     types.PeerID
	Endpoint types.Endpoint
	Err      error
}

func (GossipMessage) EventName() string           { return "gossip_message" }
func (GossipSubscribed) EventName() string        { return "gossip_subscribed" }
func (GossipUnsubscribed) EventName() string      { return "gossip_unsubscribed" }
func (IdentifyReceived) EventName() string        { return "identify_received" }
func (QueryCompleted) EventName() string          { return "query_completed" }
func (ConnectionEstablished) EventName() string   { return "connection_established" }
func (ConnectionClosed) EventName() string        { return "connection_closed" }
func (NewListenAddr) EventName() string           { return "new_listen_addr" }
func (ListenAddrExpired) EventName() string       { return "listen_addr_expired" }
func (OutgoingConnectionError) EventName() string { return "outgoing_connection_error" }

func (GossipMessage) isProtocolEvent()           {}
func (GossipSubscribed) isProtocolEvent()        {}
func (GossipUnsubscribed) isProtocolEvent()      {}
func (IdentifyReceived) isProtocolEvent()        {}
func (QueryCompleted) isProtocolEvent()          {}
func (ConnectionEstablished) isProtocolEvent()   {}
func (ConnectionClosed) isProtocolEvent()        {}
func (NewListenAddr) isProtocolEvent()           {}
func (ListenAddrExpired) isProtocolEvent()       {}
func (OutgoingConnectionError) isProtocolEvent() {}
