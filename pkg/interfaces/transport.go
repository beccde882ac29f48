// Package interfaces 定义 docstore 公共接口
//
// 本文件定义 Transport 接口。
package interfaces

import (
	"context"

	"github.com/dep2p/go-docstore/pkg/types"
)

// Transport 传输层
//
// 至少包含一种常规流传输（TCP）和一种具备 NAT 穿透能力的传输（WebRTC-direct）。
// 连接建立/关闭、监听地址变化、出站连接失败均通过 EventSink 异步投递。
type Transport interface {
	// LocalPeer 本地节点地址
	LocalPeer() types.PeerID

	// ListenOn 在指定地址上监听
	ListenOn(ep types.Endpoint) error

	// Dial 拨号
	//
	// 同步返回的错误只表示请求无法发出（地址非法、拨号自身）；
	// 连接本身异步建立，失败以 OutgoingConnectionError 事件投递。
	// 地址可以不含 /p2p/<PeerID>，对端身份在握手中获知。
	Dial(ctx context.Context, ep types.Endpoint) error

	// ListenAddrs 当前监听地址
	ListenAddrs() []types.Endpoint

	// Close 关闭传输层
	Close() error
}
