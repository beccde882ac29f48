// Package interfaces 定义 docstore 公共接口
//
// 本文件定义 Relay 接口。
package interfaces

// RelayHopProtocol 电路中继 v2 的 hop 协议
//
// identify 中声明支持该协议的对端被视为可用中继。
const RelayHopProtocol = "/libp2p/circuit/relay/0.2.0/hop"

// Relay 电路中继服务
//
// 以默认配置启用，不向协调器暴露操作；存在即代表本节点可为他人中继。
type Relay interface {
	// Close 停止中继
	Close() error
}
