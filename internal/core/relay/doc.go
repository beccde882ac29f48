// Package relay 提供电路中继 v2 服务端
//
// 只有 Relay 与 FullNode 角色会创建本服务。服务以默认资源配置运行，
// 不向协调器暴露任何操作：存在即代表本节点可以为 NAT 之后的节点转发流量。
//
// 作为客户端使用他人中继（预留、经中继拨号）由 libp2p 主机内置的
// relay client 处理，不在本包范围内。
package relay
