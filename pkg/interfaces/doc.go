// Package interfaces 定义 docstore 协调器依赖的外部协作方契约
//
// 协调器只持有这些接口的引用，从不触碰协议模块内部：
//   - transport.go       - 传输层（监听、拨号）
//   - liveness.go        - 存活检测 / identify
//   - messaging.go       - gossip 广播
//   - dht.go             - 路由表（DHT）
//   - relay.go           - 电路中继
//   - protocol_events.go - 协议模块向协调器投递的事件
//   - module_set.go      - 按角色组合出的模块集合
//
// 协议模块通过 EventSink 投递 ProtocolEvent；ProtocolEvent 不会越过协调器边界，
// 对外只暴露 types.DomainEvent。
//
// # 依赖方向
//
//	root → overlay → interfaces ← (host, gossipsub, dht, liveness, relay)
//
// 禁止反向依赖。
package interfaces
