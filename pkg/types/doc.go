// Package types 定义 docstore 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，用于在协调器、协议模块与调用方之间传递数据。
//
// # 文件组织
//
//   - ids.go      - PeerID, Endpoint, PeerRecord
//   - role.go     - Role, RoutingMode
//   - command.go  - Command（Publish / FindPeer）
//   - events.go   - DomainEvent（协调器对外发出的封闭事件集合）
//
// DomainEvent 是一个封闭集合：协调器绝不把底层协议的原始事件透传给调用方，
// 这样协议模块可以独立替换。
package types
