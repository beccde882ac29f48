// Package host 将 libp2p 主机适配为 interfaces.Transport
//
// 一个节点只有一个 libp2p 主机，其余协议模块（gossip、DHT、ping、relay）
// 都挂在这个主机上。主机负责把网络层的变化翻译为协议事件投递给协调器：
//
//   - 每条连接建立/关闭   → ConnectionEstablished / ConnectionClosed
//   - 本地地址新增/移除   → NewListenAddr / ListenAddrExpired
//   - identify 完成       → IdentifyReceived
//   - 异步拨号失败        → OutgoingConnectionError
//
// 同一节点多条连接的去重（首连/末断）由协调器完成，这里逐条上报。
//
// # 传输栈
//
//	TCP + noise + yamux / QUIC v1 / WebRTC-direct
package host
