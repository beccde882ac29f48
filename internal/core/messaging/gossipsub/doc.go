// Package gossipsub 将 libp2p GossipSub 适配为 interfaces.Gossip
//
// 配置：
//   - 严格签名：每条消息必须携带发布者签名，接收方严格校验
//   - 心跳周期：默认 1s
//   - 消息 ID：base58(blake3(author || seqno || data))，重复发布相同数据不会被去重
//
// 本地发布经过同步的主题校验器，Publish 由此取得 pubsub 实际使用的消息 ID。
//
// 入站消息、对端加入/离开主题均通过 EventSink 投递。本节点自己发布的消息不会回送。
package gossipsub
