// Package overlay 实现节点的单协程事件循环
//
// 事件循环是共享覆盖网络状态的唯一写者。它在两个来源之间公平地轮流取事件：
//   - 命令队列：外部调用方投递的 Publish / FindPeer
//   - 协议事件收件箱：各协议模块通过 EventSink 投递的原始事件
//
// 每处理完一个事件，循环按需发布一份不可变快照（atomic.Pointer），
// 读取方只拿快照，永远拿不到活动状态的引用，因此状态本身不需要加锁。
//
// 对外只发出封闭的领域事件集合（types.DomainEvent），协议模块的原始事件类型不会越过本包边界。
//
// 公平性：两个来源都持续就绪时，循环在两者之间严格交替，命令最多等待一个协议事件。
//
// 发现节点集合有上限（LRU），并按 TTL 定期清理；清理定时器使用可注入的时钟。
package overlay
