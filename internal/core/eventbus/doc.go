// Package eventbus 将事件循环发出的领域事件分发给多个订阅者
//
// 事件循环的主事件队列只有一个消费者（Node.NextEvent）。需要旁路观察事件的组件，
// 如 introspect 的 websocket 推送或命令行的统计输出，通过 Bus 订阅副本：
//
//	sub, _ := bus.Subscribe(eventbus.BufSize(64), eventbus.Kinds(types.KindConnected))
//	defer sub.Close()
//	for ev := range sub.Out() {
//	    // 处理事件
//	}
//
// 发布永不阻塞：订阅者缓冲区满时丢弃事件并计数，慢消费者不会拖慢事件循环。
package eventbus
