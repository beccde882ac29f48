// Package dht 将 go-libp2p-kad-dht 适配为 interfaces.RoutingTable
//
// 参与模式由节点角色决定：
//   - Client 角色以客户端模式加入，只发查询，不应答他人
//   - Relay / Full 角色以服务端模式加入
//
// 最近节点查询异步执行，结果以 QueryCompleted 事件投递，通过 QueryID 关联。
// 路由表为空时查询与刷新都立即返回 interfaces.ErrNoKnownPeers。
package dht
