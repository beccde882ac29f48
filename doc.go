// Package docstore 提供文档同步网络的覆盖层节点
//
// 每个节点按角色组合协议模块（传输、存活检测、主题广播、DHT 路由表、中继），
// 由单协程事件循环驱动，对外只暴露两类交互：
//
//   - 命令：Publish 发布文档更新，FindPeer 查找节点
//   - 领域事件：Connected / Disconnected / MessageReceived / MessagePublished /
//     PeerDiscovered / Error
//
// # 角色
//
//	角色       DHT 模式   中继服务   典型部署
//	client     client     无         浏览器或移动端
//	relay      server     有         公网中继
//	full       server     有         常驻全节点
//
// # 快速开始
//
//	node, err := docstore.Start(ctx,
//	    docstore.WithPreset(docstore.PresetFullNode),
//	    docstore.WithBootstrapPeers("/ip4/1.2.3.4/tcp/4001/p2p/12D3KooW..."),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Close()
//
//	_ = node.Publish(ctx, []byte(`{"doc":"a","rev":1}`))
//
//	for {
//	    ev, err := node.NextEvent(ctx)
//	    if err != nil {
//	        break
//	    }
//	    fmt.Println(ev.Kind(), ev)
//	}
//
// # 配置
//
// 选项按顺序应用，WithConfig 整体替换配置，应放在其他选项之前。
// 二进制程序的配置优先级为：命令行参数 > 环境变量 > JSON 配置文件 > 默认值。
package docstore
