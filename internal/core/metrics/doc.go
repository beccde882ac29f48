// Package metrics 提供 Prometheus 监控指标
//
// 两组指标：
//   - Overlay：事件循环处理的命令、协议事件、领域事件计数，以及连接/发现节点数
//   - Bandwidth：libp2p 带宽计数器的总量与速率，作为自定义 Collector 导出
//
// 所有指标注册在独立的 Registry 上，由 introspect 服务的 /metrics 暴露。
// Overlay 的方法对 nil 接收者是空操作，未启用指标时调用方无需判空。
//
// # 快速开始
//
//	reg := metrics.NewRegistry()
//	om := metrics.NewOverlay(reg)
//	om.CommandHandled("publish")
//
//	bw := metrics.NewBandwidth(reg)
//	hostOpts = append(hostOpts, libp2p.BandwidthReporter(bw.Counter()))
package metrics
