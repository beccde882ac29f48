package metrics

import (
	lpmetrics "github.com/libp2p/go-libp2p/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Bandwidth 带宽指标
//
// 内部持有 libp2p 的 BandwidthCounter，主机通过 libp2p.BandwidthReporter 写入；
// 采集时读取总量与速率，不保留历史。
type Bandwidth struct {
	counter *lpmetrics.BandwidthCounter

	totalIn  *prometheus.Desc
	totalOut *prometheus.Desc
	rateIn   *prometheus.Desc
	rateOut  *prometheus.Desc
}

var _ prometheus.Collector = (*Bandwidth)(nil)

// NewBandwidth 创建带宽指标，reg 非空时注册
func NewBandwidth(reg prometheus.Registerer) *Bandwidth {
	b := &Bandwidth{
		counter:  lpmetrics.NewBandwidthCounter(),
		totalIn:  prometheus.NewDesc(namespace+"_bandwidth_in_bytes_total", "Bytes received by the host.", nil, nil),
		totalOut: prometheus.NewDesc(namespace+"_bandwidth_out_bytes_total", "Bytes sent by the host.", nil, nil),
		rateIn:   prometheus.NewDesc(namespace+"_bandwidth_in_rate", "Inbound rate in bytes per second.", nil, nil),
		rateOut:  prometheus.NewDesc(namespace+"_bandwidth_out_rate", "Outbound rate in bytes per second.", nil, nil),
	}
	if reg != nil {
		reg.MustRegister(b)
	}
	return b
}

// Counter 供主机使用的 libp2p Reporter
func (b *Bandwidth) Counter() *lpmetrics.BandwidthCounter {
	return b.counter
}

// Totals 当前总量与速率
func (b *Bandwidth) Totals() lpmetrics.Stats {
	return b.counter.GetBandwidthTotals()
}

// Describe 实现 prometheus.Collector
func (b *Bandwidth) Describe(ch chan<- *prometheus.Desc) {
	ch <- b.totalIn
	ch <- b.totalOut
	ch <- b.rateIn
	ch <- b.rateOut
}

// Collect 实现 prometheus.Collector
func (b *Bandwidth) Collect(ch chan<- prometheus.Metric) {
	s := b.counter.GetBandwidthTotals()
	ch <- prometheus.MustNewConstMetric(b.totalIn, prometheus.CounterValue, float64(s.TotalIn))
	ch <- prometheus.MustNewConstMetric(b.totalOut, prometheus.CounterValue, float64(s.TotalOut))
	ch <- prometheus.MustNewConstMetric(b.rateIn, prometheus.GaugeValue, s.RateIn)
	ch <- prometheus.MustNewConstMetric(b.rateOut, prometheus.GaugeValue, s.RateOut)
}
