package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "docstore"

// Overlay 事件循环指标
type Overlay struct {
	commands        *prometheus.CounterVec
	protocolEvents  *prometheus.CounterVec
	domainEvents    *prometheus.CounterVec
	droppedEvents   prometheus.Counter
	queryFailures   prometheus.Counter
	connectedPeers  prometheus.Gauge
	discoveredPeers prometheus.Gauge
	pendingLookups  prometheus.Gauge
}

// NewOverlay 创建并注册事件循环指标
func NewOverlay(reg prometheus.Registerer) *Overlay {
	o := &Overlay{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "overlay", Name: "commands_total",
			Help: "Commands handled by the overlay loop.",
		}, []string{"command"}),
		protocolEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "overlay", Name: "protocol_events_total",
			Help: "Protocol events consumed by the overlay loop.",
		}, []string{"event"}),
		domainEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "overlay", Name: "domain_events_total",
			Help: "Domain events emitted to consumers.",
		}, []string{"kind"}),
		droppedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "overlay", Name: "domain_events_dropped_total",
			Help: "Domain events rejected by a full event queue.",
		}),
		queryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "overlay", Name: "query_failures_total",
			Help: "Closest-peer queries that completed with an error.",
		}),
		connectedPeers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "overlay", Name: "connected_peers",
			Help: "Peers with at least one open connection.",
		}),
		discoveredPeers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "overlay", Name: "discovered_peers",
			Help: "Peers currently held in the discovered set.",
		}),
		pendingLookups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "overlay", Name: "pending_lookups",
			Help: "FindPeer targets waiting for a non-empty routing table.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			o.commands, o.protocolEvents, o.domainEvents, o.droppedEvents,
			o.queryFailures, o.connectedPeers, o.discoveredPeers, o.pendingLookups,
		)
	}
	return o
}

// CommandHandled 记录一条已处理命令
func (o *Overlay) CommandHandled(name string) {
	if o == nil {
		return
	}
	o.commands.WithLabelValues(name).Inc()
}

// ProtocolEvent 记录一条协议事件
func (o *Overlay) ProtocolEvent(name string) {
	if o == nil {
		return
	}
	o.protocolEvents.WithLabelValues(name).Inc()
}

// DomainEvent 记录一条领域事件
func (o *Overlay) DomainEvent(kind string) {
	if o == nil {
		return
	}
	o.domainEvents.WithLabelValues(kind).Inc()
}

// DomainEventDropped 记录一条被丢弃的领域事件
func (o *Overlay) DomainEventDropped() {
	if o == nil {
		return
	}
	o.droppedEvents.Inc()
}

// QueryFailed 记录一次失败的查询
func (o *Overlay) QueryFailed() {
	if o == nil {
		return
	}
	o.queryFailures.Inc()
}

// SetPeers 更新节点数
func (o *Overlay) SetPeers(connected, discovered, pending int) {
	if o == nil {
		return
	}
	o.connectedPeers.Set(float64(connected))
	o.discoveredPeers.Set(float64(discovered))
	o.pendingLookups.Set(float64(pending))
}
