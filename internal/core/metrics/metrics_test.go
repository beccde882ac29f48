package metrics

import (
	"testing"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

// TestOverlay_Counters 测试事件循环计数
func TestOverlay_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewOverlay(reg)

	o.CommandHandled("publish")
	o.CommandHandled("publish")
	o.ProtocolEvent("gossip_message")
	o.DomainEvent("connected")
	o.DomainEventDropped()
	o.QueryFailed()
	o.SetPeers(3, 7, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(o.commands.WithLabelValues("publish")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.protocolEvents.WithLabelValues("gossip_message")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.domainEvents.WithLabelValues("connected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.droppedEvents))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.queryFailures))
	assert.Equal(t, 3.0, testutil.ToFloat64(o.connectedPeers))
	assert.Equal(t, 7.0, testutil.ToFloat64(o.discoveredPeers))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.pendingLookups))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

// TestOverlay_NilSafe 测试 nil 接收者
func TestOverlay_NilSafe(t *testing.T) {
	var o *Overlay
	assert.NotPanics(t, func() {
		o.CommandHandled("x")
		o.ProtocolEvent("x")
		o.DomainEvent("x")
		o.DomainEventDropped()
		o.QueryFailed()
		o.SetPeers(1, 2, 3)
	})
}

// TestBandwidth_Collect 测试带宽采集
func TestBandwidth_Collect(t *testing.T) {
	reg := prometheus.NewRegistry()
	b := NewBandwidth(reg)

	// 总量只由 LogSentMessage/LogRecvMessage 计入；*Stream 只计入协议与节点维度
	b.Counter().LogSentMessage(100)
	b.Counter().LogRecvMessage(50)
	b.Counter().LogRecvMessageStream(50, protocol.ID("/test/1.0.0"), peer.ID("p"))

	assert.Equal(t, 4, testutil.CollectAndCount(b))

	// flow 计量器按周期汇总，总量稍后可见
	require.Eventually(t, func() bool {
		totals := b.Totals()
		return totals.TotalOut == 100 && totals.TotalIn == 50
	}, 5*time.Second, 100*time.Millisecond)
	require.Eventually(t, func() bool {
		return b.Counter().GetBandwidthForProtocol(protocol.ID("/test/1.0.0")).TotalIn == 50
	}, 5*time.Second, 100*time.Millisecond)
}

// TestModule 测试 fx 模块
func TestModule(t *testing.T) {
	var (
		reg *prometheus.Registry
		o   *Overlay
		b   *Bandwidth
	)
	app := fxtest.New(t, Module, fx.Populate(&reg, &o, &b))
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, reg)
	require.NotNil(t, o)
	require.NotNil(t, b)
	o.CommandHandled("find_peer")

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["docstore_overlay_commands_total"])
	assert.True(t, names["docstore_bandwidth_in_bytes_total"])
	assert.True(t, names["go_goroutines"])
}
