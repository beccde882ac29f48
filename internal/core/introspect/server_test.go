package introspect

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-docstore/internal/core/eventbus"
	"github.com/dep2p/go-docstore/internal/core/metrics"
	"github.com/dep2p/go-docstore/internal/core/overlay"
	"github.com/dep2p/go-docstore/pkg/types"
)

type staticSource struct {
	snap overlay.Snapshot
}

func (s staticSource) Snapshot() overlay.Snapshot { return s.snap }

func testSnapshot() overlay.Snapshot {
	return overlay.Snapshot{
		LocalPeer: "local",
		Role:      "full",
		Connected: []types.PeerRecord{
			{ID: "peer-a", Endpoints: []types.Endpoint{"/ip4/10.0.0.1/tcp/1"}},
		},
		Discovered: []types.PeerRecord{
			{ID: "peer-b", Endpoints: []types.Endpoint{"/ip4/10.0.0.2/tcp/1"}},
		},
		ActiveRelays: []types.PeerID{"peer-a"},
	}
}

func newTestServer(t *testing.T, bus *eventbus.Bus) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	ov := metrics.NewOverlay(reg)
	ov.CommandHandled("publish")

	s := New(Config{
		Source:    staticSource{snap: testSnapshot()},
		Gatherer:  reg,
		Bus:       bus,
		Bandwidth: metrics.NewBandwidth(reg),
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// TestServer_Introspect 测试完整诊断报告
func TestServer_Introspect(t *testing.T) {
	ts := newTestServer(t, nil)

	var report Report
	resp := getJSON(t, ts.URL+"/debug/introspect", &report)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, types.PeerID("local"), report.Snapshot.LocalPeer)
	assert.Len(t, report.Snapshot.Connected, 1)
	require.NotNil(t, report.Bandwidth)
	assert.NotEmpty(t, report.Runtime.GoVersion)
}

// TestServer_Peers 测试节点列表与单节点查询
func TestServer_Peers(t *testing.T) {
	ts := newTestServer(t, nil)

	var peers PeersResponse
	getJSON(t, ts.URL+"/debug/introspect/peers", &peers)
	assert.Equal(t, []types.PeerID{"peer-a"}, peers.ActiveRelays)
	assert.Len(t, peers.Discovered, 1)

	var one PeerResponse
	resp := getJSON(t, ts.URL+"/debug/introspect/peers/peer-a", &one)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, one.Connected)
	assert.True(t, one.Relay)
	require.NotNil(t, one.Record)
	assert.Equal(t, []types.Endpoint{"/ip4/10.0.0.1/tcp/1"}, one.Record.Endpoints)

	one = PeerResponse{}
	getJSON(t, ts.URL+"/debug/introspect/peers/peer-b", &one)
	assert.False(t, one.Connected)
	assert.NotNil(t, one.Discovered)

	resp = getJSON(t, ts.URL+"/debug/introspect/peers/nobody", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// TestServer_MethodNotAllowed 测试非 GET 请求
func TestServer_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/debug/introspect", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

// TestServer_Metrics 测试 Prometheus 指标导出
func TestServer_Metrics(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "docstore_overlay_commands_total")
	assert.Contains(t, string(body), "docstore_bandwidth")
}

// TestServer_Health 测试健康检查
func TestServer_Health(t *testing.T) {
	ts := newTestServer(t, nil)

	var health struct {
		Status    string `json:"status"`
		Connected int    `json:"connected"`
	}
	getJSON(t, ts.URL+"/health", &health)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 1, health.Connected)

	degraded := httptest.NewServer(New(Config{}).Handler())
	defer degraded.Close()
	getJSON(t, degraded.URL+"/health", &health)
	assert.Equal(t, "degraded", health.Status)

	resp := getJSON(t, degraded.URL+"/debug/introspect", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

// TestServer_Events 测试 WebSocket 事件流与类型过滤
func TestServer_Events(t *testing.T) {
	bus := eventbus.NewBus()
	defer bus.Close()
	ts := newTestServer(t, bus)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/debug/introspect/events?kind=connected"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	bus.Publish(types.MessagePublished{ID: "m1", Topic: "t"})
	bus.Publish(types.Connected{Peer: "peer-a", Endpoint: "/ip4/10.0.0.1/tcp/1"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Kind  types.EventKind `json:"kind"`
		Event types.Connected `json:"event"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, types.KindConnected, msg.Kind)
	assert.Equal(t, types.PeerID("peer-a"), msg.Event.Peer)

	// 客户端断开后订阅被释放
	conn.Close()
	require.Eventually(t, func() bool { return bus.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

// TestServer_EventsWithoutBus 测试未配置事件总线
func TestServer_EventsWithoutBus(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := getJSON(t, ts.URL+"/debug/introspect/events", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

// TestServer_StartStop 测试监听与关闭
func TestServer_StartStop(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0", Source: staticSource{snap: testSnapshot()}})
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()), "重复启动是空操作")

	resp, err := http.Get("http://" + s.Addr() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}
