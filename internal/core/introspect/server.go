// Package introspect 提供本地自省 HTTP 服务
//
// 该服务运行在本地端口，提供 JSON 格式的诊断信息，用于调试和监控。
// 默认绑定到 127.0.0.1，不暴露到网络。
//
// 端点：
//   - GET /debug/introspect             - 完整诊断报告 (JSON)
//   - GET /debug/introspect/peers       - 连接与发现节点
//   - GET /debug/introspect/peers/{id}  - 单个节点
//   - GET /debug/introspect/runtime     - Go 运行时信息
//   - GET /debug/introspect/events      - 领域事件流 (WebSocket)
//   - GET /metrics                      - Prometheus 指标
//   - GET /health                       - 健康检查
//   - GET /debug/pprof/*                - Go pprof 端点
package introspect

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-docstore/internal/core/eventbus"
	"github.com/dep2p/go-docstore/internal/core/metrics"
	"github.com/dep2p/go-docstore/internal/core/overlay"
	"github.com/dep2p/go-docstore/pkg/lib/log"
	"github.com/dep2p/go-docstore/pkg/types"
)

var logger = log.Logger("core/introspect")

// DefaultAddr 默认监听地址
const DefaultAddr = "127.0.0.1:6060"

// writeWait 单条 WebSocket 消息的写超时
const writeWait = 5 * time.Second

// SnapshotSource 提供覆盖网络快照
type SnapshotSource interface {
	Snapshot() overlay.Snapshot
}

// Server 本地自省 HTTP 服务
type Server struct {
	// 依赖组件
	source    SnapshotSource
	gatherer  prometheus.Gatherer
	bus       *eventbus.Bus
	bandwidth *metrics.Bandwidth

	// 配置
	addr string

	router   *mux.Router
	upgrader websocket.Upgrader
	started  time.Time

	// HTTP 服务器
	server   *http.Server
	listener net.Listener

	// 状态
	running bool
	mu      sync.Mutex
}

// Config 服务配置
type Config struct {
	// Addr 监听地址，默认 "127.0.0.1:6060"
	Addr string

	// Source 必需的快照来源
	Source SnapshotSource

	// Gatherer 可选，为空时不注册 /metrics
	Gatherer prometheus.Gatherer

	// Bus 可选，为空时事件流返回 503
	Bus *eventbus.Bus

	// Bandwidth 可选的带宽统计
	Bandwidth *metrics.Bandwidth
}

// New 创建自省服务
func New(cfg Config) *Server {
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}

	s := &Server{
		source:    cfg.Source,
		gatherer:  cfg.Gatherer,
		bus:       cfg.Bus,
		bandwidth: cfg.Bandwidth,
		addr:      addr,
		upgrader: websocket.Upgrader{
			// 服务只绑定在本地回环地址上
			CheckOrigin: func(*http.Request) bool { return true },
		},
		started: time.Now(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	// 自省端点
	r.HandleFunc("/debug/introspect", s.handleIntrospect).Methods(http.MethodGet)
	r.HandleFunc("/debug/introspect/peers", s.handlePeers).Methods(http.MethodGet)
	r.HandleFunc("/debug/introspect/peers/{id}", s.handlePeer).Methods(http.MethodGet)
	r.HandleFunc("/debug/introspect/runtime", s.handleRuntime).Methods(http.MethodGet)
	r.HandleFunc("/debug/introspect/events", s.handleEvents).Methods(http.MethodGet)

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	// pprof 端点
	r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	r.HandleFunc("/debug/pprof/profile", pprof.Profile)
	r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	r.HandleFunc("/debug/pprof/trace", pprof.Trace)
	r.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)

	// 健康检查
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
	return r
}

// Handler 返回路由，便于测试或挂到外部服务器
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start 启动服务
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	// 创建监听器
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:     s.router,
		ReadTimeout: 10 * time.Second,
		// 事件流是长连接，写超时由每条消息单独设置
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("自省服务异常退出", "error", err)
		}
	}()

	s.running = true
	logger.Info("自省服务已启动", "addr", listener.Addr().String())
	return nil
}

// Stop 停止服务
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		logger.Error("关闭自省服务失败", "error", err)
		return err
	}

	s.running = false
	logger.Info("自省服务已停止")
	return nil
}

// Addr 返回实际监听地址
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// ============================================================================
//                              HTTP 处理器
// ============================================================================

// Report 完整诊断报告
type Report struct {
	Snapshot  overlay.Snapshot `json:"snapshot"`
	Bandwidth *BandwidthInfo   `json:"bandwidth,omitempty"`
	Runtime   RuntimeInfo      `json:"runtime"`
}

// BandwidthInfo 带宽累计
type BandwidthInfo struct {
	TotalIn  int64   `json:"total_in"`
	TotalOut int64   `json:"total_out"`
	RateIn   float64 `json:"rate_in"`
	RateOut  float64 `json:"rate_out"`
}

// RuntimeInfo 运行时信息
type RuntimeInfo struct {
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	NumGC      uint32 `json:"num_gc"`
	Uptime     string `json:"uptime"`
}

// PeersResponse 节点信息
type PeersResponse struct {
	Connected      []types.PeerRecord `json:"connected"`
	Discovered     []types.PeerRecord `json:"discovered"`
	ActiveRelays   []types.PeerID     `json:"active_relays"`
	PendingLookups []types.PeerID     `json:"pending_lookups"`
}

// PeerResponse 单个节点
type PeerResponse struct {
	ID         types.PeerID      `json:"id"`
	Connected  bool              `json:"connected"`
	Relay      bool              `json:"relay"`
	Record     *types.PeerRecord `json:"record,omitempty"`
	Discovered *types.PeerRecord `json:"discovered,omitempty"`
}

// EventMessage 事件流中的一条消息
type EventMessage struct {
	Kind  types.EventKind   `json:"kind"`
	Event types.DomainEvent `json:"event"`
}

// handleIntrospect 处理完整诊断请求
func (s *Server) handleIntrospect(w http.ResponseWriter, _ *http.Request) {
	if s.source == nil {
		http.Error(w, "Overlay not available", http.StatusServiceUnavailable)
		return
	}

	report := Report{
		Snapshot: s.source.Snapshot(),
		Runtime:  s.collectRuntime(),
	}
	if s.bandwidth != nil {
		st := s.bandwidth.Totals()
		report.Bandwidth = &BandwidthInfo{
			TotalIn:  st.TotalIn,
			TotalOut: st.TotalOut,
			RateIn:   st.RateIn,
			RateOut:  st.RateOut,
		}
	}
	s.writeJSON(w, report)
}

// handlePeers 处理节点列表请求
func (s *Server) handlePeers(w http.ResponseWriter, _ *http.Request) {
	if s.source == nil {
		http.Error(w, "Overlay not available", http.StatusServiceUnavailable)
		return
	}

	snap := s.source.Snapshot()
	s.writeJSON(w, PeersResponse{
		Connected:      snap.Connected,
		Discovered:     snap.Discovered,
		ActiveRelays:   snap.ActiveRelays,
		PendingLookups: snap.PendingLookups,
	})
}

// handlePeer 处理单个节点请求
func (s *Server) handlePeer(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		http.Error(w, "Overlay not available", http.StatusServiceUnavailable)
		return
	}

	id := types.PeerID(mux.Vars(r)["id"])
	snap := s.source.Snapshot()

	resp := PeerResponse{ID: id}
	for i := range snap.Connected {
		if snap.Connected[i].ID == id {
			resp.Connected = true
			resp.Record = &snap.Connected[i]
			break
		}
	}
	if rec, ok := snap.DiscoveredPeer(id); ok {
		resp.Discovered = &rec
	}
	for _, p := range snap.ActiveRelays {
		if p == id {
			resp.Relay = true
			break
		}
	}

	if !resp.Connected && resp.Discovered == nil {
		http.Error(w, "Peer not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, resp)
}

// handleRuntime 处理运行时信息请求
func (s *Server) handleRuntime(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.collectRuntime())
}

// handleEvents 将领域事件以 JSON 推送到 WebSocket 客户端
//
// 可通过 ?kind=connected&kind=message_received 过滤事件类型。
// 客户端读不及时时事件在总线侧被丢弃，不会阻塞事件循环。
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.bus == nil {
		http.Error(w, "Event bus not available", http.StatusServiceUnavailable)
		return
	}

	var opts []eventbus.SubscriptionOpt
	if kinds := r.URL.Query()["kind"]; len(kinds) > 0 {
		ks := make([]types.EventKind, len(kinds))
		for i, k := range kinds {
			ks[i] = types.EventKind(k)
		}
		opts = append(opts, eventbus.Kinds(ks...))
	}

	sub, err := s.bus.Subscribe(opts...)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("WebSocket 升级失败", "error", err)
		return
	}
	defer conn.Close()
	logger.Debug("事件流客户端已连接", "remote", r.RemoteAddr)

	// 读协程只用于感知客户端关闭
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			logger.Debug("事件流客户端已断开", "remote", r.RemoteAddr)
			return
		case ev, ok := <-sub.Out():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"),
					time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(EventMessage{Kind: ev.Kind(), Event: ev}); err != nil {
				logger.Debug("事件推送失败", "error", err)
				return
			}
		}
	}
}

// handleHealth 处理健康检查请求
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	health := struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
		Connected int       `json:"connected"`
	}{
		Status:    "ok",
		Timestamp: time.Now(),
	}

	// 检查核心组件
	if s.source == nil {
		health.Status = "degraded"
	} else {
		health.Connected = len(s.source.Snapshot().Connected)
	}

	s.writeJSON(w, health)
}

// ============================================================================
//                              辅助方法
// ============================================================================

func (s *Server) collectRuntime() RuntimeInfo {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return RuntimeInfo{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  ms.HeapAlloc,
		NumGC:      ms.NumGC,
		Uptime:     time.Since(s.started).Truncate(time.Second).String(),
	}
}

// writeJSON 写入 JSON 响应
func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		logger.Error("JSON 编码失败", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
