package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	lpmetrics "github.com/libp2p/go-libp2p/core/metrics"
	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-docstore/internal/core/eventbus"
	"github.com/dep2p/go-docstore/internal/core/identity"
	"github.com/dep2p/go-docstore/internal/core/introspect"
	"github.com/dep2p/go-docstore/internal/core/metrics"
	"github.com/dep2p/go-docstore/internal/core/overlay"
	"github.com/dep2p/go-docstore/pkg/interfaces"
	"github.com/dep2p/go-docstore/pkg/lib/log"
	"github.com/dep2p/go-docstore/pkg/types"
)

var logger = log.Logger("docstore")

// ════════════════════════════════════════════════════════════════════════════
//                              节点状态
// ════════════════════════════════════════════════════════════════════════════

// NodeState 节点状态
type NodeState int

const (
	// StateIdle 已创建，未启动
	StateIdle NodeState = iota

	// StateStarting 启动中（Fx App 启动中）
	StateStarting

	// StateRunning 运行中
	StateRunning

	// StateStopped 已关闭，不可重新启动
	StateStopped
)

// String 返回状态的字符串表示
func (s NodeState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

const (
	// startTimeout 启动超时（绑定监听地址、加入主题、引导）
	startTimeout = 30 * time.Second

	// stopTimeout 关闭超时
	stopTimeout = 10 * time.Second
)

// Snapshot 覆盖网络状态快照
type Snapshot = overlay.Snapshot

// EventSubscription 领域事件订阅
type EventSubscription = eventbus.Subscription

// Node 文档同步网络节点
//
// Node 是一个门面，聚合了按角色组合的协议模块与事件循环：
//   - 命令通过 Publish / FindPeer 投递，永不阻塞
//   - 领域事件通过 NextEvent 逐个读取（单消费者），
//     或通过 SubscribeEvents 获取尽力而为的副本（多消费者）
//
// 使用示例：
//
//	node, err := docstore.New(ctx, docstore.WithRole(types.RoleClient))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Close()
//
//	if err := node.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	_ = node.FindPeer(ctx, target)
type Node struct {
	// ────────────────────────────────────────────────────────────────────────
	// 配置和状态
	// ────────────────────────────────────────────────────────────────────────

	config *nodeConfig
	app    *fx.App

	// logCloser 日志文件，关闭节点时释放
	logCloser io.Closer

	// ────────────────────────────────────────────────────────────────────────
	// 核心组件（由 Fx 注入）
	// ────────────────────────────────────────────────────────────────────────

	identity *identity.Identity
	modules  *interfaces.ModuleSet
	loop     *overlay.Loop
	bus      *eventbus.Bus

	// 可选组件
	bandwidth        *metrics.Bandwidth
	introspectServer *introspect.Server

	// ────────────────────────────────────────────────────────────────────────
	// 生命周期状态
	// ────────────────────────────────────────────────────────────────────────

	mu    sync.RWMutex
	state NodeState
}

// ════════════════════════════════════════════════════════════════════════════
//                              构造函数
// ════════════════════════════════════════════════════════════════════════════

// New 创建新节点
//
// 加载身份并按角色组合全部协议模块，但不绑定地址、不连接任何节点，
// 需要调用 Start() 启动。身份文件损坏、模块构建失败都在这里返回。
func New(_ context.Context, opts ...Option) (*Node, error) {
	cfg := newNodeConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	node := &Node{config: cfg}

	// 日志文件必须在最早期应用
	if cfg.config.LogFile != "" {
		closer, err := log.SetupFile(cfg.config.LogFile, log.ParseLevel(os.Getenv(log.EnvLogLevel)))
		if err != nil {
			return nil, fmt.Errorf("setup log file: %w", err)
		}
		node.logCloser = closer
	}

	app, err := buildFxApp(cfg, node)
	if err == nil {
		err = app.Err()
	}
	if err != nil {
		node.releaseLog()
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	node.app = app

	logger.Info("节点已创建",
		"peer", log.TruncateID(node.ID().String(), 16),
		"role", cfg.config.Role.String())
	return node, nil
}

// Start 快捷启动函数
//
// 等价于 New() + Start()。
func Start(ctx context.Context, opts ...Option) (*Node, error) {
	node, err := New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	if err := node.Start(ctx); err != nil {
		_ = node.Close()
		return nil, fmt.Errorf("start node: %w", err)
	}
	return node, nil
}

// Start 启动节点
//
// 依次绑定监听地址、加入主题、执行引导并启动事件循环。
// 绑定或加入主题失败时返回错误；引导失败只记录日志。
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	switch n.state {
	case StateStarting, StateRunning:
		n.mu.Unlock()
		return ErrAlreadyStarted
	case StateStopped:
		n.mu.Unlock()
		return ErrNodeClosed
	}
	n.state = StateStarting
	n.mu.Unlock()

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	if err := n.app.Start(startCtx); err != nil {
		n.setState(StateStopped)
		return err
	}

	n.setState(StateRunning)
	logger.Info("节点已启动",
		"peer", log.TruncateID(n.ID().String(), 16),
		"listen", len(n.ListenAddrs()))
	return nil
}

// Close 关闭节点
//
// 先停止事件循环，再关闭全部协议模块。可重复调用。
func (n *Node) Close() error {
	n.mu.Lock()
	prev := n.state
	if prev == StateStopped && n.app == nil {
		n.mu.Unlock()
		return nil
	}
	n.state = StateStopped
	app := n.app
	n.app = nil
	n.mu.Unlock()

	var err error
	switch prev {
	case StateRunning, StateStarting:
		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		err = app.Stop(ctx)
		cancel()
	default:
		// 未启动或启动失败：停止钩子不完整，直接释放已构建的组件
		err = n.release()
	}

	n.releaseLog()
	logger.Info("节点已关闭")
	return err
}

// ════════════════════════════════════════════════════════════════════════════
//                              基本信息
// ════════════════════════════════════════════════════════════════════════════

// ID 返回节点 ID
func (n *Node) ID() types.PeerID {
	if n.identity == nil {
		return ""
	}
	return n.identity.PeerID()
}

// Role 返回节点角色
func (n *Node) Role() types.Role {
	return n.config.config.Role
}

// State 返回节点状态
func (n *Node) State() NodeState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// ListenAddrs 返回传输层实际监听的地址
func (n *Node) ListenAddrs() []types.Endpoint {
	if n.modules == nil || n.modules.Transport == nil {
		return nil
	}
	return n.modules.Transport.ListenAddrs()
}

// Snapshot 返回覆盖网络状态快照
func (n *Node) Snapshot() Snapshot {
	if n.loop == nil {
		return Snapshot{}
	}
	return n.loop.Snapshot()
}

// BandwidthTotals 返回累计流量
//
// 使用自定义模块工厂时没有带宽统计，返回零值。
func (n *Node) BandwidthTotals() lpmetrics.Stats {
	if n.bandwidth == nil {
		return lpmetrics.Stats{}
	}
	return n.bandwidth.Totals()
}

// IntrospectAddr 返回自省服务地址，未启用时为空
func (n *Node) IntrospectAddr() string {
	if n.introspectServer == nil {
		return ""
	}
	return n.introspectServer.Addr()
}

// ════════════════════════════════════════════════════════════════════════════
//                              命令
// ════════════════════════════════════════════════════════════════════════════

// Publish 在规范主题上发布文档更新
//
// 只负责投递命令；发布结果以 MessagePublished 或 Error 事件返回。
func (n *Node) Publish(ctx context.Context, payload []byte) error {
	if err := n.checkCommand(ctx); err != nil {
		return err
	}
	return n.translate(n.loop.Publish(payload))
}

// FindPeer 查找距离目标最近的节点
//
// 结果以 PeerDiscovered 事件返回。路由表为空时查询被挂起，
// 在下一次连接建立后重新发起。
func (n *Node) FindPeer(ctx context.Context, target types.PeerID) error {
	if err := n.checkCommand(ctx); err != nil {
		return err
	}
	return n.translate(n.loop.FindPeer(target))
}

func (n *Node) checkCommand(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch n.State() {
	case StateRunning:
		return nil
	case StateStopped:
		return ErrNodeClosed
	default:
		return ErrNotStarted
	}
}

func (n *Node) translate(err error) error {
	if errors.Is(err, overlay.ErrLoopClosed) {
		return ErrNodeClosed
	}
	return err
}

// ════════════════════════════════════════════════════════════════════════════
//                              事件
// ════════════════════════════════════════════════════════════════════════════

// NextEvent 读取下一个领域事件
//
// 阻塞直到有事件、ctx 结束或节点关闭。节点关闭后仍可读完已产生的事件，
// 之后返回 ErrNodeClosed。
func (n *Node) NextEvent(ctx context.Context) (types.DomainEvent, error) {
	if n.loop == nil {
		return nil, ErrNotStarted
	}
	ev, err := n.loop.NextEvent(ctx)
	return ev, n.translate(err)
}

// SubscribeEvents 订阅领域事件副本
//
// 与 NextEvent 互不影响。订阅者读取不及时时事件被丢弃并计数；
// kinds 为空表示订阅全部类型。
func (n *Node) SubscribeEvents(buffer int, kinds ...types.EventKind) (*EventSubscription, error) {
	if n.bus == nil {
		return nil, ErrNotStarted
	}
	opts := []eventbus.SubscriptionOpt{eventbus.BufSize(buffer)}
	if len(kinds) > 0 {
		opts = append(opts, eventbus.Kinds(kinds...))
	}
	sub, err := n.bus.Subscribe(opts...)
	if errors.Is(err, eventbus.ErrClosed) {
		return nil, ErrNodeClosed
	}
	return sub, err
}

// ════════════════════════════════════════════════════════════════════════════
//                              内部方法
// ════════════════════════════════════════════════════════════════════════════

func (n *Node) setState(s NodeState) {
	n.mu.Lock()
	n.state = s
	n.mu.Unlock()
}

// release 释放 Fx 注入的组件，各组件的关闭都可重复调用
func (n *Node) release() error {
	var err error
	if n.loop != nil {
		n.loop.Stop()
	}
	if n.modules != nil {
		err = multierr.Append(err, n.modules.Close())
	}
	if n.bus != nil {
		n.bus.Close()
	}
	return err
}

func (n *Node) releaseLog() {
	if n.logCloser != nil {
		_ = n.logCloser.Close()
		n.logCloser = nil
	}
}
