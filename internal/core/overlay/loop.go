package overlay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"

	"github.com/dep2p/go-docstore/config"
	"github.com/dep2p/go-docstore/internal/core/metrics"
	"github.com/dep2p/go-docstore/internal/discovery/bootstrap"
	"github.com/dep2p/go-docstore/internal/util/mailbox"
	"github.com/dep2p/go-docstore/pkg/interfaces"
	"github.com/dep2p/go-docstore/pkg/lib/log"
	"github.com/dep2p/go-docstore/pkg/types"
)

var logger = log.Logger("core/overlay")

// Publisher 领域事件的旁路接收者（如 eventbus.Bus）
type Publisher interface {
	Publish(ev types.DomainEvent)
}

// Options 事件循环参数
type Options struct {
	// Topics 启动时加入的主题，第一个为发布用的规范主题
	Topics []string

	DiscoveredTTL     time.Duration
	MaxDiscovered     int
	PruneInterval     time.Duration
	MaxPendingLookups int

	// CommandLimit / EventLimit 为 0 表示无界
	CommandLimit int
	EventLimit   int
	Overflow     mailbox.OverflowPolicy

	Clock   clock.Clock
	Metrics *metrics.Overlay
	Fanout  Publisher
}

// OptionsFromConfig 由配置生成参数
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Topics:            append([]string(nil), cfg.Gossip.Topics...),
		DiscoveredTTL:     cfg.Discovery.DiscoveredTTL.Duration(),
		MaxDiscovered:     cfg.Discovery.MaxDiscovered,
		PruneInterval:     cfg.Discovery.PruneInterval.Duration(),
		MaxPendingLookups: cfg.Discovery.MaxPendingLookups,
		CommandLimit:      cfg.Queue.MaxCommands,
		EventLimit:        cfg.Queue.MaxEvents,
		Overflow:          cfg.Queue.Policy(),
	}
}

func (o *Options) fill() {
	if len(o.Topics) == 0 {
		o.Topics = []string{config.DefaultTopic}
	}
	if o.MaxDiscovered <= 0 {
		o.MaxDiscovered = config.DefaultDiscoveryConfig().MaxDiscovered
	}
	if o.PruneInterval <= 0 {
		o.PruneInterval = config.DefaultDiscoveryConfig().PruneInterval.Duration()
	}
	if o.MaxPendingLookups <= 0 {
		o.MaxPendingLookups = config.DefaultDiscoveryConfig().MaxPendingLookups
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
}

// Loop 覆盖网络事件循环
type Loop struct {
	modules *interfaces.ModuleSet
	opts    Options
	local   types.PeerID
	topic   string

	commands *mailbox.Mailbox[types.Command]
	inbox    *Inbox
	events   *mailbox.Mailbox[types.DomainEvent]

	// 以下字段只在循环协程内访问
	state          *overlayState
	pending        []types.PeerID
	preferCommands bool
	dirty          bool

	snapshot atomic.Pointer[Snapshot]

	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	started  atomic.Bool
	stopOnce sync.Once
}

// New 创建事件循环
//
// inbox 必须是传给协议模块的同一个 EventSink。
func New(modules *interfaces.ModuleSet, inbox *Inbox, opts Options) (*Loop, error) {
	if modules == nil || modules.Transport == nil {
		return nil, ErrNilModules
	}
	if inbox == nil {
		inbox = NewInbox()
	}
	opts.fill()

	state, err := newOverlayState(opts.MaxDiscovered)
	if err != nil {
		return nil, fmt.Errorf("创建发现节点表失败: %w", err)
	}

	var cmdOpts, evOpts []mailbox.Option
	if opts.CommandLimit > 0 {
		cmdOpts = append(cmdOpts, mailbox.WithLimit(opts.CommandLimit, opts.Overflow))
	}
	if opts.EventLimit > 0 {
		evOpts = append(evOpts, mailbox.WithLimit(opts.EventLimit, opts.Overflow))
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &Loop{
		modules:        modules,
		opts:           opts,
		local:          modules.Transport.LocalPeer(),
		topic:          opts.Topics[0],
		commands:       mailbox.New[types.Command](cmdOpts...),
		inbox:          inbox,
		events:         mailbox.New[types.DomainEvent](evOpts...),
		state:          state,
		preferCommands: true,
		ctx:            ctx,
		cancel:         cancel,
		done:           make(chan struct{}),
	}
	l.publishSnapshot()
	return l, nil
}

// Topic 发布用的规范主题
func (l *Loop) Topic() string { return l.topic }

// Start 加入主题、执行引导并启动循环协程
//
// 加入主题失败属于启动失败；引导中的任何失败只记录日志。
// 引导在循环协程启动之前执行，路由表写入仍然是串行的。
func (l *Loop) Start(ctx context.Context, seeds []string) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	if g := l.modules.Gossip; g != nil {
		for _, topic := range l.opts.Topics {
			if err := g.Subscribe(topic); err != nil {
				l.started.Store(false)
				return fmt.Errorf("加入主题 %s 失败: %w", topic, err)
			}
			l.state.addSubscription(topic)
			logger.Info("已加入主题", "topic", topic)
		}
	}

	if len(seeds) > 0 {
		plan, report := bootstrap.Run(ctx, seeds, l.modules.Routing, l.modules.Transport)
		if err := multierr.Append(plan.Err(), report.Err()); err != nil {
			logger.Debug("引导存在失败项", "error", err)
		}
	}

	l.publishSnapshot()
	go l.run()
	return nil
}

// Stop 停止循环并等待协程退出
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		l.commands.Close()
		l.cancel()
		if l.started.Load() {
			<-l.done
		} else {
			l.shutdown()
		}
		logger.Info("事件循环已停止")
	})
}

// Done 循环退出后可读
func (l *Loop) Done() <-chan struct{} { return l.done }

// Send 投递命令，永不阻塞
//
// 循环终止后返回 ErrLoopClosed。
func (l *Loop) Send(cmd types.Command) error {
	switch err := l.commands.Push(cmd); {
	case err == nil:
		return nil
	case errors.Is(err, mailbox.ErrClosed):
		return ErrLoopClosed
	case errors.Is(err, mailbox.ErrFull):
		return ErrCommandQueueFull
	default:
		return err
	}
}

// Publish 投递发布命令，payload 会被复制
func (l *Loop) Publish(payload []byte) error {
	return l.Send(types.PublishCommand{Payload: append([]byte(nil), payload...)})
}

// FindPeer 投递查找命令
func (l *Loop) FindPeer(target types.PeerID) error {
	if target.IsEmpty() {
		return ErrEmptyTarget
	}
	return l.Send(types.FindPeerCommand{Target: target})
}

// NextEvent 取下一个领域事件
//
// 循环终止且队列取空后返回 ErrLoopClosed。
func (l *Loop) NextEvent(ctx context.Context) (types.DomainEvent, error) {
	ev, err := l.events.Pop(ctx)
	if errors.Is(err, mailbox.ErrClosed) {
		return nil, ErrLoopClosed
	}
	return ev, err
}

// Snapshot 最近一次发布的状态快照
func (l *Loop) Snapshot() Snapshot {
	return *l.snapshot.Load()
}

// ============================================================================
//                              循环主体
// ============================================================================

func (l *Loop) run() {
	defer close(l.done)
	defer l.shutdown()

	ticker := l.opts.Clock.Ticker(l.opts.PruneInterval)
	defer ticker.Stop()

	logger.Debug("事件循环已启动", "topic", l.topic)
	for l.step(ticker.C) {
	}
}

// step 处理一个事件；无事可做时阻塞等待。返回 false 表示循环应退出。
func (l *Loop) step(tick <-chan time.Time) bool {
	if l.ctx.Err() != nil {
		return false
	}

	select {
	case now := <-tick:
		l.prune(now)
	default:
	}

	if l.handleNext() {
		l.flush()
		return true
	}

	select {
	case <-l.ctx.Done():
		return false
	case <-l.commands.Ready():
	case <-l.inbox.mb.Ready():
	case now := <-tick:
		l.prune(now)
		l.flush()
	}
	return true
}

// handleNext 按当前偏好取一个事件处理
//
// 处理完一个来源后偏好切换到另一个来源，两个来源都就绪时严格交替。
func (l *Loop) handleNext() bool {
	if l.preferCommands {
		if l.tryCommand() {
			l.preferCommands = false
			return true
		}
		if l.tryProtocol() {
			return true
		}
		return false
	}

	if l.tryProtocol() {
		l.preferCommands = true
		return true
	}
	if l.tryCommand() {
		return true
	}
	return false
}

func (l *Loop) tryCommand() bool {
	cmd, ok := l.commands.TryPop()
	if !ok {
		return false
	}
	l.state.tick()
	l.handleCommand(cmd)
	return true
}

func (l *Loop) tryProtocol() bool {
	ev, ok := l.inbox.mb.TryPop()
	if !ok {
		return false
	}
	l.state.tick()
	l.handleProtocol(ev)
	return true
}

func (l *Loop) prune(now time.Time) {
	if n := l.state.pruneDiscovered(now, l.opts.DiscoveredTTL); n > 0 {
		logger.Debug("清理过期发现节点", "removed", n)
		l.dirty = true
	}
}

// flush 状态有变化时发布快照
func (l *Loop) flush() {
	if !l.dirty {
		return
	}
	l.dirty = false
	l.publishSnapshot()
}

func (l *Loop) publishSnapshot() {
	snap := l.state.snapshot(l.local, l.modules.Role, l.pending, l.opts.Clock.Now())
	l.snapshot.Store(snap)
	l.opts.Metrics.SetPeers(len(snap.Connected), len(snap.Discovered), len(snap.PendingLookups))
}

// shutdown 关闭全部队列；已入队的领域事件仍可被 NextEvent 取出
func (l *Loop) shutdown() {
	l.commands.Close()
	l.inbox.Close()
	l.events.Close()
	l.publishSnapshot()
}

// emit 发出领域事件
func (l *Loop) emit(ev types.DomainEvent) {
	l.opts.Metrics.DomainEvent(string(ev.Kind()))
	if err := l.events.Push(ev); err != nil {
		l.opts.Metrics.DomainEventDropped()
		logger.Warn("领域事件入队失败", "kind", string(ev.Kind()), "error", err)
	}
	if l.opts.Fanout != nil {
		l.opts.Fanout.Publish(ev)
	}
}
