package gossipsub

import (
	"context"
	"fmt"
	"sort"
	"sync"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
	lphost "github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/dep2p/go-docstore/pkg/interfaces"
	"github.com/dep2p/go-docstore/pkg/lib/log"
	"github.com/dep2p/go-docstore/pkg/types"
)

var logger = log.Logger("messaging/gossipsub")

// joined 已加入的主题
type joined struct {
	topic   *pubsub.Topic
	sub     *pubsub.Subscription
	handler *pubsub.TopicEventHandler
}

// Gossip GossipSub 适配器
type Gossip struct {
	ps   *pubsub.PubSub
	self peer.ID
	sink interfaces.EventSink

	requireMeshPeers bool

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	topics map[string]*joined
	closed bool
	wg     sync.WaitGroup

	// pubMu 串行化本地发布；lastID 由主题校验器在 Publish 调用栈内写入
	pubMu  sync.Mutex
	lastID string
}

var _ interfaces.Gossip = (*Gossip)(nil)

// New 在主机上创建 GossipSub 路由
func New(h lphost.Host, spec interfaces.GossipSpec, sink interfaces.EventSink) (*Gossip, error) {
	params := pubsub.DefaultGossipSubParams()
	if spec.Heartbeat > 0 {
		params.HeartbeatInterval = spec.Heartbeat
	}

	ctx, cancel := context.WithCancel(context.Background())
	ps, err := pubsub.NewGossipSub(ctx, h,
		pubsub.WithGossipSubParams(params),
		pubsub.WithMessageSigning(spec.StrictSigning),
		pubsub.WithStrictSignatureVerification(spec.StrictSigning),
		pubsub.WithMessageIdFn(MessageID),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("创建 gossipsub 失败: %w", err)
	}

	logger.Debug("gossipsub 已创建", "heartbeat", params.HeartbeatInterval, "strict", spec.StrictSigning)
	return &Gossip{
		ps:               ps,
		self:             h.ID(),
		sink:             sink,
		requireMeshPeers: spec.RequireMeshPeers,
		ctx:              ctx,
		cancel:           cancel,
		topics:           make(map[string]*joined),
	}, nil
}

// Subscribe 实现 Gossip
//
// 重复订阅同一主题是空操作。
func (g *Gossip) Subscribe(topic string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrClosed
	}
	if _, ok := g.topics[topic]; ok {
		return nil
	}

	if err := g.ps.RegisterTopicValidator(topic, g.recordLocal, pubsub.WithValidatorInline(true)); err != nil {
		return fmt.Errorf("注册主题 %s 校验器失败: %w", topic, err)
	}
	t, err := g.ps.Join(topic)
	if err != nil {
		_ = g.ps.UnregisterTopicValidator(topic)
		return fmt.Errorf("加入主题 %s 失败: %w", topic, err)
	}
	sub, err := t.Subscribe()
	if err != nil {
		_ = t.Close()
		_ = g.ps.UnregisterTopicValidator(topic)
		return fmt.Errorf("订阅主题 %s 失败: %w", topic, err)
	}
	handler, err := t.EventHandler()
	if err != nil {
		sub.Cancel()
		_ = t.Close()
		_ = g.ps.UnregisterTopicValidator(topic)
		return fmt.Errorf("监听主题 %s 事件失败: %w", topic, err)
	}

	j := &joined{topic: t, sub: sub, handler: handler}
	g.topics[topic] = j

	g.wg.Add(2)
	go g.readMessages(topic, sub)
	go g.readPeerEvents(topic, handler)

	logger.Info("已订阅主题", "topic", topic)
	return nil
}

// Publish 实现 Gossip
func (g *Gossip) Publish(ctx context.Context, topic string, data []byte) (string, error) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return "", ErrClosed
	}
	j, ok := g.topics[topic]
	g.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotSubscribed, topic)
	}

	if g.requireMeshPeers && len(j.topic.ListPeers()) == 0 {
		return "", interfaces.ErrInsufficientPeers
	}

	g.pubMu.Lock()
	defer g.pubMu.Unlock()
	g.lastID = ""
	if err := j.topic.Publish(ctx, data); err != nil {
		return "", fmt.Errorf("发布失败: %w", err)
	}
	if g.lastID == "" {
		// 校验器未执行：消息被 seen 缓存判定为重复
		return "", ErrDuplicateMessage
	}
	return g.lastID, nil
}

// recordLocal 主题校验器，记录本地发布的消息 ID，不拒绝任何消息
//
// 本地发布时 from 为本节点；转发来的消息 from 是转发者。
func (g *Gossip) recordLocal(_ context.Context, from peer.ID, msg *pubsub.Message) bool {
	if from == g.self {
		g.lastID = msg.ID
	}
	return true
}

// Topics 实现 Gossip
func (g *Gossip) Topics() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.topics))
	for t := range g.topics {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// TopicPeers 主题内的对端数
func (g *Gossip) TopicPeers(topic string) int {
	g.mu.Lock()
	j, ok := g.topics[topic]
	g.mu.Unlock()
	if !ok {
		return 0
	}
	return len(j.topic.ListPeers())
}

// Close 实现 Gossip
func (g *Gossip) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	topics := g.topics
	g.topics = make(map[string]*joined)
	g.mu.Unlock()

	for _, j := range topics {
		j.handler.Cancel()
		j.sub.Cancel()
	}
	// 取消 pubsub 上下文即释放全部主题，无需逐个 Topic.Close
	g.cancel()
	g.wg.Wait()
	return nil
}

// ============================================================================
//                              入站事件
// ============================================================================

func (g *Gossip) readMessages(topic string, sub *pubsub.Subscription) {
	defer g.wg.Done()
	for {
		msg, err := sub.Next(g.ctx)
		if err != nil {
			return
		}
		if msg.ReceivedFrom == g.self {
			continue
		}
		var author types.PeerID
		if from := msg.GetFrom(); from != "" {
			author = types.PeerID(from.String())
		}
		g.sink.Emit(interfaces.GossipMessage{
			ReceivedFrom: types.PeerID(msg.ReceivedFrom.String()),
			Author:       author,
			Topic:        topic,
			ID:           msg.ID,
			Data:         msg.GetData(),
		})
	}
}

func (g *Gossip) readPeerEvents(topic string, h *pubsub.TopicEventHandler) {
	defer g.wg.Done()
	for {
		ev, err := h.NextPeerEvent(g.ctx)
		if err != nil {
			return
		}
		p := types.PeerID(ev.Peer.String())
		switch ev.Type {
		case pubsub.PeerJoin:
			g.sink.Emit(interfaces.GossipSubscribed{Peer: p, Topic: topic})
		case pubsub.PeerLeave:
			g.sink.Emit(interfaces.GossipUnsubscribed{Peer: p, Topic: topic})
		}
	}
}
