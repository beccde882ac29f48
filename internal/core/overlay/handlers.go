package overlay

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dep2p/go-docstore/pkg/interfaces"
	"github.com/dep2p/go-docstore/pkg/types"
)

// ============================================================================
//                              命令
// ============================================================================

func (l *Loop) handleCommand(cmd types.Command) {
	l.opts.Metrics.CommandHandled(cmd.CommandName())

	switch c := cmd.(type) {
	case types.PublishCommand:
		l.publish(c.Payload)
	case types.FindPeerCommand:
		l.findPeer(c.Target, false)
	default:
		logger.Warn("未知命令", "command", cmd.CommandName())
	}
}

func (l *Loop) publish(payload []byte) {
	g := l.modules.Gossip
	if g == nil {
		l.emit(types.Error{Op: "publish", Reason: "gossip 模块未启用"})
		return
	}
	id, err := g.Publish(l.ctx, l.topic, payload)
	if err != nil {
		logger.Debug("发布失败", "topic", l.topic, "error", err)
		l.emit(types.Error{Op: "publish", Reason: err.Error()})
		return
	}
	logger.Debug("消息已发布", "topic", l.topic, "id", id, "size", len(payload))
	l.emit(types.MessagePublished{ID: id, Topic: l.topic})
}

// findPeer 发起最近节点查询
//
// 路由表为空时目标被挂起，待下一次连接建立或 identify 完成后重新发起；
// 挂起队列已满时以 Error 事件显式报告失败。reissue 为 true 表示重新发起，
// 此时再次挂起不受上限约束（目标本来就在队列里）。
func (l *Loop) findPeer(target types.PeerID, reissue bool) {
	rt := l.modules.Routing
	if rt == nil {
		l.emit(types.Error{Op: "find_peer", Peer: target, Reason: "路由表模块未启用"})
		return
	}

	qid, err := rt.FindClosestPeers(target)
	switch {
	case err == nil:
		logger.Debug("查询已发出", "query", string(qid), "target", target.ShortString())
	case errors.Is(err, interfaces.ErrNoKnownPeers):
		l.park(target, reissue)
	default:
		l.emit(types.Error{Op: "find_peer", Peer: target, Reason: err.Error()})
	}
}

func (l *Loop) park(target types.PeerID, reissue bool) {
	for _, p := range l.pending {
		if p == target {
			return
		}
	}
	if !reissue && len(l.pending) >= l.opts.MaxPendingLookups {
		l.emit(types.Error{
			Op:     "find_peer",
			Peer:   target,
			Reason: fmt.Sprintf("路由表为空且等待队列已满（%d）", l.opts.MaxPendingLookups),
		})
		return
	}
	l.pending = append(l.pending, target)
	l.dirty = true
	logger.Debug("路由表为空，查询挂起", "target", target.ShortString(), "pending", len(l.pending))
}

// reissuePending 重新发起全部挂起的查询
func (l *Loop) reissuePending() {
	if len(l.pending) == 0 {
		return
	}
	targets := l.pending
	l.pending = nil
	l.dirty = true
	for _, t := range targets {
		l.findPeer(t, true)
	}
}

// ============================================================================
//                              协议事件
// ============================================================================

func (l *Loop) handleProtocol(ev interfaces.ProtocolEvent) {
	l.opts.Metrics.ProtocolEvent(ev.EventName())
	now := l.opts.Clock.Now()

	switch e := ev.(type) {
	case interfaces.GossipMessage:
		l.state.touch(e.ReceivedFrom, now)
		l.emit(types.MessageReceived{
			Source: e.ReceivedFrom,
			Author: e.Author,
			Topic:  e.Topic,
			ID:     e.ID,
			Data:   strings.ToValidUTF8(string(e.Data), "\uFFFD"),
		})

	case interfaces.GossipSubscribed:
		logger.Debug("对端加入主题", "peer", e.Peer.ShortString(), "topic", e.Topic)

	case interfaces.GossipUnsubscribed:
		logger.Debug("对端离开主题", "peer", e.Peer.ShortString(), "topic", e.Topic)

	case interfaces.IdentifyReceived:
		l.onIdentify(e, now)

	case interfaces.QueryCompleted:
		l.onQueryCompleted(e, now)

	case interfaces.ConnectionEstablished:
		if l.state.connect(e.Peer, e.Endpoint, now) {
			l.emit(types.Connected{Peer: e.Peer, Endpoint: e.Endpoint})
		}
		l.dirty = true
		l.reissuePending()

	case interfaces.ConnectionClosed:
		if l.state.disconnect(e.Peer, e.Endpoint) {
			l.emit(types.Disconnected{Peer: e.Peer})
		}
		l.dirty = true

	case interfaces.NewListenAddr:
		if l.state.addListen(e.Addr) {
			logger.Info("新增监听地址", "addr", string(e.Addr))
			l.dirty = true
		}

	case interfaces.ListenAddrExpired:
		if l.state.removeListen(e.Addr) {
			logger.Info("监听地址失效", "addr", string(e.Addr))
			l.dirty = true
		}

	case interfaces.OutgoingConnectionError:
		reason := "dial failed"
		if e.Err != nil {
			reason = e.Err.Error()
		}
		if e.Endpoint != "" {
			reason = fmt.Sprintf("%s: %s", e.Endpoint, reason)
		}
		l.emit(types.Error{Op: "dial", Peer: e.Peer, Reason: reason})

	default:
		logger.Debug("忽略协议事件", "event", ev.EventName())
	}
}

// onIdentify 将对端通告的地址写入路由表与发现集合，不发出事件
func (l *Loop) onIdentify(e interfaces.IdentifyReceived, now time.Time) {
	if e.Peer == l.local {
		return
	}

	if rt := l.modules.Routing; rt != nil {
		for _, addr := range e.ListenAddrs {
			if _, err := rt.AddAddress(e.Peer, addr); err != nil {
				logger.Debug("写入路由表失败", "peer", e.Peer.ShortString(), "addr", string(addr), "error", err)
			}
		}
	}
	if len(e.ListenAddrs) > 0 {
		l.state.discover(e.Peer, e.ListenAddrs, now)
	}

	for _, proto := range e.Protocols {
		if proto == interfaces.RelayHopProtocol && l.state.isConnected(e.Peer) {
			if l.state.setRelay(e.Peer) {
				logger.Info("发现可用中继", "peer", e.Peer.ShortString())
			}
			break
		}
	}

	logger.Debug("identify 完成", "peer", e.Peer.ShortString(), "addrs", len(e.ListenAddrs), "agent", e.AgentVersion)
	l.dirty = true
	l.reissuePending()
}

// onQueryCompleted 为结果中的每个节点发出 PeerDiscovered；失败只记录，不重试
func (l *Loop) onQueryCompleted(e interfaces.QueryCompleted, now time.Time) {
	if e.Err != nil {
		l.opts.Metrics.QueryFailed()
		logger.Warn("最近节点查询失败", "query", string(e.QueryID), "target", e.Target.ShortString(), "error", e.Err)
		return
	}

	found := 0
	for _, p := range e.Peers {
		if p.ID == l.local || p.ID.IsEmpty() {
			continue
		}
		l.state.discover(p.ID, p.Endpoints, now)
		l.emit(types.PeerDiscovered{
			Peer:      p.ID,
			Endpoints: append([]types.Endpoint(nil), p.Endpoints...),
		})
		found++
	}
	l.dirty = true
	logger.Debug("最近节点查询完成", "query", string(e.QueryID), "found", found)
}
