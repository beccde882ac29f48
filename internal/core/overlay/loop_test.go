package overlay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-docstore/internal/core/eventbus"
	"github.com/dep2p/go-docstore/internal/core/identity"
	"github.com/dep2p/go-docstore/internal/testutil"
	"github.com/dep2p/go-docstore/internal/testutil/mocks"
	"github.com/dep2p/go-docstore/internal/util/mailbox"
	"github.com/dep2p/go-docstore/pkg/interfaces"
	"github.com/dep2p/go-docstore/pkg/types"
)

const localPeer types.PeerID = "12D3KooWLocalPeerForOverlayTests"

type fixture struct {
	loop    *Loop
	gossip  *mocks.MockGossip
	routing *mocks.MockRoutingTable
	tr      *mocks.MockTransport
	clock   *clock.Mock
}

func newFixture(t *testing.T, role types.Role, mutate ...func(*Options)) *fixture {
	t.Helper()
	f := &fixture{
		gossip:  mocks.NewMockGossip(),
		routing: mocks.NewMockRoutingTable(role.RoutingMode()),
		tr:      mocks.NewMockTransport(localPeer),
		clock:   clock.NewMock(),
	}
	set := &interfaces.ModuleSet{
		Role:      role,
		Transport: f.tr,
		Liveness:  &mocks.MockLiveness{},
		Gossip:    f.gossip,
		Routing:   f.routing,
	}
	if role.RelayCapable() {
		set.Relay = &mocks.MockRelay{}
	}

	opts := Options{Clock: f.clock}
	for _, m := range mutate {
		m(&opts)
	}
	l, err := New(set, NewInbox(), opts)
	require.NoError(t, err)
	t.Cleanup(l.Stop)
	f.loop = l
	return f
}

// drain 同步处理所有已入队的命令与协议事件
func (f *fixture) drain() {
	for f.loop.commands.Len()+f.loop.inbox.Len() > 0 {
		f.loop.step(nil)
	}
}

// events 取出所有已发出的领域事件
func (f *fixture) events() []types.DomainEvent {
	var out []types.DomainEvent
	for {
		ev, ok := f.loop.events.TryPop()
		if !ok {
			return out
		}
		out = append(out, ev)
	}
}

func kinds(evs []types.DomainEvent) []types.EventKind {
	out := make([]types.EventKind, len(evs))
	for i, ev := range evs {
		out[i] = ev.Kind()
	}
	return out
}

func (f *fixture) emit(ev interfaces.ProtocolEvent) { f.loop.inbox.Emit(ev) }

// TestLoop_Publish 测试发布成功
func TestLoop_Publish(t *testing.T) {
	f := newFixture(t, types.RoleFullNode)

	require.NoError(t, f.loop.Publish([]byte("hello")))
	f.drain()

	evs := f.events()
	require.Len(t, evs, 1)
	pub, ok := evs[0].(types.MessagePublished)
	require.True(t, ok)
	assert.Equal(t, "msg-1", pub.ID)
	assert.Equal(t, "docstore/v1/updates", pub.Topic)

	calls := f.gossip.Published()
	require.Len(t, calls, 1)
	assert.Equal(t, "docstore/v1/updates", calls[0].Topic)
	assert.Equal(t, []byte("hello"), calls[0].Data)
}

// TestLoop_PublishWithoutPeers 测试主题无对端时发布失败转为 Error 事件
func TestLoop_PublishWithoutPeers(t *testing.T) {
	f := newFixture(t, types.RoleClient)
	f.gossip.PublishFunc = func(context.Context, string, []byte) (string, error) {
		return "", interfaces.ErrInsufficientPeers
	}

	require.NoError(t, f.loop.Publish([]byte("a")))
	require.NoError(t, f.loop.Publish([]byte("b")))
	f.drain()

	evs := f.events()
	require.Len(t, evs, 2, "两条命令都应被处理，循环不应阻塞")
	for _, ev := range evs {
		e, ok := ev.(types.Error)
		require.True(t, ok)
		assert.Equal(t, "publish", e.Op)
		assert.Contains(t, e.Reason, interfaces.ErrInsufficientPeers.Error())
	}
}

// TestLoop_PublishCopiesPayload 测试调用方复用缓冲区不影响已投递命令
func TestLoop_PublishCopiesPayload(t *testing.T) {
	f := newFixture(t, types.RoleFullNode)

	buf := []byte("first")
	require.NoError(t, f.loop.Publish(buf))
	copy(buf, "XXXXX")
	f.drain()

	assert.Equal(t, []byte("first"), f.gossip.Published()[0].Data)
}

// TestLoop_Fairness 测试两个来源都就绪时严格交替
func TestLoop_Fairness(t *testing.T) {
	f := newFixture(t, types.RoleFullNode)

	for i := 0; i < 3; i++ {
		require.NoError(t, f.loop.Publish([]byte("c")))
		f.emit(interfaces.GossipMessage{ReceivedFrom: "peer-a", Author: "peer-a", Topic: "t", Data: []byte("e")})
	}
	f.drain()

	assert.Equal(t, []types.EventKind{
		types.KindMessagePublished, types.KindMessageReceived,
		types.KindMessagePublished, types.KindMessageReceived,
		types.KindMessagePublished, types.KindMessageReceived,
	}, kinds(f.events()))
}

// TestLoop_CommandNotStarved 测试持续的协议事件下命令最多等待一个事件
func TestLoop_CommandNotStarved(t *testing.T) {
	f := newFixture(t, types.RoleFullNode)

	for i := 0; i < 50; i++ {
		f.emit(interfaces.GossipMessage{ReceivedFrom: "peer-a", Data: []byte("x")})
	}
	f.loop.step(nil)
	f.loop.step(nil)

	require.NoError(t, f.loop.Publish([]byte("cmd")))
	f.loop.step(nil)
	f.loop.step(nil)

	evs := f.events()
	require.Len(t, evs, 4)
	published := 0
	for _, ev := range evs {
		if ev.Kind() == types.KindMessagePublished {
			published++
		}
	}
	assert.Equal(t, 1, published, "命令应在两步内被处理")
	assert.Greater(t, f.loop.inbox.Len(), 40)
}

// TestLoop_GossipMessageUTF8 测试非法 UTF-8 被替换
func TestLoop_GossipMessageUTF8(t *testing.T) {
	f := newFixture(t, types.RoleFullNode)

	f.emit(interfaces.GossipMessage{
		ReceivedFrom: "relay-1",
		Author:       "author-1",
		Topic:        "docstore/v1/updates",
		ID:           "m1",
		Data:         []byte{0xff, 'h', 'i'},
	})
	f.drain()

	evs := f.events()
	require.Len(t, evs, 1)
	msg := evs[0].(types.MessageReceived)
	assert.Equal(t, "\uFFFDhi", msg.Data)
	assert.Equal(t, types.PeerID("relay-1"), msg.Source)
	assert.Equal(t, types.PeerID("author-1"), msg.Author)
	assert.Equal(t, "m1", msg.ID)
}

// TestLoop_SubscriptionChangesAreSilent 测试订阅变化不产生事件
func TestLoop_SubscriptionChangesAreSilent(t *testing.T) {
	f := newFixture(t, types.RoleFullNode)
	f.emit(interfaces.GossipSubscribed{Peer: "p", Topic: "t"})
	f.emit(interfaces.GossipUnsubscribed{Peer: "p", Topic: "t"})
	f.drain()
	assert.Empty(t, f.events())
}

// TestLoop_ConnectionLifecycle 测试多连接节点的连接/断开事件
func TestLoop_ConnectionLifecycle(t *testing.T) {
	f := newFixture(t, types.RoleFullNode)

	f.emit(interfaces.ConnectionEstablished{Peer: "peer-b", Endpoint: "/ip4/10.0.0.2/tcp/1"})
	f.emit(interfaces.ConnectionEstablished{Peer: "peer-b", Endpoint: "/ip4/10.0.0.2/udp/2/quic-v1"})
	f.drain()

	evs := f.events()
	require.Len(t, evs, 1)
	assert.Equal(t, types.Connected{Peer: "peer-b", Endpoint: "/ip4/10.0.0.2/tcp/1"}, evs[0])

	snap := f.loop.Snapshot()
	require.Len(t, snap.Connected, 1)
	assert.Len(t, snap.Connected[0].Endpoints, 2)

	f.emit(interfaces.ConnectionClosed{Peer: "peer-b", Endpoint: "/ip4/10.0.0.2/tcp/1"})
	f.drain()
	assert.Empty(t, f.events(), "仍有连接时不应发出 Disconnected")
	assert.True(t, f.loop.Snapshot().ConnectedPeer("peer-b"))

	f.emit(interfaces.ConnectionClosed{Peer: "peer-b", Endpoint: "/ip4/10.0.0.2/udp/2/quic-v1"})
	f.drain()
	assert.Equal(t, []types.DomainEvent{types.Disconnected{Peer: "peer-b"}}, f.events())
	assert.False(t, f.loop.Snapshot().ConnectedPeer("peer-b"))

	// 未知节点的关闭事件被忽略
	f.emit(interfaces.ConnectionClosed{Peer: "ghost"})
	f.drain()
	assert.Empty(t, f.events())
}

// TestLoop_IdentifyFeedsRoutingTable 测试 identify 地址写入路由表与发现集合
func TestLoop_IdentifyFeedsRoutingTable(t *testing.T) {
	f := newFixture(t, types.RoleFullNode)

	addrs := []types.Endpoint{"/ip4/10.0.0.3/tcp/4001", "/ip4/10.0.0.3/udp/9090/webrtc-direct"}
	f.emit(interfaces.IdentifyReceived{Peer: "peer-c", ListenAddrs: addrs})
	f.emit(interfaces.IdentifyReceived{Peer: "peer-c", ListenAddrs: addrs})
	f.emit(interfaces.IdentifyReceived{Peer: localPeer, ListenAddrs: addrs})
	f.drain()

	assert.Empty(t, f.events(), "identify 本身不发出事件")
	assert.Equal(t, addrs, f.routing.Endpoints("peer-c"))
	assert.Empty(t, f.routing.Endpoints(localPeer))

	rec, ok := f.loop.Snapshot().DiscoveredPeer("peer-c")
	require.True(t, ok)
	assert.Equal(t, addrs, rec.Endpoints)
}

// TestLoop_ActiveRelays 测试中继节点的记录与移除
func TestLoop_ActiveRelays(t *testing.T) {
	f := newFixture(t, types.RoleClient)

	f.emit(interfaces.ConnectionEstablished{Peer: "relay-r", Endpoint: "/ip4/10.0.0.9/tcp/1"})
	f.emit(interfaces.IdentifyReceived{
		Peer:        "relay-r",
		ListenAddrs: []types.Endpoint{"/ip4/10.0.0.9/tcp/1"},
		Protocols:   []string{"/ipfs/id/1.0.0", interfaces.RelayHopProtocol},
	})
	f.emit(interfaces.IdentifyReceived{Peer: "plain", Protocols: []string{"/ipfs/id/1.0.0"}})
	f.drain()
	assert.Equal(t, []types.PeerID{"relay-r"}, f.loop.Snapshot().ActiveRelays)

	f.emit(interfaces.ConnectionClosed{Peer: "relay-r", Endpoint: "/ip4/10.0.0.9/tcp/1"})
	f.drain()
	assert.Empty(t, f.loop.Snapshot().ActiveRelays)
}

// TestLoop_QueryCompleted 测试查询结果转为 PeerDiscovered
func TestLoop_QueryCompleted(t *testing.T) {
	f := newFixture(t, types.RoleFullNode)

	f.emit(interfaces.QueryCompleted{
		QueryID: "q-1",
		Target:  "x",
		Peers: []interfaces.FoundPeer{
			{ID: "peer-d", Endpoints: []types.Endpoint{"/ip4/10.0.0.4/tcp/1"}},
			{ID: localPeer},
			{ID: "peer-e"},
		},
	})
	f.emit(interfaces.QueryCompleted{QueryID: "q-2", Target: "y", Err: errors.New("timeout")})
	f.drain()

	evs := f.events()
	require.Len(t, evs, 2)
	assert.Equal(t, types.PeerDiscovered{Peer: "peer-d", Endpoints: []types.Endpoint{"/ip4/10.0.0.4/tcp/1"}}, evs[0])
	assert.Equal(t, types.PeerID("peer-e"), evs[1].(types.PeerDiscovered).Peer)

	snap := f.loop.Snapshot()
	assert.Len(t, snap.Discovered, 2)
	_, ok := snap.DiscoveredPeer(localPeer)
	assert.False(t, ok)
}

// TestLoop_ListenAddrs 测试监听地址的集合语义
func TestLoop_ListenAddrs(t *testing.T) {
	f := newFixture(t, types.RoleFullNode)

	f.emit(interfaces.NewListenAddr{Addr: "/ip4/127.0.0.1/tcp/1"})
	f.emit(interfaces.NewListenAddr{Addr: "/ip4/127.0.0.1/udp/9090/webrtc-direct"})
	f.emit(interfaces.NewListenAddr{Addr: "/ip4/127.0.0.1/tcp/1"})
	f.drain()
	assert.Equal(t, []types.Endpoint{"/ip4/127.0.0.1/tcp/1", "/ip4/127.0.0.1/udp/9090/webrtc-direct"},
		f.loop.Snapshot().ListenAddrs)

	f.emit(interfaces.ListenAddrExpired{Addr: "/ip4/127.0.0.1/tcp/1"})
	f.drain()
	assert.Equal(t, []types.Endpoint{"/ip4/127.0.0.1/udp/9090/webrtc-direct"}, f.loop.Snapshot().ListenAddrs)
	assert.Empty(t, f.events())
}

// TestLoop_OutgoingConnectionError 测试拨号失败转为 Error 事件
func TestLoop_OutgoingConnectionError(t *testing.T) {
	f := newFixture(t, types.RoleFullNode)

	f.emit(interfaces.OutgoingConnectionError{Peer: "peer-f", Endpoint: "/ip4/10.0.0.5/tcp/1", Err: errors.New("refused")})
	f.drain()

	evs := f.events()
	require.Len(t, evs, 1)
	e := evs[0].(types.Error)
	assert.Equal(t, "dial", e.Op)
	assert.Equal(t, types.PeerID("peer-f"), e.Peer)
	assert.Contains(t, e.Reason, "refused")
}

// TestLoop_ClientFindPeerBeforeConnection 测试无连接时的 FindPeer 会在连接后重新发起
func TestLoop_ClientFindPeerBeforeConnection(t *testing.T) {
	f := newFixture(t, types.RoleClient)

	require.NoError(t, f.loop.FindPeer("target-x"))
	f.drain()
	assert.Empty(t, f.events())
	assert.Equal(t, []types.PeerID{"target-x"}, f.loop.Snapshot().PendingLookups)

	// 建立连接：路由表仍为空，查询继续挂起
	f.emit(interfaces.ConnectionEstablished{Peer: "seed-b", Endpoint: "/ip4/10.0.0.2/tcp/1"})
	f.drain()
	assert.Equal(t, []types.DomainEvent{types.Connected{Peer: "seed-b", Endpoint: "/ip4/10.0.0.2/tcp/1"}}, f.events())
	assert.Equal(t, []types.PeerID{"target-x"}, f.loop.Snapshot().PendingLookups)

	// identify 写入路由表后查询真正发出
	f.emit(interfaces.IdentifyReceived{Peer: "seed-b", ListenAddrs: []types.Endpoint{"/ip4/10.0.0.2/tcp/1"}})
	f.drain()
	assert.Empty(t, f.loop.Snapshot().PendingLookups)
	assert.Equal(t, []types.PeerID{"target-x", "target-x", "target-x"}, f.routing.Queries())
	assert.Empty(t, f.events(), "查询完成前不应有 PeerDiscovered")

	f.emit(interfaces.QueryCompleted{QueryID: "q-3", Target: "target-x", Peers: []interfaces.FoundPeer{{ID: "target-x"}}})
	f.drain()
	evs := f.events()
	require.Len(t, evs, 1)
	assert.Equal(t, types.PeerID("target-x"), evs[0].(types.PeerDiscovered).Peer)
	t.Log("✅ Client 先查找后连接场景测试通过")
}

// TestLoop_PendingLookupsBound 测试挂起队列满时显式报告失败
func TestLoop_PendingLookupsBound(t *testing.T) {
	f := newFixture(t, types.RoleClient, func(o *Options) { o.MaxPendingLookups = 1 })

	require.NoError(t, f.loop.FindPeer("x"))
	require.NoError(t, f.loop.FindPeer("x"))
	require.NoError(t, f.loop.FindPeer("y"))
	f.drain()

	evs := f.events()
	require.Len(t, evs, 1)
	e := evs[0].(types.Error)
	assert.Equal(t, "find_peer", e.Op)
	assert.Equal(t, types.PeerID("y"), e.Peer)
	assert.Equal(t, []types.PeerID{"x"}, f.loop.Snapshot().PendingLookups)
}

// TestLoop_FindPeerRoutingError 测试非空表查询错误
func TestLoop_FindPeerRoutingError(t *testing.T) {
	f := newFixture(t, types.RoleFullNode)
	f.routing.FindClosestPeersFunc = func(types.PeerID) (interfaces.QueryID, error) {
		return "", errors.New("invalid target")
	}

	require.NoError(t, f.loop.FindPeer("bad"))
	assert.ErrorIs(t, f.loop.FindPeer(""), ErrEmptyTarget)
	f.drain()

	evs := f.events()
	require.Len(t, evs, 1)
	assert.Equal(t, "find_peer", evs[0].(types.Error).Op)
	assert.Empty(t, f.loop.Snapshot().PendingLookups)
}

// TestLoop_PruneDiscovered 测试发现节点按 TTL 清理
func TestLoop_PruneDiscovered(t *testing.T) {
	f := newFixture(t, types.RoleFullNode, func(o *Options) { o.DiscoveredTTL = 10 * time.Minute })

	f.emit(interfaces.IdentifyReceived{Peer: "old", ListenAddrs: []types.Endpoint{"/ip4/10.0.0.6/tcp/1"}})
	f.drain()
	f.clock.Add(6 * time.Minute)
	f.emit(interfaces.IdentifyReceived{Peer: "fresh", ListenAddrs: []types.Endpoint{"/ip4/10.0.0.7/tcp/1"}})
	f.drain()
	f.clock.Add(5 * time.Minute)

	f.loop.prune(f.clock.Now())
	f.loop.flush()

	snap := f.loop.Snapshot()
	require.Len(t, snap.Discovered, 1)
	assert.Equal(t, types.PeerID("fresh"), snap.Discovered[0].ID)
}

// TestLoop_DiscoveredBounded 测试发现集合的 LRU 上限
func TestLoop_DiscoveredBounded(t *testing.T) {
	f := newFixture(t, types.RoleFullNode, func(o *Options) { o.MaxDiscovered = 2 })

	for _, p := range []types.PeerID{"a", "b", "c"} {
		f.emit(interfaces.IdentifyReceived{Peer: p, ListenAddrs: []types.Endpoint{"/ip4/10.0.0.1/tcp/1"}})
	}
	f.drain()

	snap := f.loop.Snapshot()
	require.Len(t, snap.Discovered, 2)
	_, ok := snap.DiscoveredPeer("a")
	assert.False(t, ok, "最久未更新的节点应被淘汰")
}

// TestLoop_EventQueueRejectNew 测试有界事件队列
func TestLoop_EventQueueRejectNew(t *testing.T) {
	f := newFixture(t, types.RoleFullNode, func(o *Options) {
		o.EventLimit = 2
		o.Overflow = mailbox.RejectNew
	})

	for i := 0; i < 3; i++ {
		require.NoError(t, f.loop.Publish([]byte("x")))
	}
	f.drain()

	assert.Len(t, f.events(), 2)
	assert.EqualValues(t, 1, f.loop.events.Dropped())
}

// TestLoop_Fanout 测试领域事件旁路分发
func TestLoop_Fanout(t *testing.T) {
	bus := eventbus.NewBus()
	defer bus.Close()
	sub, err := bus.Subscribe()
	require.NoError(t, err)

	f := newFixture(t, types.RoleFullNode, func(o *Options) { o.Fanout = bus })
	f.emit(interfaces.ConnectionEstablished{Peer: "p", Endpoint: "/ip4/1.1.1.1/tcp/1"})
	f.drain()

	assert.Equal(t, types.KindConnected, (<-sub.Out()).Kind())
	assert.Len(t, f.events(), 1, "主队列仍收到事件")
}

// TestLoop_StartSubscribesAndBootstraps 测试启动阶段
func TestLoop_StartSubscribesAndBootstraps(t *testing.T) {
	f := newFixture(t, types.RoleFullNode)

	id, err := identity.Generate()
	require.NoError(t, err)
	seedA := "/ip4/10.0.0.1/tcp/4001/p2p/" + id.PeerID().String()
	seedB := "/ip4/10.0.0.2/tcp/4001"

	require.NoError(t, f.loop.Start(context.Background(), []string{seedA, seedB, "garbage"}))
	assert.ErrorIs(t, f.loop.Start(context.Background(), nil), ErrAlreadyStarted)

	assert.Equal(t, []string{"docstore/v1/updates"}, f.gossip.Topics())
	assert.Equal(t, []types.Endpoint{"/ip4/10.0.0.1/tcp/4001"}, f.routing.Endpoints(id.PeerID()))
	assert.Equal(t, []types.Endpoint{types.Endpoint(seedB)}, f.tr.Dialed())
	assert.Equal(t, 1, f.routing.BootstrapCalls())
	assert.Equal(t, []string{"docstore/v1/updates"}, f.loop.Snapshot().Subscriptions)
}

// TestLoop_StartSubscribeFailure 测试加入主题失败导致启动失败
func TestLoop_StartSubscribeFailure(t *testing.T) {
	f := newFixture(t, types.RoleFullNode)
	f.gossip.SubscribeFunc = func(string) error { return errors.New("join failed") }

	err := f.loop.Start(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "join failed")
}

// TestLoop_RunningLoop 测试后台协程处理命令并在停止后拒绝命令
func TestLoop_RunningLoop(t *testing.T) {
	f := newFixture(t, types.RoleFullNode, func(o *Options) {
		o.DiscoveredTTL = time.Minute
		o.PruneInterval = 30 * time.Second
	})
	require.NoError(t, f.loop.Start(context.Background(), nil))

	require.NoError(t, f.loop.Publish([]byte("hi")))
	ev := testutil.WaitForEvent(t, f.loop, 2*time.Second, testutil.KindIs(types.KindMessagePublished))
	assert.Equal(t, "msg-1", ev.(types.MessagePublished).ID)

	// 定时清理由时钟驱动
	f.emit(interfaces.IdentifyReceived{Peer: "p", ListenAddrs: []types.Endpoint{"/ip4/10.0.0.1/tcp/1"}})
	testutil.WaitForConditionOrFail(t, 2*time.Second, 10*time.Millisecond, func() bool {
		return len(f.loop.Snapshot().Discovered) == 1
	}, "发现节点写入")
	f.clock.Add(2 * time.Minute)
	testutil.WaitForConditionOrFail(t, 2*time.Second, 10*time.Millisecond, func() bool {
		f.clock.Add(30 * time.Second)
		return len(f.loop.Snapshot().Discovered) == 0
	}, "发现节点清理")

	f.loop.Stop()
	assert.ErrorIs(t, f.loop.Publish([]byte("late")), ErrLoopClosed)

	_, err := f.loop.NextEvent(context.Background())
	assert.ErrorIs(t, err, ErrLoopClosed)
}

// TestLoop_NextEventDrainsAfterStop 测试停止后仍可取出已发出的事件
func TestLoop_NextEventDrainsAfterStop(t *testing.T) {
	f := newFixture(t, types.RoleFullNode)
	require.NoError(t, f.loop.Publish([]byte("x")))
	f.drain()
	f.loop.Stop()

	ev, err := f.loop.NextEvent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.KindMessagePublished, ev.Kind())

	_, err = f.loop.NextEvent(context.Background())
	assert.ErrorIs(t, err, ErrLoopClosed)
}

// TestNew_Validation 测试构造参数校验
func TestNew_Validation(t *testing.T) {
	_, err := New(nil, NewInbox(), Options{})
	assert.ErrorIs(t, err, ErrNilModules)
	_, err = New(&interfaces.ModuleSet{}, NewInbox(), Options{})
	assert.ErrorIs(t, err, ErrNilModules)

	l, err := New(&interfaces.ModuleSet{Transport: mocks.NewMockTransport(localPeer)}, nil, Options{})
	require.NoError(t, err)
	defer l.Stop()
	assert.Equal(t, "docstore/v1/updates", l.Topic())
	assert.Equal(t, localPeer, l.Snapshot().LocalPeer)
}
