package overlay

import (
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dep2p/go-docstore/pkg/types"
)

// connEntry 已连接节点
//
// 同一节点可能有多条连接，按地址计数，最后一条关闭时才算断开。
type connEntry struct {
	record types.PeerRecord
	conns  map[types.Endpoint]int
	total  int
}

// overlayState 事件循环持有的覆盖网络状态
//
// 只在事件循环协程内读写。
type overlayState struct {
	listenAddrs   []types.Endpoint
	connected     map[types.PeerID]*connEntry
	discovered    *lru.Cache[types.PeerID, *types.PeerRecord]
	subscriptions []string
	activeRelays  map[types.PeerID]struct{}

	// seq 逻辑时钟，每处理一个事件加一
	seq uint64
}

func newOverlayState(maxDiscovered int) (*overlayState, error) {
	cache, err := lru.New[types.PeerID, *types.PeerRecord](maxDiscovered)
	if err != nil {
		return nil, err
	}
	return &overlayState{
		connected:    make(map[types.PeerID]*connEntry),
		discovered:   cache,
		activeRelays: make(map[types.PeerID]struct{}),
	}, nil
}

func (s *overlayState) tick() uint64 {
	s.seq++
	return s.seq
}

// addListen 集合语义，保持插入顺序
func (s *overlayState) addListen(ep types.Endpoint) bool {
	for _, e := range s.listenAddrs {
		if e == ep {
			return false
		}
	}
	s.listenAddrs = append(s.listenAddrs, ep)
	return true
}

func (s *overlayState) removeListen(ep types.Endpoint) bool {
	for i, e := range s.listenAddrs {
		if e == ep {
			s.listenAddrs = append(s.listenAddrs[:i:i], s.listenAddrs[i+1:]...)
			return true
		}
	}
	return false
}

func (s *overlayState) addSubscription(topic string) {
	for _, t := range s.subscriptions {
		if t == topic {
			return
		}
	}
	s.subscriptions = append(s.subscriptions, topic)
}

// connect 记录一条连接，返回是否为该节点的第一条
func (s *overlayState) connect(p types.PeerID, ep types.Endpoint, now time.Time) bool {
	e, ok := s.connected[p]
	if !ok {
		e = &connEntry{
			record: types.PeerRecord{ID: p},
			conns:  make(map[types.Endpoint]int),
		}
		s.connected[p] = e
	}
	e.conns[ep]++
	e.total++
	e.record.AddEndpoint(ep)
	e.record.LastSeen = s.seq
	e.record.SeenAt = now
	return e.total == 1
}

// disconnect 移除一条连接，返回是否为该节点的最后一条
func (s *overlayState) disconnect(p types.PeerID, ep types.Endpoint) bool {
	e, ok := s.connected[p]
	if !ok {
		return false
	}
	if n := e.conns[ep]; n > 1 {
		e.conns[ep] = n - 1
	} else if n == 1 {
		delete(e.conns, ep)
		e.record.RemoveEndpoint(ep)
	}
	e.total--
	if e.total > 0 {
		return false
	}
	delete(s.connected, p)
	delete(s.activeRelays, p)
	return true
}

func (s *overlayState) isConnected(p types.PeerID) bool {
	_, ok := s.connected[p]
	return ok
}

// touch 更新已连接节点的最近活动时间
func (s *overlayState) touch(p types.PeerID, now time.Time) {
	if e, ok := s.connected[p]; ok {
		e.record.LastSeen = s.seq
		e.record.SeenAt = now
	}
}

// discover 合并发现的地址
func (s *overlayState) discover(p types.PeerID, eps []types.Endpoint, now time.Time) {
	rec, ok := s.discovered.Get(p)
	if !ok {
		rec = &types.PeerRecord{ID: p}
	}
	for _, ep := range eps {
		rec.AddEndpoint(ep)
	}
	rec.LastSeen = s.seq
	rec.SeenAt = now
	s.discovered.Add(p, rec)
}

// pruneDiscovered 移除超过 ttl 未再出现的发现记录
func (s *overlayState) pruneDiscovered(now time.Time, ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	removed := 0
	for _, p := range s.discovered.Keys() {
		rec, ok := s.discovered.Peek(p)
		if ok && now.Sub(rec.SeenAt) > ttl {
			s.discovered.Remove(p)
			removed++
		}
	}
	return removed
}

func (s *overlayState) setRelay(p types.PeerID) bool {
	if _, ok := s.activeRelays[p]; ok {
		return false
	}
	s.activeRelays[p] = struct{}{}
	return true
}

// ============================================================================
//                              快照
// ============================================================================

// Snapshot 覆盖网络状态的只读快照
type Snapshot struct {
	LocalPeer      types.PeerID       `json:"local_peer"`
	Role           string             `json:"role"`
	Seq            uint64             `json:"seq"`
	TakenAt        time.Time          `json:"taken_at"`
	ListenAddrs    []types.Endpoint   `json:"listen_addrs"`
	Connected      []types.PeerRecord `json:"connected"`
	Discovered     []types.PeerRecord `json:"discovered"`
	Subscriptions  []string           `json:"subscriptions"`
	ActiveRelays   []types.PeerID     `json:"active_relays"`
	PendingLookups []types.PeerID     `json:"pending_lookups"`
}

// ConnectedPeer 是否与节点有连接
func (s Snapshot) ConnectedPeer(p types.PeerID) bool {
	for _, r := range s.Connected {
		if r.ID == p {
			return true
		}
	}
	return false
}

// DiscoveredPeer 返回发现记录
func (s Snapshot) DiscoveredPeer(p types.PeerID) (types.PeerRecord, bool) {
	for _, r := range s.Discovered {
		if r.ID == p {
			return r, true
		}
	}
	return types.PeerRecord{}, false
}

// snapshot 深拷贝当前状态，列表按节点 ID 排序
func (s *overlayState) snapshot(local types.PeerID, role types.Role, pending []types.PeerID, now time.Time) *Snapshot {
	snap := &Snapshot{
		LocalPeer:      local,
		Role:           role.String(),
		Seq:            s.seq,
		TakenAt:        now,
		ListenAddrs:    append([]types.Endpoint(nil), s.listenAddrs...),
		Connected:      make([]types.PeerRecord, 0, len(s.connected)),
		Discovered:     make([]types.PeerRecord, 0, s.discovered.Len()),
		Subscriptions:  append([]string(nil), s.subscriptions...),
		ActiveRelays:   make([]types.PeerID, 0, len(s.activeRelays)),
		PendingLookups: append([]types.PeerID(nil), pending...),
	}
	for _, e := range s.connected {
		snap.Connected = append(snap.Connected, e.record.Clone())
	}
	for _, p := range s.discovered.Keys() {
		if rec, ok := s.discovered.Peek(p); ok {
			snap.Discovered = append(snap.Discovered, rec.Clone())
		}
	}
	for p := range s.activeRelays {
		snap.ActiveRelays = append(snap.ActiveRelays, p)
	}

	sort.Slice(snap.Connected, func(i, j int) bool { return snap.Connected[i].ID < snap.Connected[j].ID })
	sort.Slice(snap.Discovered, func(i, j int) bool { return snap.Discovered[i].ID < snap.Discovered[j].ID })
	sort.Slice(snap.ActiveRelays, func(i, j int) bool { return snap.ActiveRelays[i] < snap.ActiveRelays[j] })
	return snap
}
