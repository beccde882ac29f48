package dht

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	kaddht "github.com/libp2p/go-libp2p-kad-dht"
	lphost "github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/peerstore"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/dep2p/go-docstore/pkg/interfaces"
	"github.com/dep2p/go-docstore/pkg/lib/log"
	"github.com/dep2p/go-docstore/pkg/types"
)

var logger = log.Logger("discovery/dht")

// DefaultQueryTimeout 单次最近节点查询的超时
const DefaultQueryTimeout = time.Minute

// Routing Kademlia 路由表适配器
type Routing struct {
	d    *kaddht.IpfsDHT
	h    lphost.Host
	mode types.RoutingMode
	sink interfaces.EventSink

	queryTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	// mu 保护 closed 与 wg.Add
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

var _ interfaces.RoutingTable = (*Routing)(nil)

// New 在主机上创建 DHT
//
// queryTimeout <= 0 时使用 DefaultQueryTimeout。
func New(h lphost.Host, mode types.RoutingMode, sink interfaces.EventSink, queryTimeout time.Duration) (*Routing, error) {
	if queryTimeout <= 0 {
		queryTimeout = DefaultQueryTimeout
	}

	dhtMode := kaddht.ModeServer
	if mode == types.RoutingModeClient {
		dhtMode = kaddht.ModeClient
	}

	ctx, cancel := context.WithCancel(context.Background())
	d, err := kaddht.New(ctx, h, kaddht.Mode(dhtMode))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("创建 DHT 失败: %w", err)
	}

	logger.Debug("DHT 已创建", "mode", mode.String())
	return &Routing{
		d:            d,
		h:            h,
		mode:         mode,
		sink:         sink,
		queryTimeout: queryTimeout,
		ctx:          ctx,
		cancel:       cancel,
	}, nil
}

// Mode 实现 RoutingTable
func (r *Routing) Mode() types.RoutingMode { return r.mode }

// AddAddress 实现 RoutingTable
//
// 地址写入 peerstore（永久 TTL），节点尝试加入 k-桶。
// 桶已满导致的拒绝不视为错误，地址仍会保留在 peerstore 中。
func (r *Routing) AddAddress(p types.PeerID, ep types.Endpoint) (bool, error) {
	pid, err := peer.Decode(string(p))
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrInvalidPeer, p)
	}
	addr, err := ma.NewMultiaddr(string(ep))
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrInvalidEndpoint, ep)
	}
	transport, embedded := peer.SplitAddr(addr)
	if embedded != "" && embedded != pid {
		return false, fmt.Errorf("%w: %s", ErrPeerMismatch, ep)
	}
	if transport == nil {
		return false, fmt.Errorf("%w: %s", ErrInvalidEndpoint, ep)
	}

	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return false, ErrClosed
	}

	ps := r.h.Peerstore()
	known := false
	for _, a := range ps.Addrs(pid) {
		if a.Equal(transport) {
			known = true
			break
		}
	}
	ps.AddAddr(pid, transport, peerstore.PermanentAddrTTL)

	rt := r.d.RoutingTable()
	inTable := rt.Find(pid) != ""
	added := false
	if !inTable {
		added, err = rt.TryAddPeer(pid, true, false)
		if err != nil {
			logger.Debug("节点未进入路由表", "peer", p.ShortString(), "error", err)
		}
	}

	return !known || added, nil
}

// FindClosestPeers 实现 RoutingTable
func (r *Routing) FindClosestPeers(target types.PeerID) (interfaces.QueryID, error) {
	pid, err := peer.Decode(string(target))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidPeer, target)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return "", ErrClosed
	}
	if r.d.RoutingTable().Size() == 0 {
		return "", interfaces.ErrNoKnownPeers
	}

	qid := interfaces.QueryID(uuid.NewString())
	r.wg.Add(1)
	go r.runQuery(qid, target, pid)

	logger.Debug("发起最近节点查询", "query", string(qid), "target", target.ShortString())
	return qid, nil
}

func (r *Routing) runQuery(qid interfaces.QueryID, target types.PeerID, pid peer.ID) {
	defer r.wg.Done()

	ctx, cancel := context.WithTimeout(r.ctx, r.queryTimeout)
	defer cancel()

	ids, err := r.d.GetClosestPeers(ctx, string(pid))
	if r.ctx.Err() != nil {
		return
	}

	found := make([]interfaces.FoundPeer, 0, len(ids))
	for _, id := range ids {
		addrs := r.h.Peerstore().Addrs(id)
		eps := make([]types.Endpoint, 0, len(addrs))
		for _, a := range addrs {
			eps = append(eps, types.Endpoint(a.String()))
		}
		found = append(found, interfaces.FoundPeer{ID: types.PeerID(id.String()), Endpoints: eps})
	}

	r.sink.Emit(interfaces.QueryCompleted{
		QueryID: qid,
		Target:  target,
		Peers:   found,
		Err:     err,
	})
}

// Bootstrap 实现 RoutingTable
//
// 路由表为空时返回 ErrNoKnownPeers；否则触发一次异步刷新。
func (r *Routing) Bootstrap() error {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if r.d.RoutingTable().Size() == 0 {
		return interfaces.ErrNoKnownPeers
	}
	if err := r.d.Bootstrap(r.ctx); err != nil {
		return fmt.Errorf("刷新路由表失败: %w", err)
	}
	return nil
}

// Size 实现 RoutingTable
func (r *Routing) Size() int {
	return r.d.RoutingTable().Size()
}

// Peers 路由表中的全部节点
func (r *Routing) Peers() []types.PeerID {
	list := r.d.RoutingTable().ListPeers()
	out := make([]types.PeerID, 0, len(list))
	for _, p := range list {
		out = append(out, types.PeerID(p.String()))
	}
	return out
}

// Close 实现 RoutingTable
func (r *Routing) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
	return r.d.Close()
}
