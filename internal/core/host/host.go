package host

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/event"
	lphost "github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/sec"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/dep2p/go-docstore/config"
	"github.com/dep2p/go-docstore/internal/core/identity"
	"github.com/dep2p/go-docstore/pkg/interfaces"
	"github.com/dep2p/go-docstore/pkg/lib/log"
	"github.com/dep2p/go-docstore/pkg/types"
)

var logger = log.Logger("core/host")

// Host libp2p 主机适配器，实现 interfaces.Transport
type Host struct {
	h    lphost.Host
	sink interfaces.EventSink

	ctx    context.Context
	cancel context.CancelFunc

	dialTimeout time.Duration
	sub         event.Subscription
	notifiee    *network.NotifyBundle

	// mu 保护 wg.Add 与 Close 之间的竞争
	mu     sync.Mutex
	wg     sync.WaitGroup
	closed atomic.Bool
}

var _ interfaces.Transport = (*Host)(nil)

// New 创建主机
//
// 主机创建后立即开始上报事件，但在 ListenOn 之前不监听任何地址。
func New(id *identity.Identity, cfg *config.Config, sink interfaces.EventSink, opts ...Option) (*Host, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	lpOpts, err := buildOptions(id, cfg, s)
	if err != nil {
		return nil, err
	}
	h, err := libp2p.New(lpOpts...)
	if err != nil {
		return nil, fmt.Errorf("创建 libp2p 主机失败: %w", err)
	}

	sub, err := h.EventBus().Subscribe([]interface{}{
		new(event.EvtLocalAddressesUpdated),
		new(event.EvtPeerIdentificationCompleted),
	})
	if err != nil {
		_ = h.Close()
		return nil, fmt.Errorf("订阅主机事件失败: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	hst := &Host{
		h:           h,
		sink:        sink,
		ctx:         ctx,
		cancel:      cancel,
		dialTimeout: cfg.Transport.DialTimeout.Duration(),
		sub:         sub,
	}
	hst.notifiee = &network.NotifyBundle{
		ConnectedF:    hst.onConnected,
		DisconnectedF: hst.onDisconnected,
	}
	h.Network().Notify(hst.notifiee)

	hst.wg.Add(1)
	go hst.eventLoop()

	logger.Info("libp2p 主机已创建", "peer", log.TruncateID(h.ID().String(), 16))
	return hst, nil
}

// Libp2pHost 底层 libp2p 主机，供同一节点的其他协议模块挂载
func (h *Host) Libp2pHost() lphost.Host {
	return h.h
}

// LocalPeer 实现 Transport
func (h *Host) LocalPeer() types.PeerID {
	return types.PeerID(h.h.ID().String())
}

// ListenOn 实现 Transport
func (h *Host) ListenOn(ep types.Endpoint) error {
	if h.closed.Load() {
		return ErrClosed
	}
	addr, err := ma.NewMultiaddr(string(ep))
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidEndpoint, ep, err)
	}
	if err := h.h.Network().Listen(addr); err != nil {
		return fmt.Errorf("监听 %s 失败: %w", ep, err)
	}
	logger.Debug("开始监听", "addr", ep)
	return nil
}

// Dial 实现 Transport
//
// 地址不带 /p2p/<PeerID> 时先以占位身份握手，从身份不匹配错误中取得
// 对端真实身份后重连。连接在后台建立，失败时投递 OutgoingConnectionError。
func (h *Host) Dial(_ context.Context, ep types.Endpoint) error {
	if h.closed.Load() {
		return ErrClosed
	}
	addr, err := ma.NewMultiaddr(string(ep))
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidEndpoint, ep, err)
	}
	info, err := peer.AddrInfoFromP2pAddr(addr)
	switch {
	case errors.Is(err, peer.ErrInvalidAddr):
		info = &peer.AddrInfo{Addrs: []ma.Multiaddr{addr}}
	case err != nil:
		return fmt.Errorf("%w: %q: %v", ErrInvalidEndpoint, ep, err)
	case info.ID == h.h.ID():
		return ErrDialSelf
	}

	h.mu.Lock()
	if h.closed.Load() {
		h.mu.Unlock()
		return ErrClosed
	}
	h.wg.Add(1)
	h.mu.Unlock()

	go func() {
		defer h.wg.Done()
		ctx, cancel := context.WithTimeout(h.ctx, h.dialTimeout)
		defer cancel()

		target := *info
		err := h.connect(ctx, &target)
		if err == nil || h.ctx.Err() != nil {
			return
		}
		h.sink.Emit(interfaces.OutgoingConnectionError{
			Peer:     types.PeerID(target.ID.String()),
			Endpoint: ep,
			Err:      err,
		})
	}()
	return nil
}

// connect 建立连接；info.ID 为空时通过占位身份发现对端身份并回填
func (h *Host) connect(ctx context.Context, info *peer.AddrInfo) error {
	if info.ID != "" {
		return h.h.Connect(ctx, *info)
	}

	placeholder, err := placeholderID()
	if err != nil {
		return err
	}
	err = h.h.Connect(ctx, peer.AddrInfo{ID: placeholder, Addrs: info.Addrs})
	h.h.Peerstore().RemovePeer(placeholder)
	h.h.Peerstore().ClearAddrs(placeholder)

	var mismatch sec.ErrPeerIDMismatch
	if !errors.As(err, &mismatch) {
		if err == nil {
			// 占位身份不可能握手成功
			return fmt.Errorf("%w: 占位身份握手意外成功", ErrIdentityDiscovery)
		}
		return fmt.Errorf("%w: %v", ErrIdentityDiscovery, err)
	}
	info.ID = mismatch.Actual
	if info.ID == h.h.ID() {
		return ErrDialSelf
	}
	if err := info.ID.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrIdentityDiscovery, err)
	}
	logger.Debug("已发现对端身份", "peer", info.ID, "addrs", info.Addrs)
	return h.h.Connect(ctx, *info)
}

// placeholderID 随机身份，仅用于触发握手中的身份不匹配
func placeholderID() (peer.ID, error) {
	_, pub, err := crypto.GenerateEd25519Key(rand.Reader)
	if err != nil {
		return "", err
	}
	return peer.IDFromPublicKey(pub)
}

// ListenAddrs 实现 Transport
func (h *Host) ListenAddrs() []types.Endpoint {
	return toEndpoints(h.h.Addrs())
}

// ConnectedPeers 当前连接的节点数
func (h *Host) ConnectedPeers() int {
	return len(h.h.Network().Peers())
}

// Close 实现 Transport
func (h *Host) Close() error {
	h.mu.Lock()
	if !h.closed.CompareAndSwap(false, true) {
		h.mu.Unlock()
		return nil
	}
	h.mu.Unlock()

	h.cancel()
	h.h.Network().StopNotify(h.notifiee)
	_ = h.sub.Close()
	err := h.h.Close()
	h.wg.Wait()
	logger.Info("libp2p 主机已关闭")
	return err
}

// ============================================================================
//                              事件翻译
// ============================================================================

func (h *Host) onConnected(_ network.Network, c network.Conn) {
	if h.closed.Load() {
		return
	}
	h.sink.Emit(interfaces.ConnectionEstablished{
		Peer:     types.PeerID(c.RemotePeer().String()),
		Endpoint: types.Endpoint(c.RemoteMultiaddr().String()),
		Outbound: c.Stat().Direction == network.DirOutbound,
	})
}

func (h *Host) onDisconnected(_ network.Network, c network.Conn) {
	if h.closed.Load() {
		return
	}
	h.sink.Emit(interfaces.ConnectionClosed{
		Peer:     types.PeerID(c.RemotePeer().String()),
		Endpoint: types.Endpoint(c.RemoteMultiaddr().String()),
	})
}

// eventLoop 把 libp2p 事件总线上的事件翻译为协议事件
func (h *Host) eventLoop() {
	defer h.wg.Done()
	for {
		select {
		case <-h.ctx.Done():
			return
		case ev, ok := <-h.sub.Out():
			if !ok {
				return
			}
			switch e := ev.(type) {
			case event.EvtLocalAddressesUpdated:
				h.handleAddrsUpdated(e)
			case event.EvtPeerIdentificationCompleted:
				h.handleIdentified(e)
			}
		}
	}
}

func (h *Host) handleAddrsUpdated(e event.EvtLocalAddressesUpdated) {
	for _, ua := range e.Current {
		if ua.Action == event.Added {
			h.sink.Emit(interfaces.NewListenAddr{Addr: types.Endpoint(ua.Address.String())})
		}
	}
	for _, ua := range e.Removed {
		h.sink.Emit(interfaces.ListenAddrExpired{Addr: types.Endpoint(ua.Address.String())})
	}
}

// handleIdentified 地址与协议取自 identify 消息本身，而非 peerstore 的累积视图
func (h *Host) handleIdentified(e event.EvtPeerIdentificationCompleted) {
	protos := make([]string, 0, len(e.Protocols))
	for _, id := range e.Protocols {
		protos = append(protos, string(id))
	}

	h.sink.Emit(interfaces.IdentifyReceived{
		Peer:         types.PeerID(e.Peer.String()),
		ListenAddrs:  toEndpoints(e.ListenAddrs),
		Protocols:    protos,
		AgentVersion: e.AgentVersion,
	})
}

func toEndpoints(addrs []ma.Multiaddr) []types.Endpoint {
	out := make([]types.Endpoint, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, types.Endpoint(a.String()))
	}
	return out
}
