package composer

import (
	"time"

	"github.com/dep2p/go-docstore/config"
	"github.com/dep2p/go-docstore/internal/core/host"
	"github.com/dep2p/go-docstore/internal/core/identity"
	"github.com/dep2p/go-docstore/internal/core/liveness"
	"github.com/dep2p/go-docstore/internal/core/messaging/gossipsub"
	"github.com/dep2p/go-docstore/internal/core/relay"
	"github.com/dep2p/go-docstore/internal/discovery/dht"
	"github.com/dep2p/go-docstore/pkg/interfaces"
	"github.com/dep2p/go-docstore/pkg/lib/log"
	"github.com/dep2p/go-docstore/pkg/types"
)

var logger = log.Logger("core/composer")

// DefaultPingTimeout 存活检测超时
const DefaultPingTimeout = 10 * time.Second

// Libp2pFactory 基于单个 libp2p 主机的模块工厂
//
// 所有模块共享 Transport 创建的主机，协议事件统一投递到 sink。
type Libp2pFactory struct {
	cfg      *config.Config
	sink     interfaces.EventSink
	hostOpts []host.Option
	host     *host.Host
}

var _ Factory = (*Libp2pFactory)(nil)

// NewLibp2pFactory 创建工厂，hostOpts 透传给主机
func NewLibp2pFactory(cfg *config.Config, sink interfaces.EventSink, hostOpts ...host.Option) *Libp2pFactory {
	return &Libp2pFactory{cfg: cfg, sink: sink, hostOpts: hostOpts}
}

// Transport 创建主机
func (f *Libp2pFactory) Transport(id *identity.Identity) (interfaces.Transport, error) {
	h, err := host.New(id, f.cfg, f.sink, f.hostOpts...)
	if err != nil {
		return nil, err
	}
	f.host = h
	return h, nil
}

// Liveness 挂载 ping 协议
func (f *Libp2pFactory) Liveness() (interfaces.Liveness, error) {
	if f.host == nil {
		return nil, ErrTransportFirst
	}
	return liveness.New(f.host.Libp2pHost(), DefaultPingTimeout), nil
}

// Gossip 创建 GossipSub 路由
func (f *Libp2pFactory) Gossip(spec interfaces.GossipSpec) (interfaces.Gossip, error) {
	if f.host == nil {
		return nil, ErrTransportFirst
	}
	return gossipsub.New(f.host.Libp2pHost(), spec, f.sink)
}

// Routing 创建 Kademlia 路由表
func (f *Libp2pFactory) Routing(mode types.RoutingMode) (interfaces.RoutingTable, error) {
	if f.host == nil {
		return nil, ErrTransportFirst
	}
	return dht.New(f.host.Libp2pHost(), mode, f.sink, dht.DefaultQueryTimeout)
}

// Relay 启用电路中继服务
func (f *Libp2pFactory) Relay() (interfaces.Relay, error) {
	if f.host == nil {
		return nil, ErrTransportFirst
	}
	return relay.New(f.host.Libp2pHost())
}

// Host 已创建的主机（Transport 调用前为 nil）
func (f *Libp2pFactory) Host() *host.Host {
	return f.host
}
