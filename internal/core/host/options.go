package host

import (
	"fmt"

	"github.com/libp2p/go-libp2p"
	lpmetrics "github.com/libp2p/go-libp2p/core/metrics"
	"github.com/libp2p/go-libp2p/p2p/muxer/yamux"
	"github.com/libp2p/go-libp2p/p2p/net/connmgr"
	"github.com/libp2p/go-libp2p/p2p/security/noise"
	libp2pquic "github.com/libp2p/go-libp2p/p2p/transport/quic"
	"github.com/libp2p/go-libp2p/p2p/transport/tcp"
	libp2pwebrtc "github.com/libp2p/go-libp2p/p2p/transport/webrtc"

	"github.com/dep2p/go-docstore/config"
	"github.com/dep2p/go-docstore/internal/core/identity"
)

// Option 主机可选项
type Option func(*settings)

type settings struct {
	bandwidth lpmetrics.Reporter
}

// WithBandwidthReporter 设置带宽统计
func WithBandwidthReporter(r lpmetrics.Reporter) Option {
	return func(s *settings) {
		s.bandwidth = r
	}
}

// buildOptions 按配置生成 libp2p 选项
//
// 监听由组合器在启动阶段显式调用 ListenOn 完成，这里不设置监听地址。
// ping 由 liveness 模块单独挂载，这里关闭内置 ping。
func buildOptions(id *identity.Identity, cfg *config.Config, s settings) ([]libp2p.Option, error) {
	cm, err := connmgr.NewConnManager(
		cfg.ConnMgr.LowWater,
		cfg.ConnMgr.HighWater,
		connmgr.WithGracePeriod(cfg.ConnMgr.GracePeriod.Duration()),
	)
	if err != nil {
		return nil, fmt.Errorf("创建连接管理器失败: %w", err)
	}

	opts := []libp2p.Option{
		libp2p.Identity(id.PrivateKey()),
		libp2p.NoListenAddrs,
		libp2p.Security(noise.ID, noise.New),
		libp2p.Muxer(yamux.ID, yamux.DefaultTransport),
		libp2p.UserAgent(cfg.AgentVersion),
		libp2p.ConnectionManager(cm),
		libp2p.Ping(false),
	}

	var transports []libp2p.Option
	if cfg.Transport.EnableTCP {
		transports = append(transports, libp2p.Transport(tcp.NewTCPTransport))
	}
	if cfg.Transport.EnableQUIC {
		transports = append(transports, libp2p.Transport(libp2pquic.NewTransport))
	}
	if cfg.Transport.EnableWebRTC {
		transports = append(transports, libp2p.Transport(libp2pwebrtc.New))
	}
	if len(transports) == 0 {
		transports = append(transports, libp2p.DefaultTransports)
	}
	opts = append(opts, transports...)

	if s.bandwidth != nil {
		opts = append(opts, libp2p.BandwidthReporter(s.bandwidth))
	}
	if cfg.Transport.EnableHolePunching {
		opts = append(opts, libp2p.EnableHolePunching())
	}
	return opts, nil
}
