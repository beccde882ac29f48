package config

import (
	"fmt"
	"net"
	"time"

	ma "github.com/multiformats/go-multiaddr"

	"github.com/dep2p/go-docstore/pkg/types"
)

// DefaultSignalingPort WebRTC-direct 默认 UDP 端口
const DefaultSignalingPort = 9090

// TransportConfig 传输层配置
//
// 至少启用一种常规流传输（TCP）或 QUIC，以及可选的 NAT 穿透传输（WebRTC-direct）：
//   - TCP:    noise + yamux 升级
//   - QUIC:   UDP 上的 quic-v1
//   - WebRTC: webrtc-direct，浏览器客户端可直接拨入
type TransportConfig struct {
	// ListenIP 监听 IP，默认 0.0.0.0
	ListenIP string `json:"listen_ip"`

	// TCP 配置
	EnableTCP bool `json:"enable_tcp"`
	TCPPort   int  `json:"tcp_port"`

	// QUIC 配置
	EnableQUIC bool `json:"enable_quic"`
	QUICPort   int  `json:"quic_port"`

	// WebRTC-direct 配置（环境变量 SIGNALING_PORT）
	EnableWebRTC  bool `json:"enable_webrtc"`
	SignalingPort int  `json:"signaling_port"`

	// ExtraListenAddrs 额外监听地址（multiaddr 文本）
	ExtraListenAddrs []string `json:"extra_listen_addrs,omitempty"`

	// EnableHolePunching 启用打洞
	EnableHolePunching bool `json:"enable_hole_punching"`

	// DialTimeout 拨号超时
	DialTimeout Duration `json:"dial_timeout"`
}

// DefaultTransportConfig 返回默认传输配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		ListenIP:           "0.0.0.0",
		EnableTCP:          true,
		TCPPort:            0,
		EnableQUIC:         true,
		QUICPort:           0,
		EnableWebRTC:       true,
		SignalingPort:      DefaultSignalingPort,
		EnableHolePunching: true,
		DialTimeout:        Duration(30 * time.Second),
	}
}

// Validate 验证传输配置
func (c TransportConfig) Validate() error {
	if !c.EnableTCP && !c.EnableQUIC && !c.EnableWebRTC && len(c.ExtraListenAddrs) == 0 {
		return ErrNoTransport
	}
	if net.ParseIP(c.ListenIP) == nil {
		return fmt.Errorf("%w: listen_ip %q", ErrInvalidAddress, c.ListenIP)
	}
	for name, port := range map[string]int{
		"tcp_port":       c.TCPPort,
		"quic_port":      c.QUICPort,
		"signaling_port": c.SignalingPort,
	} {
		if port < 0 || port > 65535 {
			return fmt.Errorf("%w: %s=%d", ErrInvalidPort, name, port)
		}
	}
	for _, s := range c.ExtraListenAddrs {
		if _, err := ma.NewMultiaddr(s); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
		}
	}
	if c.DialTimeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// ListenEndpoints 按配置生成监听地址
func (c TransportConfig) ListenEndpoints() []types.Endpoint {
	proto := "ip4"
	if ip := net.ParseIP(c.ListenIP); ip != nil && ip.To4() == nil {
		proto = "ip6"
	}
	var eps []types.Endpoint
	if c.EnableTCP {
		eps = append(eps, types.Endpoint(fmt.Sprintf("/%s/%s/tcp/%d", proto, c.ListenIP, c.TCPPort)))
	}
	if c.EnableQUIC {
		eps = append(eps, types.Endpoint(fmt.Sprintf("/%s/%s/udp/%d/quic-v1", proto, c.ListenIP, c.QUICPort)))
	}
	if c.EnableWebRTC {
		eps = append(eps, types.Endpoint(fmt.Sprintf("/%s/%s/udp/%d/webrtc-direct", proto, c.ListenIP, c.SignalingPort)))
	}
	for _, s := range c.ExtraListenAddrs {
		eps = append(eps, types.Endpoint(s))
	}
	return eps
}
