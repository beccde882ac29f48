package docstore

import (
	"fmt"

	"go.uber.org/fx"

	"github.com/dep2p/go-docstore/config"
	"github.com/dep2p/go-docstore/internal/core/composer"
	"github.com/dep2p/go-docstore/internal/util/mailbox"
	"github.com/dep2p/go-docstore/pkg/interfaces"
	"github.com/dep2p/go-docstore/pkg/types"
)

// Option 用户配置选项函数
type Option func(*nodeConfig) error

// FactoryFunc 按配置与事件接收者创建协议模块工厂
type FactoryFunc func(cfg *config.Config, sink interfaces.EventSink) composer.Factory

// OverflowPolicy 有界队列的溢出策略
type OverflowPolicy = mailbox.OverflowPolicy

const (
	// DropOldest 丢弃最早的元素
	DropOldest = mailbox.DropOldest
	// RejectNew 拒绝新元素
	RejectNew = mailbox.RejectNew
)

// nodeConfig 内部选项结构
type nodeConfig struct {
	// config 组件配置
	config *config.Config

	// factory 协议模块工厂，为空时使用 libp2p 实现
	factory FactoryFunc

	// userFxOptions 用户自定义 Fx 选项
	userFxOptions []fx.Option
}

// newNodeConfig 创建默认选项
func newNodeConfig() *nodeConfig {
	return &nodeConfig{config: config.NewConfig()}
}

// ════════════════════════════════════════════════════════════════════════════
//                              基础选项
// ════════════════════════════════════════════════════════════════════════════

// WithConfig 使用完整配置
//
// 替换当前配置（会复制一份），应放在其他选项之前。
func WithConfig(cfg *config.Config) Option {
	return func(nc *nodeConfig) error {
		if cfg == nil {
			return config.ErrNilConfig
		}
		nc.config = cfg.Clone()
		return nil
	}
}

// WithPreset 应用预设
func WithPreset(p *Preset) Option {
	return func(nc *nodeConfig) error {
		if p == nil {
			return ErrNilPreset
		}
		p.Apply(nc.config)
		return nil
	}
}

// WithRole 设置节点角色
func WithRole(role types.Role) Option {
	return func(nc *nodeConfig) error {
		if !role.IsValid() {
			return fmt.Errorf("%w: %d", types.ErrUnknownRole, int(role))
		}
		nc.config.Role = role
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              身份
// ════════════════════════════════════════════════════════════════════════════

// WithIdentityFile 指定身份密钥文件
//
// 文件不存在或无法解码时生成新身份并写入；文件系统错误时 New 返回错误。
func WithIdentityFile(path string) Option {
	return func(nc *nodeConfig) error {
		nc.config.Identity.KeyFile = path
		nc.config.Identity.Ephemeral = false
		return nil
	}
}

// WithEphemeralIdentity 使用只存在于内存中的临时身份
func WithEphemeralIdentity() Option {
	return func(nc *nodeConfig) error {
		nc.config.Identity.Ephemeral = true
		nc.config.Identity.KeyFile = ""
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              网络
// ════════════════════════════════════════════════════════════════════════════

// WithBootstrapPeers 设置种子节点
//
// 显式传入空列表表示不引导（创世节点）。
func WithBootstrapPeers(peers ...string) Option {
	return func(nc *nodeConfig) error {
		nc.config.Discovery.BootstrapPeers = append([]string(nil), peers...)
		return nil
	}
}

// WithListenAddrs 只监听给定的 multiaddr，替换默认的 TCP/QUIC/WebRTC 地址
func WithListenAddrs(addrs ...string) Option {
	return func(nc *nodeConfig) error {
		if len(addrs) == 0 {
			return config.ErrNoTransport
		}
		t := &nc.config.Transport
		t.EnableTCP = false
		t.EnableQUIC = false
		t.EnableWebRTC = false
		t.ExtraListenAddrs = append([]string(nil), addrs...)
		return nil
	}
}

// WithSignalingPort 设置 WebRTC-direct UDP 端口
func WithSignalingPort(port int) Option {
	return func(nc *nodeConfig) error {
		if port < 0 || port > 65535 {
			return fmt.Errorf("%w: signaling_port=%d", config.ErrInvalidPort, port)
		}
		nc.config.Transport.SignalingPort = port
		nc.config.Transport.EnableWebRTC = true
		return nil
	}
}

// WithTopics 设置加入的主题，第一个为发布用的规范主题
func WithTopics(topics ...string) Option {
	return func(nc *nodeConfig) error {
		if len(topics) == 0 {
			return config.ErrNoTopics
		}
		nc.config.Gossip.Topics = append([]string(nil), topics...)
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              运行时
// ════════════════════════════════════════════════════════════════════════════

// WithQueueLimits 为命令队列与事件队列设置上限
//
// 0 表示无界。
func WithQueueLimits(maxCommands, maxEvents int, policy OverflowPolicy) Option {
	return func(nc *nodeConfig) error {
		if maxCommands < 0 || maxEvents < 0 {
			return config.ErrInvalidLimit
		}
		nc.config.Queue.MaxCommands = maxCommands
		nc.config.Queue.MaxEvents = maxEvents
		nc.config.Queue.Overflow = policy.String()
		return nil
	}
}

// WithIntrospect 启用本地自省 HTTP 服务
//
// addr 为空时使用 127.0.0.1:6060。
func WithIntrospect(addr string) Option {
	return func(nc *nodeConfig) error {
		nc.config.Diagnostics.EnableIntrospect = true
		if addr != "" {
			nc.config.Diagnostics.IntrospectAddr = addr
		}
		return nil
	}
}

// WithLogFile 将日志写入文件
func WithLogFile(path string) Option {
	return func(nc *nodeConfig) error {
		nc.config.LogFile = path
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              扩展
// ════════════════════════════════════════════════════════════════════════════

// WithModuleFactory 替换协议模块工厂
//
// 主要用于测试：注入内存实现，不打开任何网络端口。
func WithModuleFactory(f FactoryFunc) Option {
	return func(nc *nodeConfig) error {
		nc.factory = f
		return nil
	}
}

// WithFxOption 追加自定义 Fx 选项
func WithFxOption(opts ...fx.Option) Option {
	return func(nc *nodeConfig) error {
		nc.userFxOptions = append(nc.userFxOptions, opts...)
		return nil
	}
}
