package composer

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/dep2p/go-docstore/config"
	"github.com/dep2p/go-docstore/internal/core/host"
	"github.com/dep2p/go-docstore/internal/core/identity"
	"github.com/dep2p/go-docstore/internal/core/metrics"
	"github.com/dep2p/go-docstore/pkg/interfaces"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 模块输入依赖
type ModuleInput struct {
	fx.In

	Config   *config.Config
	Identity *identity.Identity
	Factory  Factory
}

// ProvideModules 按配置的角色组合模块
func ProvideModules(input ModuleInput) (*interfaces.ModuleSet, error) {
	return Compose(input.Config.Role, input.Identity, input.Factory, GossipSpecFrom(input.Config.Gossip))
}

// FactoryInput 默认工厂的依赖
type FactoryInput struct {
	fx.In

	Config    *config.Config
	Sink      interfaces.EventSink
	Bandwidth *metrics.Bandwidth `optional:"true"`
}

// ProvideFactory 提供默认的 libp2p 工厂
func ProvideFactory(input FactoryInput) Factory {
	var opts []host.Option
	if input.Bandwidth != nil {
		opts = append(opts, host.WithBandwidthReporter(input.Bandwidth.Counter()))
	}
	return NewLibp2pFactory(input.Config, input.Sink, opts...)
}

// ============================================================================
//                              模块定义
// ============================================================================

// Module 返回 fx 模块配置
//
// Factory 由调用方提供（ProvideFactory 或测试注入）。
func Module() fx.Option {
	return fx.Module("composer",
		fx.Provide(ProvideModules),
		fx.Invoke(registerLifecycle),
	)
}

type lifecycleInput struct {
	fx.In

	LC      fx.Lifecycle
	Config  *config.Config
	Modules *interfaces.ModuleSet
}

func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return Listen(input.Modules.Transport, input.Config.Transport)
		},
		OnStop: func(_ context.Context) error {
			return input.Modules.Close()
		},
	})
}

// Listen 绑定全部配置的监听地址
//
// 任一地址绑定失败即返回错误，属于启动失败。
func Listen(tr interfaces.Transport, cfg config.TransportConfig) error {
	for _, ep := range cfg.ListenEndpoints() {
		if err := tr.ListenOn(ep); err != nil {
			return fmt.Errorf("监听 %s 失败: %w", ep, err)
		}
		logger.Debug("已绑定监听地址", "endpoint", string(ep))
	}
	return nil
}
