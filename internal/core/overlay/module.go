package overlay

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-docstore/config"
	"github.com/dep2p/go-docstore/internal/core/eventbus"
	"github.com/dep2p/go-docstore/internal/core/metrics"
	"github.com/dep2p/go-docstore/pkg/interfaces"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 模块输入依赖
type ModuleInput struct {
	fx.In

	Config  *config.Config
	Modules *interfaces.ModuleSet
	Inbox   *Inbox

	Metrics *metrics.Overlay `optional:"true"`
	Bus     *eventbus.Bus    `optional:"true"`
}

// ProvideLoop 创建事件循环
func ProvideLoop(input ModuleInput) (*Loop, error) {
	opts := OptionsFromConfig(input.Config)
	opts.Metrics = input.Metrics
	if input.Bus != nil {
		opts.Fanout = input.Bus
	}
	return New(input.Modules, input.Inbox, opts)
}

// ProvideSink 协议模块使用的 EventSink 即事件循环的收件箱
func ProvideSink(inbox *Inbox) interfaces.EventSink {
	return inbox
}

// ============================================================================
//                              模块定义
// ============================================================================

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("overlay",
		fx.Provide(NewInbox, ProvideSink, ProvideLoop),
		fx.Invoke(registerLifecycle),
	)
}

type lifecycleInput struct {
	fx.In

	LC     fx.Lifecycle
	Config *config.Config
	Loop   *Loop
}

// registerLifecycle 注册在组合器之后，因此停止时先于模块关闭执行
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return input.Loop.Start(ctx, input.Config.Discovery.BootstrapPeers)
		},
		OnStop: func(_ context.Context) error {
			input.Loop.Stop()
			return nil
		},
	})
}
