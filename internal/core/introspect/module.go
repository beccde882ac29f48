package introspect

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-docstore/config"
	"github.com/dep2p/go-docstore/internal/core/eventbus"
	"github.com/dep2p/go-docstore/internal/core/metrics"
	"github.com/dep2p/go-docstore/internal/core/overlay"
)

// ModuleInput 模块输入
type ModuleInput struct {
	fx.In

	Config *config.Config
	Loop   *overlay.Loop

	Registry  *prometheus.Registry `optional:"true"`
	Bus       *eventbus.Bus        `optional:"true"`
	Bandwidth *metrics.Bandwidth   `optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Server *Server
}

// ProvideServer 提供自省服务
func ProvideServer(in ModuleInput) ModuleOutput {
	cfg := Config{
		Addr:      in.Config.Diagnostics.IntrospectAddr,
		Source:    in.Loop,
		Bus:       in.Bus,
		Bandwidth: in.Bandwidth,
	}
	if in.Registry != nil {
		cfg.Gatherer = in.Registry
	}
	return ModuleOutput{
		Server: New(cfg),
	}
}

// Module 返回 introspect fx 模块
//
// 只在 Diagnostics.EnableIntrospect 为 true 时加入应用。
func Module() fx.Option {
	return fx.Module("introspect",
		fx.Provide(ProvideServer),
		fx.Invoke(func(lc fx.Lifecycle, s *Server) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return s.Start(ctx)
				},
				OnStop: func(ctx context.Context) error {
					return s.Stop()
				},
			})
		}),
	)
}
