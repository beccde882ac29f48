package docstore

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-docstore/config"
	"github.com/dep2p/go-docstore/internal/core/composer"
	"github.com/dep2p/go-docstore/internal/core/eventbus"
	"github.com/dep2p/go-docstore/internal/core/identity"
	"github.com/dep2p/go-docstore/internal/core/introspect"
	"github.com/dep2p/go-docstore/internal/core/metrics"
	"github.com/dep2p/go-docstore/internal/core/overlay"
	"github.com/dep2p/go-docstore/pkg/interfaces"
)

// buildFxApp 构建 Fx 应用
//
// 加载顺序决定生命周期钩子的顺序（停止时逆序）：
//  1. 基础组件：Identity → Metrics → EventBus
//  2. 协议模块：Factory → Composer（启动时绑定监听地址，停止时关闭全部模块）
//  3. 事件循环：Overlay（启动时加入主题并引导，停止时先于模块关闭）
//  4. 诊断：Introspect（条件加载）
func buildFxApp(cfg *nodeConfig, node *Node) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置验证（前置）
	// ════════════════════════════════════════════════════════════════════════
	if err := cfg.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 基础组件（必须）
	// ════════════════════════════════════════════════════════════════════════
	modules := []fx.Option{
		fx.Supply(cfg.config),

		identity.Module(),
		metrics.Module,
		eventbus.Module(),
	}

	// ════════════════════════════════════════════════════════════════════════
	// 3. 协议模块
	// ════════════════════════════════════════════════════════════════════════
	if cfg.factory != nil {
		modules = append(modules, fx.Provide(provideUserFactory(cfg.factory)))
	} else {
		modules = append(modules, fx.Provide(composer.ProvideFactory))
	}
	// composer 必须在 overlay 之前：停止时事件循环先退出，模块后关闭
	modules = append(modules, composer.Module())

	// ════════════════════════════════════════════════════════════════════════
	// 4. 事件循环
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, overlay.Module())

	// ════════════════════════════════════════════════════════════════════════
	// 5. 自省服务（条件加载）
	// ════════════════════════════════════════════════════════════════════════
	if cfg.config.Diagnostics.EnableIntrospect {
		modules = append(modules, introspect.Module())
	}

	// ════════════════════════════════════════════════════════════════════════
	// 6. 用户扩展（Fx Options）
	// ════════════════════════════════════════════════════════════════════════
	if len(cfg.userFxOptions) > 0 {
		modules = append(modules, cfg.userFxOptions...)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 7. Node 组件注入
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, fx.Invoke(injectNodeComponents(node)))

	// ════════════════════════════════════════════════════════════════════════
	// 8. Fx 配置
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	return fx.New(modules...), nil
}

// provideUserFactory 将用户工厂适配为 Fx 构造函数
func provideUserFactory(f FactoryFunc) func(*config.Config, interfaces.EventSink) composer.Factory {
	return func(cfg *config.Config, sink interfaces.EventSink) composer.Factory {
		return f(cfg, sink)
	}
}

// ════════════════════════════════════════════════════════════════════════════
// 组件注入辅助函数
// ════════════════════════════════════════════════════════════════════════════

// nodeInjectParams Node 组件注入参数
type nodeInjectParams struct {
	fx.In

	// 核心组件（必需）
	Identity *identity.Identity
	Modules  *interfaces.ModuleSet
	Loop     *overlay.Loop
	Bus      *eventbus.Bus

	// 可选组件
	Bandwidth        *metrics.Bandwidth `optional:"true"`
	IntrospectServer *introspect.Server `optional:"true"`
}

// injectNodeComponents 创建 Node 组件注入函数
func injectNodeComponents(node *Node) interface{} {
	return func(params nodeInjectParams) {
		node.identity = params.Identity
		node.modules = params.Modules
		node.loop = params.Loop
		node.bus = params.Bus
		node.bandwidth = params.Bandwidth
		node.introspectServer = params.IntrospectServer
	}
}
