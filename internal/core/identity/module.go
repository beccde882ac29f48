package identity

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-docstore/config"
)

// ModuleInput 模块输入依赖
type ModuleInput struct {
	fx.In

	Config *config.Config
}

// ProvideIdentity 按配置提供节点身份
//
// Ephemeral 时只在内存中生成；否则按 ResolvePath 加载或创建。
func ProvideIdentity(input ModuleInput) (*Identity, error) {
	if input.Config.Identity.Ephemeral {
		logger.Debug("使用临时身份")
		return Generate()
	}
	id, _, err := LoadOrCreate(ResolvePath(input.Config.Identity.KeyFile))
	return id, err
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("identity",
		fx.Provide(ProvideIdentity),
	)
}
