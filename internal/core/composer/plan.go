package composer

import (
	"time"

	"github.com/dep2p/go-docstore/config"
	"github.com/dep2p/go-docstore/pkg/interfaces"
	"github.com/dep2p/go-docstore/pkg/types"
)

// Plan 角色对应的模块组合
type Plan struct {
	Liveness    bool
	Gossip      bool
	RoutingMode types.RoutingMode
	Relay       bool
}

// PlanFor 计算角色的模块组合
func PlanFor(role types.Role) (Plan, error) {
	if !role.IsValid() {
		return Plan{}, types.ErrUnknownRole
	}
	return Plan{
		Liveness:    true,
		Gossip:      true,
		RoutingMode: role.RoutingMode(),
		Relay:       role.RelayCapable(),
	}, nil
}

// DefaultHeartbeat 广播心跳周期
const DefaultHeartbeat = time.Second

// GossipSpecFrom 由配置生成广播参数
func GossipSpecFrom(cfg config.GossipConfig) interfaces.GossipSpec {
	hb := cfg.Heartbeat.Duration()
	if hb <= 0 {
		hb = DefaultHeartbeat
	}
	return interfaces.GossipSpec{
		StrictSigning:    cfg.StrictSigning,
		Heartbeat:        hb,
		RequireMeshPeers: cfg.RequireMeshPeers,
	}
}
