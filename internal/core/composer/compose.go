package composer

import (
	"go.uber.org/multierr"

	"github.com/dep2p/go-docstore/internal/core/identity"
	"github.com/dep2p/go-docstore/pkg/interfaces"
	"github.com/dep2p/go-docstore/pkg/types"
)

// Factory 模块工厂
//
// Transport 必须最先调用，其余模块挂载在它创建的主机上。
type Factory interface {
	Transport(id *identity.Identity) (interfaces.Transport, error)
	Liveness() (interfaces.Liveness, error)
	Gossip(spec interfaces.GossipSpec) (interfaces.Gossip, error)
	Routing(mode types.RoutingMode) (interfaces.RoutingTable, error)
	Relay() (interfaces.Relay, error)
}

// Compose 按角色构造模块集合
//
// 任一模块构造失败时，已构造的模块按相反顺序关闭，错误合并返回。
func Compose(role types.Role, id *identity.Identity, f Factory, spec interfaces.GossipSpec) (*interfaces.ModuleSet, error) {
	if id == nil {
		return nil, ErrNilIdentity
	}
	if f == nil {
		return nil, ErrNilFactory
	}
	plan, err := PlanFor(role)
	if err != nil {
		return nil, err
	}

	set := &interfaces.ModuleSet{Role: role}
	fail := func(module string, err error) (*interfaces.ModuleSet, error) {
		err = &BuildError{Module: module, Err: err}
		if cerr := set.Close(); cerr != nil {
			err = multierr.Append(err, cerr)
		}
		logger.Error("组合模块失败", "role", role.String(), "module", module, "error", err)
		return nil, err
	}

	if set.Transport, err = f.Transport(id); err != nil {
		return fail("transport", err)
	}
	if plan.Liveness {
		if set.Liveness, err = f.Liveness(); err != nil {
			return fail("liveness", err)
		}
	}
	if plan.Gossip {
		if set.Gossip, err = f.Gossip(spec); err != nil {
			return fail("gossip", err)
		}
	}
	if set.Routing, err = f.Routing(plan.RoutingMode); err != nil {
		return fail("routing", err)
	}
	if plan.Relay {
		if set.Relay, err = f.Relay(); err != nil {
			return fail("relay", err)
		}
	}

	logger.Info("模块组合完成",
		"role", role.String(),
		"routing", plan.RoutingMode.String(),
		"relay", set.HasRelay(),
		"peer", id.PeerID().ShortString())
	return set, nil
}
