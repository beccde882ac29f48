package bootstrap

import (
	"context"
	"strings"

	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
	"go.uber.org/multierr"

	"github.com/dep2p/go-docstore/pkg/interfaces"
	"github.com/dep2p/go-docstore/pkg/lib/log"
	"github.com/dep2p/go-docstore/pkg/types"
)

var logger = log.Logger("discovery/bootstrap")

// ============================================================================
//                              种子解析
// ============================================================================

// ParseSeedList 解析逗号分隔的种子列表，去除空白与空项
func ParseSeedList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DirectEntry 可直接写入路由表的种子
type DirectEntry struct {
	Peer     types.PeerID
	Endpoint types.Endpoint
	Seed     string
}

// Plan 种子分类结果
type Plan struct {
	// Direct 携带身份的种子
	Direct []DirectEntry
	// DialTargets 不携带身份的种子
	DialTargets []types.Endpoint
	// Errs 解析失败的种子
	Errs []*SeedError
}

// Err 合并所有解析错误
func (p Plan) Err() error {
	var err error
	for _, e := range p.Errs {
		err = multierr.Append(err, e)
	}
	return err
}

// Resolve 将种子分为直接路由项与拨号目标
//
// 重复种子只保留一次；解析失败的种子记入 Errs，不影响其余种子。
func Resolve(seeds []string) Plan {
	var plan Plan
	seen := make(map[string]struct{}, len(seeds))

	for _, seed := range seeds {
		seed = strings.TrimSpace(seed)
		if seed == "" {
			continue
		}
		if _, dup := seen[seed]; dup {
			continue
		}
		seen[seed] = struct{}{}

		addr, err := ma.NewMultiaddr(seed)
		if err != nil {
			plan.Errs = append(plan.Errs, &SeedError{Op: "parse", Seed: seed, Err: err})
			logger.Warn("跳过无法解析的种子", "seed", seed, "err", err)
			continue
		}

		transport, id := peer.SplitAddr(addr)
		if id == "" {
			plan.DialTargets = append(plan.DialTargets, types.Endpoint(addr.String()))
			continue
		}
		if transport == nil {
			plan.Errs = append(plan.Errs, &SeedError{Op: "parse", Seed: seed, Err: ErrNoTransportAddr})
			logger.Warn("跳过没有地址的种子", "seed", seed)
			continue
		}
		plan.Direct = append(plan.Direct, DirectEntry{
			Peer:     types.PeerID(id.String()),
			Endpoint: types.Endpoint(transport.String()),
			Seed:     seed,
		})
	}
	return plan
}

// ============================================================================
//                              执行
// ============================================================================

// Report 引导执行结果
type Report struct {
	// Inserted 新写入路由表的条目数（已存在的不计）
	Inserted int
	// Dialed 成功发出的拨号数
	Dialed int
	// Failures 插入/拨号失败
	Failures []error
	// RefreshErr 路由表刷新错误，不致命
	RefreshErr error
}

// Err 合并所有错误
func (r Report) Err() error {
	err := multierr.Combine(r.Failures...)
	return multierr.Append(err, r.RefreshErr)
}

// Apply 执行引导计划
//
// 插入直接路由项，对拨号目标发起拨号，最后触发一次路由表刷新。
// 任何失败都只记录在 Report 中，不会中止流程。
func Apply(ctx context.Context, plan Plan, rt interfaces.RoutingTable, tr interfaces.Transport) Report {
	var rep Report

	for _, e := range plan.Direct {
		if rt == nil {
			rep.Failures = append(rep.Failures, &SeedError{Op: "insert", Seed: e.Seed, Err: ErrNoRoutingTable})
			continue
		}
		added, err := rt.AddAddress(e.Peer, e.Endpoint)
		if err != nil {
			rep.Failures = append(rep.Failures, &SeedError{Op: "insert", Seed: e.Seed, Err: err})
			logger.Warn("写入路由表失败", "seed", e.Seed, "err", err)
			continue
		}
		if added {
			rep.Inserted++
		}
	}

	for _, ep := range plan.DialTargets {
		if tr == nil {
			rep.Failures = append(rep.Failures, &SeedError{Op: "dial", Seed: ep.String(), Err: ErrNoTransport})
			continue
		}
		if err := tr.Dial(ctx, ep); err != nil {
			rep.Failures = append(rep.Failures, &SeedError{Op: "dial", Seed: ep.String(), Err: err})
			logger.Warn("拨号种子失败", "endpoint", ep, "err", err)
			continue
		}
		rep.Dialed++
	}

	if rt == nil {
		rep.RefreshErr = ErrNoRoutingTable
	} else {
		rep.RefreshErr = rt.Bootstrap()
	}
	if rep.RefreshErr != nil {
		logger.Warn("路由表刷新未能发出", "err", rep.RefreshErr)
	}

	logger.Info("引导完成",
		"direct", len(plan.Direct),
		"inserted", rep.Inserted,
		"dialTargets", len(plan.DialTargets),
		"dialed", rep.Dialed,
		"failures", len(rep.Failures))
	return rep
}

// Run 解析并执行种子列表
func Run(ctx context.Context, seeds []string, rt interfaces.RoutingTable, tr interfaces.Transport) (Plan, Report) {
	plan := Resolve(seeds)
	return plan, Apply(ctx, plan, rt, tr)
}
