package overlay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-docstore/config"
	"github.com/dep2p/go-docstore/internal/core/eventbus"
	"github.com/dep2p/go-docstore/internal/core/metrics"
	"github.com/dep2p/go-docstore/internal/testutil/mocks"
	"github.com/dep2p/go-docstore/pkg/interfaces"
	"github.com/dep2p/go-docstore/pkg/types"
)

// TestModule_Lifecycle 测试 fx 模块启动与停止
func TestModule_Lifecycle(t *testing.T) {
	cfg := config.NewConfig()
	gossip := mocks.NewMockGossip()
	set := &interfaces.ModuleSet{
		Role:      types.RoleFullNode,
		Transport: mocks.NewMockTransport(localPeer),
		Gossip:    gossip,
		Routing:   mocks.NewMockRoutingTable(types.RoutingModeServer),
	}

	var (
		loop *Loop
		sink interfaces.EventSink
		bus  *eventbus.Bus
	)
	app := fxtest.New(t,
		fx.NopLogger,
		fx.Supply(cfg, set),
		metrics.Module,
		eventbus.Module(),
		Module(),
		fx.Populate(&loop, &sink, &bus),
	)
	app.RequireStart()

	sub, err := bus.Subscribe(eventbus.Kinds(types.KindConnected))
	require.NoError(t, err)

	sink.Emit(interfaces.ConnectionEstablished{Peer: "p", Endpoint: "/ip4/10.0.0.1/tcp/1"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ev, err := loop.NextEvent(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.KindConnected, ev.Kind())

	select {
	case got := <-sub.Out():
		assert.Equal(t, ev, got)
	case <-time.After(2 * time.Second):
		t.Fatal("事件总线未收到事件")
	}
	assert.Equal(t, cfg.Gossip.Topics, gossip.Topics())

	app.RequireStop()
	assert.ErrorIs(t, loop.Publish([]byte("x")), ErrLoopClosed)
	t.Log("✅ overlay 模块生命周期测试通过")
}
