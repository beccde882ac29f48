package eventbus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-docstore/pkg/types"
)

// TestBus_FanOut 测试多订阅者各自收到副本
func TestBus_FanOut(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	a, err := bus.Subscribe()
	require.NoError(t, err)
	b, err := bus.Subscribe(BufSize(4))
	require.NoError(t, err)
	assert.Equal(t, 2, bus.Subscribers())

	ev := types.Connected{Peer: "peer-a"}
	bus.Publish(ev)

	assert.Equal(t, ev, <-a.Out())
	assert.Equal(t, ev, <-b.Out())
}

// TestBus_KindFilter 测试按类型过滤
func TestBus_KindFilter(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	sub, err := bus.Subscribe(Kinds(types.KindError))
	require.NoError(t, err)

	bus.Publish(types.Connected{Peer: "p"})
	bus.Publish(types.Error{Op: "publish", Reason: "no peers"})

	got := <-sub.Out()
	assert.Equal(t, types.KindError, got.Kind())
	assert.Len(t, sub.Out(), 0)
}

// TestBus_DropWhenFull 测试慢消费者不阻塞发布
func TestBus_DropWhenFull(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	sub, err := bus.Subscribe(BufSize(2))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		bus.Publish(types.Disconnected{Peer: "p"})
	}
	assert.Len(t, sub.Out(), 2)
	assert.EqualValues(t, 3, sub.Dropped())
}

// TestSubscription_Close 测试取消订阅
func TestSubscription_Close(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	sub, err := bus.Subscribe()
	require.NoError(t, err)
	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	_, ok := <-sub.Out()
	assert.False(t, ok, "关闭后通道应关闭")
	assert.Equal(t, 0, bus.Subscribers())

	assert.NotPanics(t, func() { bus.Publish(types.Connected{Peer: "p"}) })
}

// TestBus_Close 测试关闭总线
func TestBus_Close(t *testing.T) {
	bus := NewBus()
	sub, err := bus.Subscribe()
	require.NoError(t, err)

	bus.Close()
	bus.Close()

	_, ok := <-sub.Out()
	assert.False(t, ok)
	_, err = bus.Subscribe()
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, sub.Close())
}

// TestBus_ConcurrentPublish 测试并发发布与取消订阅
func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bus.Publish(types.MessagePublished{ID: "m"})
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub, err := bus.Subscribe(BufSize(1))
			if err != nil {
				return
			}
			_ = sub.Close()
		}()
	}
	wg.Wait()
	t.Log("✅ 并发发布测试通过")
}

// TestModule 测试 fx 模块在停止时关闭总线
func TestModule(t *testing.T) {
	var bus *Bus
	app := fxtest.New(t, Module(), fx.Populate(&bus))
	app.RequireStart()

	sub, err := bus.Subscribe()
	require.NoError(t, err)

	app.RequireStop()
	_, ok := <-sub.Out()
	assert.False(t, ok)
}
