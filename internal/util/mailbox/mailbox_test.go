package mailbox

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailbox_FIFO(t *testing.T) {
	m := New[int]()
	for i := 0; i < 5; i++ {
		require.NoError(t, m.Push(i))
	}
	assert.Equal(t, 5, m.Len())
	for i := 0; i < 5; i++ {
		v, ok := m.TryPop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := m.TryPop()
	assert.False(t, ok)
}

func TestMailbox_UnboundedNeverBlocks(t *testing.T) {
	m := New[int]()
	for i := 0; i < 100000; i++ {
		require.NoError(t, m.Push(i))
	}
	assert.Equal(t, 100000, m.Len())
	assert.Zero(t, m.Dropped())
}

func TestMailbox_PushAfterClose(t *testing.T) {
	m := New[string]()
	require.NoError(t, m.Push("a"))
	m.Close()
	m.Close()

	assert.ErrorIs(t, m.Push("b"), ErrClosed)
	assert.True(t, m.Closed())

	// 关闭前入队的元素仍可取出
	v, err := m.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	_, err = m.Pop(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMailbox_DropOldest(t *testing.T) {
	m := New[int](WithLimit(3, DropOldest))
	for i := 0; i < 5; i++ {
		require.NoError(t, m.Push(i))
	}
	assert.Equal(t, 3, m.Len())
	assert.EqualValues(t, 2, m.Dropped())

	v, _ := m.TryPop()
	assert.Equal(t, 2, v)
}

func TestMailbox_RejectNew(t *testing.T) {
	m := New[int](WithLimit(2, RejectNew))
	require.NoError(t, m.Push(1))
	require.NoError(t, m.Push(2))
	assert.ErrorIs(t, m.Push(3), ErrFull)
	assert.EqualValues(t, 1, m.Dropped())

	v, _ := m.TryPop()
	assert.Equal(t, 1, v)
}

func TestMailbox_PopBlocksUntilPush(t *testing.T) {
	m := New[int]()
	got := make(chan int, 1)
	go func() {
		v, err := m.Pop(context.Background())
		if err == nil {
			got <- v
		}
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, m.Push(42))

	select {
	case v := <-got:
		assert.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("Pop 未被唤醒")
	}
}

func TestMailbox_PopContextCancel(t *testing.T) {
	m := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := m.Pop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMailbox_ReadyStaysSignalled(t *testing.T) {
	m := New[int]()
	require.NoError(t, m.Push(1))
	require.NoError(t, m.Push(2))

	<-m.Ready()
	_, ok := m.TryPop()
	require.True(t, ok)

	// 仍有元素时通知通道必须重新可读
	select {
	case <-m.Ready():
	default:
		t.Fatal("剩余元素未重新通知")
	}
}

func TestMailbox_ConcurrentProducers(t *testing.T) {
	m := New[int]()
	var wg sync.WaitGroup
	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				_ = m.Push(i)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 8000, m.Len())
}

func TestParseOverflowPolicy(t *testing.T) {
	p, err := ParseOverflowPolicy("reject-new")
	require.NoError(t, err)
	assert.Equal(t, RejectNew, p)

	p, err = ParseOverflowPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DropOldest, p)

	_, err = ParseOverflowPolicy("block")
	assert.Error(t, err)
	assert.Equal(t, "drop-oldest", DropOldest.String())
}
