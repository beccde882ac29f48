package liveness

import (
	"context"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-docstore/pkg/types"
)

func TestService_PingRoundTrip(t *testing.T) {
	a, err := libp2p.New(libp2p.ListenAddrStrings("/ip4/127.0.0.1/tcp/0"), libp2p.Ping(false))
	require.NoError(t, err)
	defer a.Close()
	b, err := libp2p.New(libp2p.ListenAddrStrings("/ip4/127.0.0.1/tcp/0"), libp2p.Ping(false))
	require.NoError(t, err)
	defer b.Close()

	sa := New(a, 5*time.Second)
	sb := New(b, 5*time.Second)
	defer sb.Close()

	require.NoError(t, a.Connect(context.Background(), peer.AddrInfo{ID: b.ID(), Addrs: b.Network().ListenAddresses()}))

	rtt, err := sa.Ping(context.Background(), types.PeerID(b.ID().String()))
	require.NoError(t, err)
	assert.Greater(t, rtt, time.Duration(0))

	require.NoError(t, sa.Close())
	_, err = sa.Ping(context.Background(), types.PeerID(b.ID().String()))
	assert.ErrorIs(t, err, ErrServiceClosed)
}

func TestService_PingInvalidPeer(t *testing.T) {
	h, err := libp2p.New(libp2p.NoListenAddrs)
	require.NoError(t, err)
	defer h.Close()

	s := New(h, time.Second)
	defer s.Close()
	_, err = s.Ping(context.Background(), "not-a-peer")
	assert.Error(t, err)
}
