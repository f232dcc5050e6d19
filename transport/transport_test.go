package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dspctl/scosc/osc"
)

func newLoopbackPair(t *testing.T) (*Transport, *Transport) {
	t.Helper()
	a, err := New(Config{ListenAddress: "127.0.0.1:0"})
	require.NoError(t, err)
	b, err := New(Config{ListenAddress: "127.0.0.1:0"})
	require.NoError(t, err)

	_, err = a.RegisterPeer("b", "udp", b.LocalAddr().String())
	require.NoError(t, err)
	_, err = b.RegisterPeer("a", "udp", a.LocalAddr().String())
	require.NoError(t, err)

	ctx := context.Background()
	a.Start(ctx)
	b.Start(ctx)

	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})
	return a, b
}

func TestSendRoutesIntoReplyQueue(t *testing.T) {
	a, b := newLoopbackPair(t)
	q := b.ReplyQueue("/status.reply")

	m, err := osc.NewMessage("/status.reply", int32(1))
	require.NoError(t, err)
	require.NoError(t, a.Send(m, "b"))

	got, err := q.Get(time.Second, true)
	require.NoError(t, err)
	require.Equal(t, "/status.reply", got.Address)
}

func TestSendToUnknownPeerFails(t *testing.T) {
	a, _ := newLoopbackPair(t)
	m, err := osc.NewMessage("/status")
	require.NoError(t, err)
	err = a.Send(m, "nope")
	require.ErrorIs(t, err, ErrUnknownPeer)
}

func TestSendOversizePacketFails(t *testing.T) {
	a, err := New(Config{ListenAddress: "127.0.0.1:0", MTU: 16})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	_, err = a.RegisterPeer("self", "udp", a.LocalAddr().String())
	require.NoError(t, err)

	m, err := osc.NewMessage("/a_very_long_address_to_exceed_mtu", int32(1), int32(2), int32(3))
	require.NoError(t, err)
	err = a.Send(m, "self")
	require.ErrorIs(t, err, ErrPacketTooLarge)
}

func TestCatchAllInvokedForUnregisteredAddress(t *testing.T) {
	a, b := newLoopbackPair(t)

	received := make(chan osc.Message, 1)
	b.SetCatchAll(func(m osc.Message, addr *net.UDPAddr) {
		received <- m
	})

	m, err := osc.NewMessage("/n_end", int32(1000))
	require.NoError(t, err)
	require.NoError(t, a.Send(m, "b"))

	select {
	case got := <-received:
		require.Equal(t, "/n_end", got.Address)
	case <-time.After(time.Second):
		t.Fatal("catch-all handler was not invoked")
	}
}

func TestMsgAwaitsReply(t *testing.T) {
	a, err := New(Config{
		ListenAddress:  "127.0.0.1:0",
		ReplyAddresses: map[string]string{"/sync": "/synced"},
	})
	require.NoError(t, err)
	b, err := New(Config{ListenAddress: "127.0.0.1:0"})
	require.NoError(t, err)

	_, err = a.RegisterPeer("b", "udp", b.LocalAddr().String())
	require.NoError(t, err)
	_, err = b.RegisterPeer("a", "udp", a.LocalAddr().String())
	require.NoError(t, err)

	ctx := context.Background()
	a.Start(ctx)
	b.Start(ctx)
	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})

	b.SetCatchAll(func(m osc.Message, addr *net.UDPAddr) {
		if m.Address != "/sync" {
			return
		}
		reply, err := osc.NewMessage("/synced", m.Args[0])
		require.NoError(t, err)
		require.NoError(t, b.Send(reply, "a"))
	})

	got, err := a.Msg("/sync", []any{int32(42)}, "b", true, time.Second)
	require.NoError(t, err)
	require.Equal(t, "/synced", got.Address)
	require.Equal(t, osc.Int(42), got.Args[0])
}

func TestMsgWithoutReplyAddressFails(t *testing.T) {
	a, b := newLoopbackPair(t)
	_, err := a.Msg("/n_free", []any{int32(1)}, "b", true, time.Second)
	require.ErrorIs(t, err, ErrNoReplyAddress)
	_ = b
}

func TestSendAfterCloseFails(t *testing.T) {
	a, _ := newLoopbackPair(t)
	require.NoError(t, a.Close())

	m, err := osc.NewMessage("/status")
	require.NoError(t, err)
	err = a.Send(m, "b")
	require.ErrorIs(t, err, ErrClosed)
}
