package squid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retro-plastics/squid/pkg/snet"
	"github.com/retro-plastics/squid/pkg/squid"
	"github.com/retro-plastics/squid/pkg/transport"
)

func timing() snet.Timing {
	return snet.Timing{TimeoutTicks: 3, AckDelayTicks: 1, PingTicks: 0, MaxRetries: 5}
}

func Test_connSingleMessageOverLoopback(t *testing.T) {
	platA, platB := transport.NewLoopbackPair()
	a := squid.NewConn(platA, timing())
	b := squid.NewConn(platB, timing())

	for i := 0; i < 20; i++ {
		platA.Advance()
		a.Burst()
		b.Burst()
	}
	require.True(t, a.LinkIsUp())
	require.True(t, b.LinkIsUp())

	idA, err := a.OpenChannel()
	require.NoError(t, err)
	idB, err := b.OpenChannel()
	require.NoError(t, err)
	require.Equal(t, idA, idB)

	require.NoError(t, a.Send(idA, []byte("ping")))
	for i := 0; i < 30; i++ {
		platA.Advance()
		a.Burst()
		b.Burst()
	}

	buf := make([]byte, 16)
	n := b.Recv(idB, buf)
	assert.Equal(t, "ping", string(buf[:n]))
}

func Test_connMaxSocketsAndStats(t *testing.T) {
	platA, _ := transport.NewLoopbackPair()
	a := squid.NewConn(platA, timing())

	for i := 0; i < 15; i++ {
		_, err := a.OpenChannel()
		require.NoError(t, err)
	}
	_, err := a.OpenChannel()
	assert.Error(t, err)

	stats := a.Stats()
	assert.Equal(t, uint64(0), stats.CRCErrors)
}

func Test_connSelectAndQueuedHelpers(t *testing.T) {
	platA, _ := transport.NewLoopbackPair()
	a := squid.NewConn(platA, timing())

	id, err := a.OpenChannel()
	require.NoError(t, err)

	require.NoError(t, a.Send(id, []byte("abc")))
	assert.Equal(t, 3, a.SendQueued(id))

	readReady, writeReady := a.Select(1<<id, 1<<id)
	assert.Equal(t, uint16(0), readReady)
	assert.Equal(t, uint16(1)<<id, writeReady)
}

func Test_connSendRejectsZeroLength(t *testing.T) {
	platA, _ := transport.NewLoopbackPair()
	a := squid.NewConn(platA, timing())

	id, err := a.OpenChannel()
	require.NoError(t, err)

	err = a.Send(id, nil)
	assert.ErrorIs(t, err, squid.ErrInvalidLength)
}
