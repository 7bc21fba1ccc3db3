package snet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_allocateLowestFreeAndMaxSockets(t *testing.T) {
	s := newChannelStore()
	for want := uint8(1); want <= maxChannels; want++ {
		id, err := s.AllocateLowestFree()
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	_, err := s.AllocateLowestFree()
	assert.ErrorIs(t, err, ErrNoFreeChannel)

	s.Release(7)
	id, err := s.AllocateLowestFree()
	require.NoError(t, err)
	assert.Equal(t, uint8(7), id)
}

func Test_releaseThenReallocateReturnsOne(t *testing.T) {
	s := newChannelStore()
	for i := 0; i < maxChannels; i++ {
		_, err := s.AllocateLowestFree()
		require.NoError(t, err)
	}
	for id := uint8(1); id <= maxChannels; id++ {
		s.Release(id)
	}
	id, err := s.AllocateLowestFree()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), id)
}

func Test_enqueueDequeueByteFidelity(t *testing.T) {
	s := newChannelStore()
	id, err := s.AllocateLowestFree()
	require.NoError(t, err)

	require.NoError(t, s.EnqueueTail(id, dirTx, []byte("hello, ")))
	require.NoError(t, s.EnqueueTail(id, dirTx, []byte("world")))

	assert.Equal(t, 12, s.byID[id].txBytes)

	out := s.DequeueHead(id, dirTx, 5)
	assert.Equal(t, []byte("hello"), out)
	assert.Equal(t, 7, s.byID[id].txBytes)

	rest := s.DequeueHead(id, dirTx, 100)
	assert.Equal(t, []byte(", world"), rest)
	assert.Equal(t, 0, s.byID[id].txBytes)
}

func Test_enqueueTailHonorsCapacity(t *testing.T) {
	s := newChannelStore()
	id, err := s.AllocateLowestFree()
	require.NoError(t, err)
	s.byID[id].txCap = 4

	require.NoError(t, s.EnqueueTail(id, dirTx, []byte("ab")))
	err = s.EnqueueTail(id, dirTx, []byte("abc"))
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	require.NoError(t, s.EnqueueTail(id, dirTx, []byte("cd")))
	assert.Equal(t, 4, s.byID[id].txBytes)
}

func Test_enqueueTailUnknownChannel(t *testing.T) {
	s := newChannelStore()
	err := s.EnqueueTail(9, dirTx, []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidChannel)
}

func Test_nextTxReadyRoundRobinSkipsChannelZeroAndEmpty(t *testing.T) {
	s := newChannelStore()
	id1, _ := s.AllocateLowestFree() // 1
	id2, _ := s.AllocateLowestFree() // 2
	id3, _ := s.AllocateLowestFree() // 3

	require.NoError(t, s.EnqueueTail(id1, dirTx, []byte("a")))
	require.NoError(t, s.EnqueueTail(id3, dirTx, []byte("c")))

	got, ok := s.NextTxReady(0)
	require.True(t, ok)
	assert.Equal(t, id1, got)

	got, ok = s.NextTxReady(id1)
	require.True(t, ok)
	assert.Equal(t, id3, got)

	require.NoError(t, s.EnqueueTail(id2, dirTx, []byte("b")))
	got, ok = s.NextTxReady(id3)
	require.True(t, ok)
	assert.Equal(t, id1, got) // wraps past 16 back to 1

	_, ok = s.NextTxReady(15)
	assert.True(t, ok)
}

func Test_nextTxReadyNoneWhenAllEmpty(t *testing.T) {
	s := newChannelStore()
	_, err := s.AllocateLowestFree()
	require.NoError(t, err)

	_, ok := s.NextTxReady(0)
	assert.False(t, ok)
}

func Test_recvAvailAndSendQueued(t *testing.T) {
	s := newChannelStore()
	id, err := s.AllocateLowestFree()
	require.NoError(t, err)

	assert.Equal(t, 0, s.RecvAvail(id))
	assert.Equal(t, 0, s.SendQueued(id))

	require.NoError(t, s.EnqueueTail(id, dirTx, []byte("abc")))
	require.NoError(t, s.EnqueueTail(id, dirRx, []byte("de")))

	assert.Equal(t, 3, s.SendQueued(id))
	assert.Equal(t, 2, s.RecvAvail(id))

	assert.Equal(t, 0, s.RecvAvail(99))
	assert.Equal(t, 0, s.SendQueued(99))
}
