package snet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// byteFeeder turns a []byte into the poll func pump expects.
func byteFeeder(b []byte) func() (byte, bool) {
	i := 0
	return func() (byte, bool) {
		if i >= len(b) {
			return 0, false
		}
		v := b[i]
		i++
		return v, true
	}
}

func Test_assemblerResynchronizesAfterGarbage(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		garbage := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "garbage")
		// Strip any accidental STX from the garbage tail so it can't be
		// mistaken for the start of the real frame.
		for i := range garbage {
			if garbage[i] == stx {
				garbage[i] = stx + 1
			}
		}

		payload := rapid.SliceOfN(rapid.Byte(), 0, PayloadMax).Draw(t, "payload")
		frame, err := Build(TypeData, StatusACK, 0, 5, payload)
		require.NoError(t, err)

		stream := append(append([]byte{}, garbage...), frame[:]...)

		a := &assembler{}
		poll := byteFeeder(stream)

		var got Frame
		var found bool
		for i := 0; i < len(stream)+1; i++ {
			f, result := a.pump(poll)
			if result == pumpFrame {
				got = f
				found = true
				break
			}
			if result == pumpNone {
				break
			}
		}

		require.True(t, found, "expected the valid frame to eventually be recovered")
		assert.Equal(t, uint8(5), got.Channel)
		assert.Equal(t, payload, got.PayloadSlice())
	})
}

func Test_assemblerDropsCorruptFrameAndResyncs(t *testing.T) {
	good, err := Build(TypeData, StatusACK, 1, 2, []byte("ok"))
	require.NoError(t, err)

	corrupt := good
	corrupt[posHash] ^= 0xFF

	stream := append(append([]byte{}, corrupt[:]...), good[:]...)
	a := &assembler{}
	poll := byteFeeder(stream)

	f1, r1 := a.pump(poll)
	assert.Equal(t, pumpBadFrame, r1)
	assert.Equal(t, Frame{}, f1)

	f2, r2 := a.pump(poll)
	assert.Equal(t, pumpFrame, r2)
	assert.Equal(t, uint8(2), f2.Channel)
}

func Test_assemblerReturnsNoneWhenStarved(t *testing.T) {
	a := &assembler{}
	f, r := a.pump(byteFeeder(nil))
	assert.Equal(t, pumpNone, r)
	assert.Equal(t, Frame{}, f)
}
