package snet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func Test_frameRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		typ := Type(rapid.IntRange(0, 4).Draw(t, "type"))
		status := Status(rapid.IntRange(0, 1).Draw(t, "status"))
		seq := uint8(rapid.IntRange(0, 1).Draw(t, "seq"))
		channel := uint8(rapid.IntRange(0, 15).Draw(t, "channel"))
		payload := rapid.SliceOfN(rapid.Byte(), 0, PayloadMax).Draw(t, "payload")

		buf, err := Build(typ, status, seq, channel, payload)
		require.NoError(t, err)

		require.NoError(t, Validate(buf[:]))
		got := Decode(buf[:])

		assert.Equal(t, typ, got.Type)
		assert.Equal(t, status, got.Status)
		assert.Equal(t, seq, got.Seq)
		assert.Equal(t, channel, got.Channel)
		assert.Equal(t, len(payload), int(got.Length))
		assert.Equal(t, payload, got.PayloadSlice())
	})
}

func Test_buildRejectsOversizePayload(t *testing.T) {
	_, err := Build(TypeData, StatusACK, 0, 1, make([]byte, PayloadMax+1))
	assert.ErrorIs(t, err, ErrEncodePayloadTooLong)
}

func Test_checksumRejection(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		payload := rapid.SliceOfN(rapid.Byte(), 0, PayloadMax).Draw(t, "payload")
		buf, err := Build(TypeData, StatusACK, 0, 3, payload)
		require.NoError(t, err)
		require.NoError(t, Validate(buf[:]))

		bit := rapid.IntRange(0, 7).Draw(t, "bit")
		idx := rapid.IntRange(1, posHash).Draw(t, "byteIndex") // bytes 1..18 inclusive

		flipped := buf
		flipped[idx] ^= 1 << bit

		assert.Error(t, Validate(flipped[:]))
	})
}

func Test_validateRejectsBadSentinels(t *testing.T) {
	buf, err := Build(TypeData, StatusACK, 0, 1, []byte("hi"))
	require.NoError(t, err)

	bad := buf
	bad[posSTX] = 0x00
	assert.ErrorIs(t, Validate(bad[:]), ErrBadSentinel)

	bad = buf
	bad[posETX] = 0x00
	assert.ErrorIs(t, Validate(bad[:]), ErrBadSentinel)

	assert.ErrorIs(t, Validate(buf[:FrameBytes-1]), ErrBadSentinel)
}

func Test_typeString(t *testing.T) {
	assert.Equal(t, "PING", TypePing.String())
	assert.Equal(t, "DATA", TypeData.String())
	assert.Equal(t, "ACK", TypeAck.String())
	assert.Equal(t, "HELLO", TypeHello.String())
	assert.Equal(t, "HELLO_ACK", TypeHelloAck.String())
	assert.Contains(t, Type(7).String(), "TYPE")
}
