package snet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTick is a shared, externally-advanced 8-bit wraparound clock, the Go
// analog of the reference test harness's shared fake_tick.
type fakeTick struct{ now uint8 }

func (f *fakeTick) advance() { f.now++ }

// pipePlatform is a Platform backed by two plain byte-slice queues: one it
// writes to (out), one it reads from (in). Wiring two pipePlatforms' out/in
// queues crosswise gives a lossless, instantaneous byte pipe between two
// engines, the same role the reference harness's wire_a2b/wire_b2a ring
// buffers play.
type pipePlatform struct {
	tick *fakeTick
	in   *[]byte
	out  *[]byte
}

func (p *pipePlatform) SendByte(b byte) error {
	*p.out = append(*p.out, b)
	return nil
}

func (p *pipePlatform) PollByte() (byte, bool) {
	if len(*p.in) == 0 {
		return 0, false
	}
	b := (*p.in)[0]
	*p.in = (*p.in)[1:]
	return b, true
}

func (p *pipePlatform) Tick() uint8 { return p.tick.now }

// newLinkedPair builds two engines connected by a lossless, shared-clock
// byte pipe in both directions.
func newLinkedPair(timing Timing) (a, b *Engine, clock *fakeTick) {
	clock = &fakeTick{}
	var wireA2B, wireB2A []byte

	platA := &pipePlatform{tick: clock, in: &wireB2A, out: &wireA2B}
	platB := &pipePlatform{tick: clock, in: &wireA2B, out: &wireB2A}

	a = NewEngine(platA, timing)
	b = NewEngine(platB, timing)
	return a, b, clock
}

// pump runs n bursts of both engines, advancing the shared clock once per
// round, mirroring the reference harness's pump(ticks).
func pump(a, b *Engine, clock *fakeTick, rounds int) {
	for i := 0; i < rounds; i++ {
		clock.advance()
		a.Burst()
		b.Burst()
	}
}

func scenarioTiming() Timing {
	return Timing{TimeoutTicks: 3, AckDelayTicks: 1, PingTicks: 0, MaxRetries: 5}
}

func Test_handshakeTermination(t *testing.T) {
	a, b, clock := newLinkedPair(scenarioTiming())
	pump(a, b, clock, 20)

	assert.True(t, a.LinkIsUp())
	assert.True(t, b.LinkIsUp())
	assert.Equal(t, Connected, a.state)
	assert.Equal(t, Connected, b.state)
}

func Test_singleMessage(t *testing.T) {
	a, b, clock := newLinkedPair(scenarioTiming())
	pump(a, b, clock, 20)

	idA, err := a.Open()
	require.NoError(t, err)
	idB, err := b.Open()
	require.NoError(t, err)
	require.Equal(t, uint8(1), idA)
	require.Equal(t, uint8(1), idB)

	require.NoError(t, a.Send(idA, []byte("HELLO")))

	pump(a, b, clock, 30)

	buf := make([]byte, 16)
	n := b.Recv(idB, buf)
	assert.Equal(t, 5, n)
	assert.Equal(t, "HELLO", string(buf[:n]))
}

func Test_bidirectional(t *testing.T) {
	a, b, clock := newLinkedPair(scenarioTiming())
	pump(a, b, clock, 20)

	idA, _ := a.Open()
	idB, _ := b.Open()

	require.NoError(t, a.Send(idA, []byte{'A', 'B'}))
	require.NoError(t, b.Send(idB, []byte{'B', 'A'}))

	pump(a, b, clock, 30)

	bufB := make([]byte, 16)
	n := b.Recv(idB, bufB)
	assert.Equal(t, []byte{'A', 'B'}, bufB[:n])

	bufA := make([]byte, 16)
	n = a.Recv(idA, bufA)
	assert.Equal(t, []byte{'B', 'A'}, bufA[:n])
}

func Test_fragmentedTransfer(t *testing.T) {
	a, b, clock := newLinkedPair(scenarioTiming())
	pump(a, b, clock, 20)

	idA, _ := a.Open()
	idB, _ := b.Open()

	payload := make([]byte, 100)
	for i := range payload {
		payload[i] = byte(i)
	}
	require.NoError(t, a.Send(idA, payload))

	pump(a, b, clock, 300)

	buf := make([]byte, 100)
	got := 0
	for got < 100 {
		n := b.Recv(idB, buf[got:])
		if n == 0 {
			break
		}
		got += n
	}
	require.Equal(t, 100, got)
	assert.Equal(t, payload, buf)
}

func Test_channelIsolation(t *testing.T) {
	a, b, clock := newLinkedPair(scenarioTiming())
	pump(a, b, clock, 20)

	idA1, _ := a.Open()
	idA2, _ := a.Open()
	idB1, _ := b.Open()
	idB2, _ := b.Open()
	require.Equal(t, idA1, idB1)
	require.Equal(t, idA2, idB2)

	require.NoError(t, a.Send(idA1, []byte{0x11, 0x22}))
	require.NoError(t, a.Send(idA2, []byte{0xAA, 0xBB, 0xCC}))

	pump(a, b, clock, 60)

	buf1 := make([]byte, 16)
	n1 := b.Recv(idB1, buf1)
	assert.Equal(t, []byte{0x11, 0x22}, buf1[:n1])

	buf2 := make([]byte, 16)
	n2 := b.Recv(idB2, buf2)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, buf2[:n2])
}

func Test_maxSockets(t *testing.T) {
	a, _, _ := newLinkedPair(scenarioTiming())

	var ids []uint8
	for i := 0; i < 15; i++ {
		id, err := a.Open()
		require.NoError(t, err)
		ids = append(ids, id)
	}

	_, err := a.Open()
	assert.Error(t, err)

	for _, id := range ids {
		require.NoError(t, a.Close(id))
	}

	id, err := a.Open()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), id)
}

func Test_retryBoundUnderTotalLoss(t *testing.T) {
	timing := Timing{TimeoutTicks: 3, AckDelayTicks: 1, PingTicks: 0, MaxRetries: 5}
	clock := &fakeTick{}

	var blackhole []byte
	var nowhere []byte
	plat := &pipePlatform{tick: clock, in: &blackhole, out: &nowhere}
	a := NewEngine(plat, timing)

	// Drive the handshake artificially: a Startup engine with nothing ever
	// replying will retry forever, so force it straight to Connected to
	// isolate the Waiting/Disconnected retry-bound behavior under total
	// loss, matching the scenario's framing ("after the handshake").
	a.enterConnected()

	id, err := a.Open()
	require.NoError(t, err)
	require.NoError(t, a.Send(id, []byte("x")))

	for i := 0; i < 400 && a.state != Disconnected; i++ {
		clock.advance()
		a.Burst()
	}

	assert.Equal(t, Disconnected, a.state)
	assert.Equal(t, uint64(timing.MaxRetries+1), a.stats.Resends+1)
}

func Test_duplicateSuppression(t *testing.T) {
	clock := &fakeTick{}
	var in []byte
	var out []byte
	plat := &pipePlatform{tick: clock, in: &in, out: &out}
	b := NewEngine(plat, scenarioTiming())
	b.enterConnected()

	id, err := b.Open()
	require.NoError(t, err)

	frame, err := Build(TypeData, StatusACK, 0, id, []byte("x"))
	require.NoError(t, err)

	// Deliver the same DATA frame twice, as if a resend raced with our ACK.
	in = append(in, frame[:]...)
	clock.advance()
	b.Burst()

	in = append(in, frame[:]...)
	clock.advance()
	b.Burst()

	assert.Equal(t, uint8(1), b.seqExpect)
	assert.Equal(t, uint64(1), b.stats.Duplicates)

	buf := make([]byte, 16)
	n := b.Recv(id, buf)
	assert.Equal(t, 1, n)
	assert.Equal(t, byte('x'), buf[0])

	n = b.Recv(id, buf)
	assert.Equal(t, 0, n)
}

func Test_capacityHonored(t *testing.T) {
	a, _, _ := newLinkedPair(scenarioTiming())
	id, err := a.Open()
	require.NoError(t, err)

	a.channels.byID[id].txCap = 4

	require.NoError(t, a.Send(id, []byte("ab")))
	err = a.Send(id, []byte("abc"))
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	require.NoError(t, a.Send(id, []byte("cd")))
}

func Test_sendRejectsZeroLength(t *testing.T) {
	a, _, _ := newLinkedPair(scenarioTiming())
	id, err := a.Open()
	require.NoError(t, err)

	err = a.Send(id, nil)
	assert.ErrorIs(t, err, ErrInvalidLength)
	assert.Equal(t, 0, a.SendQueued(id))

	err = a.Send(id, []byte{})
	assert.ErrorIs(t, err, ErrInvalidLength)
	assert.Equal(t, 0, a.SendQueued(id))
}

func Test_stopAndWaitSingleOutstandingFrame(t *testing.T) {
	a, b, clock := newLinkedPair(scenarioTiming())
	pump(a, b, clock, 20)

	id, _ := a.Open()
	_, _ = b.Open()

	require.NoError(t, a.Send(id, []byte("12345678901234567890")))

	txBefore := a.stats.TxFrames
	// One burst round can emit at most one DATA frame even though more
	// than 15 bytes remain queued.
	clock.advance()
	a.Burst()
	b.Burst()
	assert.LessOrEqual(t, a.stats.TxFrames-txBefore, uint64(1))
}
