package transport

// Loopback is a snet.Platform backed by a pair of in-memory byte queues.
// NewLoopbackPair wires two instances crosswise so bytes sent by one are
// polled by the other, with a shared tick counter both sides
// advance together.
type Loopback struct {
	clock *sharedClock
	in    *[]byte
	out   *[]byte
}

type sharedClock struct{ now uint8 }

// NewLoopbackPair returns two Platforms, A and B, connected by lossless
// byte pipes in both directions and sharing one tick counter.
func NewLoopbackPair() (a, b *Loopback) {
	clock := &sharedClock{}
	var a2b, b2a []byte
	a = &Loopback{clock: clock, in: &b2a, out: &a2b}
	b = &Loopback{clock: clock, in: &a2b, out: &b2a}
	return a, b
}

// Advance moves the shared clock forward by one tick. Both Loopback
// endpoints of a pair observe the same tick value.
func (l *Loopback) Advance() { l.clock.now++ }

func (l *Loopback) SendByte(b byte) error {
	*l.out = append(*l.out, b)
	return nil
}

func (l *Loopback) PollByte() (byte, bool) {
	if len(*l.in) == 0 {
		return 0, false
	}
	b := (*l.in)[0]
	*l.in = (*l.in)[1:]
	return b, true
}

func (l *Loopback) Tick() uint8 { return l.clock.now }
