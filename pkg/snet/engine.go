package snet

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// State is one of the four engine states.
type State uint8

const (
	Startup State = iota
	Waiting
	Connected
	Disconnected
)

func (s State) String() string {
	switch s {
	case Startup:
		return "STARTUP"
	case Waiting:
		return "WAITING"
	case Connected:
		return "CONNECTED"
	case Disconnected:
		return "DISCONNECTED"
	default:
		return "UNKNOWN"
	}
}

// Timing holds all tick-denominated parameters. Zero values for
// TimeoutTicks, AckDelayTicks and MaxRetries are replaced with their
// defaults by NewEngine; PingTicks of zero disables keepalive and has no
// forced default.
type Timing struct {
	TimeoutTicks  uint8
	AckDelayTicks uint8
	PingTicks     uint8
	MaxRetries    uint8
}

// DefaultTiming returns the documented default timing parameters.
func DefaultTiming() Timing {
	return Timing{TimeoutTicks: 6, AckDelayTicks: 2, PingTicks: 0, MaxRetries: 3}
}

func (t Timing) withDefaults() Timing {
	if t.TimeoutTicks == 0 {
		t.TimeoutTicks = 6
	}
	if t.AckDelayTicks == 0 {
		t.AckDelayTicks = 2
	}
	if t.MaxRetries == 0 {
		t.MaxRetries = 3
	}
	return t
}

// Stats are the engine's liveness counters, a value-copy snapshot safe to
// read under the host's mutex.
type Stats struct {
	RxFrames   uint64
	TxFrames   uint64
	CRCErrors  uint64
	Duplicates uint64
	Drops      uint64
	Timeouts   uint64
	Resends    uint64
}

// Engine is one endpoint of the link. It has no internal locking: it is a
// single-threaded-cooperative state machine, so the host must serialize
// all calls (Init, Open, Close, Send, Recv, Burst) against one another.
type Engine struct {
	plat   Platform
	timing Timing
	log    zerolog.Logger

	asm *assembler

	state      State
	seqTx      uint8
	seqExpect  uint8
	retries    uint8
	lastTxTick uint8
	lastPing   uint8
	ackNeeded  bool
	ackWait    uint8

	lastSent [FrameBytes]byte

	channels *channelStore

	stats Stats
}

// NewEngine constructs an engine bound to plat and timing (defaults applied
// for zero TimeoutTicks/AckDelayTicks/MaxRetries), ready for Init.
func NewEngine(plat Platform, timing Timing) *Engine {
	e := &Engine{
		plat:   plat,
		timing: timing.withDefaults(),
		log:    log.Logger,
		asm:    &assembler{},
	}
	e.Init()
	return e
}

// WithLogger attaches a sub-logger (e.g. one tagged with a "side" field so
// two engines in the same test can be told apart in output).
func (e *Engine) WithLogger(l zerolog.Logger) *Engine {
	e.log = l
	return e
}

// Init (re-)initializes the engine: drains any prior channels, resets all
// state machine fields, and enters Startup. It may be called again later to
// force a clean restart.
func (e *Engine) Init() {
	if e.channels == nil {
		e.channels = newChannelStore()
	} else {
		e.channels.reset()
	}
	e.state = Startup
	e.seqTx = 0
	e.seqExpect = 0
	e.retries = 0
	e.lastTxTick = e.plat.Tick()
	e.lastPing = e.lastTxTick
	e.ackNeeded = false
	e.ackWait = 0
	e.stats = Stats{}
}

// LinkIsUp reports whether the engine considers the link usable. Per the
// resolved open question (see DESIGN.md), this mirrors the original
// library exactly: true iff the state is Connected. Waiting is treated as
// "a DATA exchange is outstanding on an otherwise healthy link", not as
// link-down, but it is also not reported as up — callers polling LinkIsUp
// during a send should expect brief false readings while an ACK is
// in flight.
func (e *Engine) LinkIsUp() bool {
	return e.state == Connected
}

// Stats returns a snapshot of the engine's counters.
func (e *Engine) Stats() Stats {
	return e.stats
}

// elapsed computes wraparound-safe tick deltas: (now - since) mod 256.
func elapsed(now, since uint8) uint8 {
	return now - since
}

// Burst runs one RX step (draining the transport, dispatching at most one
// frame) followed by one TX step (emitting at most one frame). It is never
// re-entrant; the host must not call it concurrently with itself or any
// other Engine method.
func (e *Engine) Burst() {
	now := e.plat.Tick()
	e.rx(now)
	e.tx(now)
}

// rx drains available bytes into the assembler and dispatches at most one
// completed, validated frame into the state machine.
func (e *Engine) rx(now uint8) {
	for {
		frame, result := e.asm.pump(e.plat.PollByte)
		switch result {
		case pumpNone:
			return
		case pumpBadFrame:
			e.stats.CRCErrors++
			continue
		case pumpFrame:
			e.stats.RxFrames++
			e.dispatch(frame, now)
			return
		}
	}
}

// dispatch routes a validated inbound frame per the current state, exactly
// as the RX switch described in §4.4.
func (e *Engine) dispatch(f Frame, now uint8) {
	switch e.state {
	case Startup:
		e.dispatchStartup(f, now)
	case Connected:
		e.dispatchConnected(f, now)
	case Waiting:
		e.dispatchWaiting(f, now)
	case Disconnected:
		// RX is ignored entirely while disconnected.
	}
}

func (e *Engine) dispatchStartup(f Frame, now uint8) {
	switch f.Type {
	case TypeHello:
		e.sendHelloAck(now)
		e.enterConnected()
	case TypeHelloAck:
		e.enterConnected()
	}
}

func (e *Engine) enterConnected() {
	e.state = Connected
	e.seqTx = 0
	e.seqExpect = 0
	e.retries = 0
}

func (e *Engine) dispatchConnected(f Frame, now uint8) {
	switch f.Type {
	case TypeData:
		e.acceptData(f, now)
	case TypeAck:
		// no outstanding DATA in Connected: nothing to acknowledge.
	case TypePing:
		e.ackNeeded = true
		e.ackWait = now
	case TypeHello:
		e.log.Debug().Msg("peer restarted, returning to startup")
		e.state = Startup
		e.seqTx = 0
		e.seqExpect = 0
		e.retries = 0
	}
}

func (e *Engine) dispatchWaiting(f Frame, now uint8) {
	if f.Type == TypeHello {
		e.log.Debug().Msg("peer restarted while waiting, returning to startup")
		e.state = Startup
		e.seqTx = 0
		e.seqExpect = 0
		e.retries = 0
		return
	}

	isPositiveAck := f.Status == StatusACK && (f.Type == TypeAck || f.Type == TypeData)
	if isPositiveAck {
		e.seqTx ^= 1
		e.retries = 0
		e.state = Connected
	}

	if f.Type == TypeData {
		if f.Seq == e.seqExpect {
			e.acceptData(f, now)
		} else {
			e.stats.Duplicates++
			e.ackNeeded = true
			e.ackWait = now
		}
	}
}

// acceptData accepts a DATA frame's payload per the duplicate-suppression
// and drop rules of §4.4/§7. The caller is responsible for any state
// transition; this only updates sequence tracking, channel queues, and the
// pending-ACK flag.
func (e *Engine) acceptData(f Frame, now uint8) {
	if f.Seq != e.seqExpect {
		e.stats.Duplicates++
		e.ackNeeded = true
		e.ackWait = now
		return
	}

	if f.Channel != ChannelSys && f.Length > 0 {
		if err := e.channels.EnqueueTail(f.Channel, dirRx, f.PayloadSlice()); err != nil {
			e.stats.Drops++
		}
	}

	e.seqExpect ^= 1
	e.ackNeeded = true
	e.ackWait = now
}

func (e *Engine) sendHelloAck(now uint8) {
	frame, err := Build(TypeHelloAck, StatusACK, 0, ChannelSys, nil)
	if err != nil {
		return
	}
	emitFrame(e.plat, frame, e)
}

// tx evaluates the current state's TX rules and emits at most one frame.
func (e *Engine) tx(now uint8) {
	switch e.state {
	case Startup:
		e.txStartup(now)
	case Connected:
		e.txConnected(now)
	case Waiting:
		e.txWaiting(now)
	case Disconnected:
		e.txDisconnected(now)
	}
}

func (e *Engine) txStartup(now uint8) {
	if elapsed(now, e.lastTxTick) < e.timing.TimeoutTicks {
		return
	}
	e.retries++
	if e.retries > e.timing.MaxRetries {
		e.log.Warn().Uint8("retries", e.retries).Msg("handshake failed, disconnecting")
		e.state = Disconnected
		e.lastTxTick = now
		return
	}
	frame, err := Build(TypeHello, StatusACK, 0, ChannelSys, nil)
	if err != nil {
		return
	}
	emitFrame(e.plat, frame, e)
}

func (e *Engine) txConnected(now uint8) {
	if e.ackNeeded && elapsed(now, e.ackWait) >= e.timing.AckDelayTicks {
		if id, ok := e.channels.NextTxReady(e.channels.rrCursor); ok {
			e.emitData(id, now)
			e.ackNeeded = false
			return
		}
		frame, err := Build(TypeAck, StatusACK, 0, ChannelSys, nil)
		if err == nil {
			emitFrame(e.plat, frame, e)
		}
		e.ackNeeded = false
		return
	}

	if id, ok := e.channels.NextTxReady(e.channels.rrCursor); ok {
		e.emitData(id, now)
		return
	}

	if e.timing.PingTicks > 0 && elapsed(now, e.lastPing) >= e.timing.PingTicks {
		frame, err := Build(TypePing, StatusACK, 0, ChannelSys, nil)
		if err == nil {
			emitFrame(e.plat, frame, e)
		}
		e.lastPing = now
	}
}

func (e *Engine) txWaiting(now uint8) {
	if elapsed(now, e.lastTxTick) < e.timing.TimeoutTicks {
		return
	}
	e.retries++
	e.stats.Timeouts++
	if e.retries > e.timing.MaxRetries {
		e.log.Warn().Uint8("retries", e.retries).Msg("retry budget exhausted, disconnecting")
		e.state = Disconnected
		e.lastTxTick = now
		return
	}
	emitFrame(e.plat, e.lastSent, e)
	e.stats.Resends++
}

func (e *Engine) txDisconnected(now uint8) {
	if elapsed(now, e.lastTxTick) < e.timing.TimeoutTicks {
		return
	}
	e.state = Startup
	e.retries = 0
	e.seqTx = 0
	e.seqExpect = 0
	e.lastTxTick = now
}

// emitData dequeues up to PayloadMax bytes from channel id and sends a DATA
// frame, transitioning to Waiting as the new outstanding frame.
func (e *Engine) emitData(id uint8, now uint8) {
	payload := e.channels.DequeueHead(id, dirTx, PayloadMax)
	frame, err := Build(TypeData, StatusACK, e.seqTx, id, payload)
	if err != nil {
		return
	}
	emitFrame(e.plat, frame, e)
	e.state = Waiting
}
