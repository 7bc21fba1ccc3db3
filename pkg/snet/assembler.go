package snet

// assembler reassembles the byte stream pulled from a Platform into
// candidate frames, resynchronizing on STX after any garbage or failed
// frame. It emits at most one valid Frame per Pump call: at most one
// complete frame per burst.
type assembler struct {
	buf [FrameBytes]byte
	pos int
}

// pumpResult distinguishes "no frame yet" from "frame decoded" without
// allocating, so callers can also observe CRC/sentinel failures for stats.
type pumpResult int

const (
	pumpNone pumpResult = iota
	pumpFrame
	pumpBadFrame
)

// pump drains bytes from poll until either no more bytes are available or
// one candidate frame has been fully read. While resynchronizing (pos==0)
// bytes that are not STX are silently discarded. A fully read candidate is
// validated; on failure it is dropped (pumpBadFrame) and the assembler
// resets to resynchronize on the next STX. On success the decoded frame is
// returned (pumpFrame).
func (a *assembler) pump(poll func() (byte, bool)) (Frame, pumpResult) {
	for {
		b, ok := poll()
		if !ok {
			return Frame{}, pumpNone
		}

		if a.pos == 0 {
			if b != stx {
				continue // resynchronizing: discard garbage
			}
			a.buf[a.pos] = b
			a.pos++
			continue
		}

		a.buf[a.pos] = b
		a.pos++

		if a.pos < FrameBytes {
			continue
		}

		// Full candidate frame assembled; reset cursor regardless of outcome.
		a.pos = 0

		if err := Validate(a.buf[:]); err != nil {
			return Frame{}, pumpBadFrame
		}
		return Decode(a.buf[:]), pumpFrame
	}
}

// emitFrame writes the encoded bytes of frame through plat. Per §3's
// invariant ("last_sent is overwritten by every emitted frame"), every
// call updates lastSent/lastTxTick, not just DATA emissions; a retransmit
// is simply emitFrame re-invoked with the bytes already sitting in
// lastSent.
func emitFrame(plat Platform, frame [FrameBytes]byte, e *Engine) {
	for _, b := range frame {
		// Transport send failures are non-fatal: the peer's assembler
		// resynchronizes on the next STX if bytes were lost in transit.
		_ = plat.SendByte(b)
	}
	e.stats.TxFrames++
	e.lastSent = frame
	e.lastTxTick = plat.Tick()
}
