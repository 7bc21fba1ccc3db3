package snet

// Platform is the set of transport hooks the engine requires from its
// host: push one byte out, pull one byte in (or report none available),
// and read an 8-bit wraparound tick counter. Allocation is left to Go's
// runtime (see channel.go) rather than threaded through as function
// pointers, since that concern does not translate usefully to a managed
// runtime — see DESIGN.md.
//
// Implementations must never block: PollByte returns ok=false immediately
// when no byte is ready, and SendByte is expected to be a buffered/
// non-blocking write from the engine's point of view.
type Platform interface {
	// SendByte pushes one byte to the wire. An error is non-fatal to the
	// engine: it proceeds and the peer's assembler will resynchronize on
	// the next STX if the byte was lost or corrupted in transit.
	SendByte(b byte) error

	// PollByte returns the next byte waiting on the wire, or ok=false if
	// none is currently available.
	PollByte() (b byte, ok bool)

	// Tick returns the current value of an 8-bit monotonic counter that
	// may wrap. All engine timing arithmetic is done modulo 256.
	Tick() uint8
}
