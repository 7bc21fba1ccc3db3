package transport

import "time"

// Null is a snet.Platform that accepts every SendByte, never yields a
// PollByte, and advances its tick from wall-clock time. It lets squidd
// start and serve its HTTP/MCP surfaces in limited mode when no serial
// dongle is attached, instead of refusing to run at all.
type Null struct {
	started time.Time
}

// NewNull constructs a Null platform with its tick clock starting now.
func NewNull() *Null {
	return &Null{started: time.Now()}
}

func (n *Null) SendByte(b byte) error  { return nil }
func (n *Null) PollByte() (byte, bool) { return 0, false }
func (n *Null) Tick() uint8            { return uint8(time.Since(n.started) / TickQuantum) }
