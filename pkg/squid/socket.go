// Package squid is the multiplexed socket-like façade over pkg/snet. It
// adds nothing to the wire protocol; every ordering and delivery guarantee
// comes from the engine and its channel store. Its only job is to wrap
// every entry point in a single mutex so HTTP handlers and MCP tool calls
// (which run on arbitrary goroutines) can share one link safely, per the
// engine's single-threaded-cooperative contract.
package squid

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/retro-plastics/squid/pkg/snet"
)

// ErrInvalidChannel re-exports snet's sentinel so callers of this package
// never need to import pkg/snet just to compare errors.
var ErrInvalidChannel = snet.ErrInvalidChannel

// ErrChannelClosed is returned by Send on an id that is not open. Close on
// such an id returns ErrInvalidChannel; Recv returns 0.
var ErrChannelClosed = snet.ErrChannelNotOpen

// ErrCapacityExceeded re-exports snet's capacity sentinel.
var ErrCapacityExceeded = snet.ErrCapacityExceeded

// ErrInvalidLength re-exports snet's zero-length-send sentinel.
var ErrInvalidLength = snet.ErrInvalidLength

// Conn is one mutex-guarded link endpoint: an engine plus the lock that
// serializes every call into it.
type Conn struct {
	mu     sync.Mutex
	engine *snet.Engine
}

// Open wraps an already-constructed engine (bound to a Platform and Timing
// by the caller) in a Conn.
func Open(engine *snet.Engine) *Conn {
	return &Conn{engine: engine}
}

// NewConn constructs the engine itself and wraps it, the common case for a
// host that owns exactly one link.
func NewConn(plat snet.Platform, timing snet.Timing) *Conn {
	return &Conn{engine: snet.NewEngine(plat, timing)}
}

// WithLogger attaches a sub-logger to the underlying engine.
func (c *Conn) WithLogger(l zerolog.Logger) *Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.WithLogger(l)
	return c
}

// Burst serializes one orchestrator step against every other Conn call.
func (c *Conn) Burst() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.Burst()
}

// OpenChannel allocates a new channel, returning its id (1..15).
func (c *Conn) OpenChannel() (uint8, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Open()
}

// CloseChannel releases a channel and drains its queues.
func (c *Conn) CloseChannel(id uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Close(id)
}

// Send enqueues data for transmission on channel id.
func (c *Conn) Send(id uint8, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Send(id, data)
}

// Recv copies up to len(buf) received bytes from channel id into buf.
func (c *Conn) Recv(id uint8, buf []byte) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Recv(id, buf)
}

// RecvAvail reports how many bytes are queued for channel id's RX side.
func (c *Conn) RecvAvail(id uint8) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.RecvAvail(id)
}

// SendQueued reports how many bytes remain queued on channel id's TX side,
// restoring the original library's squid_send_queued.
func (c *Conn) SendQueued(id uint8) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.SendQueued(id)
}

// Select restores the original library's squid_select: a non-blocking
// readiness query across every channel named in the want bitmasks.
func (c *Conn) Select(wantRead, wantWrite uint16) (readReady, writeReady uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Select(wantRead, wantWrite)
}

// OpenChannels returns every currently open channel id, ascending.
func (c *Conn) OpenChannels() []uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.OpenChannels()
}

// LinkIsUp reports whether the underlying engine is Connected.
func (c *Conn) LinkIsUp() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.LinkIsUp()
}

// Stats restores the original library's squid_stats_get as a value-copy
// snapshot safe to read without further locking.
func (c *Conn) Stats() snet.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Stats()
}

// Reset re-initializes the underlying engine, draining all channels.
func (c *Conn) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.Init()
}
