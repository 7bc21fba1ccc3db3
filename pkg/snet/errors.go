package snet

import "fmt"

// ErrNotInitialized names the "engine never initialized" misuse case. No
// current entry point returns it: NewEngine always calls Init before
// returning, and the Engine methods do not check whether Init has run.
var ErrNotInitialized = fmt.Errorf("snet: engine not initialized")

// ErrDisconnected is returned by Open when the engine is in the
// Disconnected state.
var ErrDisconnected = fmt.Errorf("snet: engine disconnected")

// ErrInvalidChannel is returned when an operation names a channel id that
// is out of range or has no live record.
var ErrInvalidChannel = fmt.Errorf("snet: invalid channel")

// ErrChannelNotOpen is returned by Send when the channel id was never
// opened (or was already closed). Recv reports no error; it returns 0.
var ErrChannelNotOpen = fmt.Errorf("snet: channel not open")

// ErrInvalidLength is returned by Send when called with a zero-length
// payload: user API misuse per spec, not a state change.
var ErrInvalidLength = fmt.Errorf("snet: invalid send length")
