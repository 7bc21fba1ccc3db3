package snet

// Open allocates the lowest-numbered free channel (1..15). It refuses
// while the engine is Disconnected: a link that has given up should not
// accept new work.
func (e *Engine) Open() (uint8, error) {
	if e.state == Disconnected {
		return 0, ErrDisconnected
	}
	return e.channels.AllocateLowestFree()
}

// Close drains both queues of id and releases the channel record.
func (e *Engine) Close(id uint8) error {
	if e.channels.Lookup(id) == nil {
		return ErrInvalidChannel
	}
	e.channels.Release(id)
	return nil
}

// Send appends a single chunk owning a copy of data to channel id's TX
// queue. It fails if the channel is not open, data is empty, or the
// enqueue would exceed the channel's TX capacity. A rejected Send makes no
// state change.
func (e *Engine) Send(id uint8, data []byte) error {
	if len(data) == 0 {
		return ErrInvalidLength
	}
	if e.channels.Lookup(id) == nil {
		return ErrChannelNotOpen
	}
	return e.channels.EnqueueTail(id, dirTx, data)
}

// Recv copies up to len(buf) bytes from channel id's RX queue head into
// buf, consuming them, and returns the number of bytes copied. It never
// blocks: an empty queue yields 0.
func (e *Engine) Recv(id uint8, buf []byte) int {
	out := e.channels.DequeueHead(id, dirRx, len(buf))
	copy(buf, out)
	return len(out)
}

// RecvAvail reports how many bytes are queued for channel id's RX side.
func (e *Engine) RecvAvail(id uint8) int {
	return e.channels.RecvAvail(id)
}

// SendQueued reports how many bytes remain queued (not yet emitted) on
// channel id's TX side.
func (e *Engine) SendQueued(id uint8) int {
	return e.channels.SendQueued(id)
}

// OpenChannels returns every currently open channel id, ascending.
func (e *Engine) OpenChannels() []uint8 {
	return e.channels.OpenIDs()
}

// Select is a non-blocking readiness query over every channel named in the
// want bitmasks (bit i ⇔ channel i), for hosts that want to poll many
// channels in one call instead of looping Recv/RecvAvail across all
// fifteen ids. A channel is read-ready when its RX queue is non-empty;
// write-ready when it exists and (if capacity-bounded) has room for at
// least one more byte.
func (e *Engine) Select(wantRead, wantWrite uint16) (readReady, writeReady uint16) {
	for id := uint8(1); id <= maxChannels; id++ {
		mask := uint16(1) << id
		c := e.channels.Lookup(id)
		if c == nil {
			continue
		}
		if wantRead&mask != 0 && c.rxBytes > 0 {
			readReady |= mask
		}
		if wantWrite&mask != 0 && (c.txCap == 0 || c.txBytes < c.txCap) {
			writeReady |= mask
		}
	}
	return readReady, writeReady
}
