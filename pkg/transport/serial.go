// Package transport supplies concrete snet.Platform implementations: a
// real UART link and an in-memory loopback pipe for tests and local demos.
package transport

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

// TickQuantum is the wall-clock duration one engine tick represents on a
// real serial link. 10ms gives a 2.56s wraparound window, comfortably
// above any sane timeout_ticks/ack_delay_ticks configuration.
const TickQuantum = 10 * time.Millisecond

// Serial is a snet.Platform backed by a real UART: fixed 8N1 framing, RTS
// asserted for flow control.
type Serial struct {
	port    serial.Port
	rx      chan byte
	started time.Time
	done    chan struct{}
}

// OpenSerial opens portPath at baud, 8N1, and starts the background reader
// goroutine that feeds PollByte.
func OpenSerial(portPath string, baud int) (*Serial, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portPath, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portPath, err)
	}
	if err := port.SetRTS(true); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("set RTS: %w", err)
	}

	log.Info().Str("port", portPath).Int("baud", baud).Msg("serial link opened")

	s := &Serial{
		port:    port,
		rx:      make(chan byte, 256),
		started: time.Now(),
		done:    make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

func (s *Serial) readLoop() {
	buf := make([]byte, 1)
	for {
		select {
		case <-s.done:
			return
		default:
		}
		n, err := s.port.Read(buf)
		if err != nil {
			log.Debug().Err(err).Msg("serial read loop exiting")
			return
		}
		if n == 0 {
			continue
		}
		select {
		case s.rx <- buf[0]:
		case <-s.done:
			return
		}
	}
}

// SendByte writes one byte to the port.
func (s *Serial) SendByte(b byte) error {
	_, err := s.port.Write([]byte{b})
	return err
}

// PollByte returns the next byte read from the port, or ok=false if none
// has arrived yet.
func (s *Serial) PollByte() (byte, bool) {
	select {
	case b := <-s.rx:
		return b, true
	default:
		return 0, false
	}
}

// Tick returns wall-clock time since open, quantized to TickQuantum and
// wrapped to 8 bits.
func (s *Serial) Tick() uint8 {
	return uint8(time.Since(s.started) / TickQuantum)
}

// Close stops the reader goroutine and closes the underlying port.
func (s *Serial) Close() error {
	close(s.done)
	return s.port.Close()
}
