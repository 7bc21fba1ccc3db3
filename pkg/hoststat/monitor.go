// Package hoststat polls host-level resource usage on a ticker, so /health
// can report whether the machine running squidd is healthy and not just
// the link itself.
package hoststat

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// Snapshot holds the most recently collected host metrics.
type Snapshot struct {
	CPUPercent    float64
	MemoryPercent float64
	LoadAverage1  float64
	CollectedAt   time.Time
}

// Monitor collects Snapshot values periodically in the background.
type Monitor struct {
	log      zerolog.Logger
	interval time.Duration

	mu       sync.RWMutex
	snapshot Snapshot

	close chan struct{}
	wg    sync.WaitGroup
}

// NewMonitor builds a Monitor polling every interval (a zero or negative
// interval is replaced with a 15 second default cadence).
func NewMonitor(log zerolog.Logger, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Monitor{
		log:      log.With().Str("component", "hoststat").Logger(),
		interval: interval,
		close:    make(chan struct{}),
	}
}

// Start begins periodic collection in a background goroutine.
func (m *Monitor) Start() {
	m.wg.Add(1)
	go m.run()
}

// Stop halts collection and waits for the background goroutine to exit.
func (m *Monitor) Stop() {
	close(m.close)
	m.wg.Wait()
}

// Latest returns the most recently collected snapshot.
func (m *Monitor) Latest() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

func (m *Monitor) run() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.collect()
	for {
		select {
		case <-m.close:
			return
		case <-ticker.C:
			m.collect()
		}
	}
}

func (m *Monitor) collect() {
	var snap Snapshot
	snap.CollectedAt = time.Now()

	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		snap.CPUPercent = pct[0]
	} else {
		m.log.Debug().Err(err).Msg("cpu stats unavailable")
	}

	if v, err := mem.VirtualMemory(); err == nil {
		snap.MemoryPercent = v.UsedPercent
	} else {
		m.log.Debug().Err(err).Msg("memory stats unavailable")
	}

	if l, err := load.Avg(); err == nil {
		snap.LoadAverage1 = l.Load1
	} else {
		m.log.Debug().Err(err).Msg("load stats unavailable")
	}

	m.mu.Lock()
	m.snapshot = snap
	m.mu.Unlock()
}
