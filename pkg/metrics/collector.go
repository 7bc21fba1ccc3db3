// Package metrics exports the engine's liveness counters as Prometheus
// collectors: a struct implementing Describe/Collect that pulls a fresh
// snapshot on every scrape instead of pushing updates.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/retro-plastics/squid/pkg/snet"
)

// Source is anything that can report a stats snapshot and link state; both
// *snet.Engine and *squid.Conn satisfy it.
type Source interface {
	Stats() snet.Stats
	LinkIsUp() bool
}

// LinkCollector is a prometheus.Collector reporting one link's counters and
// up/down gauge under a constant set of labels (e.g. the link's name).
type LinkCollector struct {
	source Source

	rxFrames   *prometheus.Desc
	txFrames   *prometheus.Desc
	crcErrors  *prometheus.Desc
	duplicates *prometheus.Desc
	drops      *prometheus.Desc
	timeouts   *prometheus.Desc
	resends    *prometheus.Desc
	linkUp     *prometheus.Desc
}

// NewLinkCollector builds a collector scraping source, with constLabels
// attached to every exported metric (e.g. {"link": "uart0"}).
func NewLinkCollector(source Source, constLabels prometheus.Labels) *LinkCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("squid_"+name, help, nil, constLabels)
	}
	return &LinkCollector{
		source:     source,
		rxFrames:   desc("rx_frames_total", "Frames received and validated."),
		txFrames:   desc("tx_frames_total", "Frames emitted, including resends."),
		crcErrors:  desc("crc_errors_total", "Frames dropped for a bad sentinel or XOR checksum."),
		duplicates: desc("duplicates_total", "DATA frames received with an already-accepted sequence bit."),
		drops:      desc("drops_total", "Accepted DATA frames whose payload could not be queued."),
		timeouts:   desc("timeouts_total", "Retransmission timer expirations while waiting for an ACK."),
		resends:    desc("resends_total", "Frames re-emitted byte-identical to the last send."),
		linkUp:     desc("link_up", "1 if the engine considers the link Connected, else 0."),
	}
}

func (c *LinkCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.rxFrames
	ch <- c.txFrames
	ch <- c.crcErrors
	ch <- c.duplicates
	ch <- c.drops
	ch <- c.timeouts
	ch <- c.resends
	ch <- c.linkUp
}

func (c *LinkCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Stats()
	ch <- prometheus.MustNewConstMetric(c.rxFrames, prometheus.CounterValue, float64(s.RxFrames))
	ch <- prometheus.MustNewConstMetric(c.txFrames, prometheus.CounterValue, float64(s.TxFrames))
	ch <- prometheus.MustNewConstMetric(c.crcErrors, prometheus.CounterValue, float64(s.CRCErrors))
	ch <- prometheus.MustNewConstMetric(c.duplicates, prometheus.CounterValue, float64(s.Duplicates))
	ch <- prometheus.MustNewConstMetric(c.drops, prometheus.CounterValue, float64(s.Drops))
	ch <- prometheus.MustNewConstMetric(c.timeouts, prometheus.CounterValue, float64(s.Timeouts))
	ch <- prometheus.MustNewConstMetric(c.resends, prometheus.CounterValue, float64(s.Resends))

	up := 0.0
	if c.source.LinkIsUp() {
		up = 1.0
	}
	ch <- prometheus.MustNewConstMetric(c.linkUp, prometheus.GaugeValue, up)
}
