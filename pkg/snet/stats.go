package snet

// StatsGet is an alias for Engine.Stats kept for symmetry with the
// original library's squid_stats_get(out) naming; both return the same
// value-copy snapshot.
func (e *Engine) StatsGet() Stats {
	return e.Stats()
}
