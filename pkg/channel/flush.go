package channel

import "github.com/dtn-stack/bplib/internal/logger"

// Flush relinquishes every bundle still outstanding in the active table
// and sweeps oldest up to current (spec §4.6 "flush"): every occupied slot
// counts as lost, since nothing will ever retransmit or acknowledge it
// again once its slot is cleared.
func (c *Channel) Flush() int {
	c.lock.Lock()
	lost := c.table.Flush(c.bundleStore)
	c.stats.Lost += uint64(lost)
	occ := c.table.OccupiedCount()
	c.lock.Unlock()
	c.lock.Signal()

	if c.metrics != nil {
		for i := 0; i < lost; i++ {
			c.metrics.IncLost()
		}
		c.metrics.SetActiveTableOccupancy(occ)
	}
	logger.Info("channel flushed", logger.Channel(c.name))
	return lost
}

// LatchStats returns a snapshot of the channel's statistics counters plus
// the current active-table occupancy, for spec §4.6 "latchstats" and for
// any caller that wants a consistent point-in-time read without reaching
// for the Prometheus registry.
func (c *Channel) LatchStats() (Stats, int) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.stats, c.table.OccupiedCount()
}
