package channel

import (
	"context"
	"time"

	"github.com/dtn-stack/bplib/internal/logger"
	"github.com/dtn-stack/bplib/pkg/active"
	"github.com/dtn-stack/bplib/pkg/bpstore"
	"github.com/dtn-stack/bplib/pkg/bundle"
)

// Load produces the next bundle the caller should transmit (spec §4.4,
// "load"): a pending DACS takes priority, then the active-table scan
// (retransmit/expire/wrap), then a fresh dequeue from the bundle queue. A
// freshly dequeued bundle whose lifetime has already run out is
// relinquished and counted as expired instead of being sent. A fresh or
// retransmitted custodial bundle goes through emission: CID assignment (or
// retransmit-clock touch) happens under the active-table lock, and a newly
// assigned CID is then patched into the CTEB just before the bytes are
// handed back.
func (c *Channel) Load(ctx context.Context, timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return nil, newStatusError("load", c.name, ErrLifecycle, ErrClosed)
		}
		c.mu.Unlock()

		if data, err := c.dequeueDACS(ctx); err != nil {
			return nil, err
		} else if data != nil {
			return data, nil
		}

		data, status, err := c.scanOrDequeue(ctx)
		if err != nil {
			return nil, err
		}
		switch status {
		case active.StatusSelected:
			return data, nil
		case active.StatusOverflow:
			if timeout <= 0 || time.Now().After(deadline) {
				return nil, newStatusError("load", c.name, ErrResource, ErrOverflow)
			}
			continue
		}

		// StatusNone with nothing freshly dequeued: wait for Store/Process
		// to signal, or time out.
		remaining := time.Until(deadline)
		if timeout <= 0 {
			remaining = 0
		} else if remaining <= 0 {
			return nil, newStatusError("load", c.name, ErrTransient, ErrTimeout)
		}
		c.lock.Lock()
		woke := c.lock.Wait(remaining)
		c.lock.Unlock()
		if !woke && timeout > 0 {
			return nil, newStatusError("load", c.name, ErrTransient, ErrTimeout)
		}
	}
}

func (c *Channel) dequeueDACS(ctx context.Context) ([]byte, error) {
	if c.dacsStore.GetCount() == 0 {
		return nil, nil
	}
	data, sid, err := c.dacsStore.Dequeue(ctx)
	if err != nil {
		if err == bpstore.ErrEmpty {
			return nil, nil
		}
		return nil, newStatusError("load", c.name, ErrStorage, err)
	}
	if err := c.dacsStore.Relinquish(sid); err != nil {
		logger.Warn("failed to relinquish dacs bundle", logger.Channel(c.name), logger.Err(err))
	}

	c.lock.Lock()
	c.stats.Transmitted++
	c.lock.Unlock()
	if c.metrics != nil {
		c.metrics.IncTransmitted()
	}
	return data, nil
}

// scanOrDequeue runs one active-table scan pass, falling back to a fresh
// dequeue from the bundle queue when the scan finds nothing to retransmit.
// Every bundle it returns has already been through emission.
func (c *Channel) scanOrDequeue(ctx context.Context) ([]byte, active.Status, error) {
	c.lock.Lock()
	sysnow := c.sysnow()
	params := active.ScanParams{Timeout: c.attrs.Timeout, CIDReuse: c.attrs.CIDReuse, Wrap: c.attrs.WrapResponse}
	// The wrap RESEND and BLOCK branches pause briefly on the active-table
	// condition variable; c.lock is held here, as Wait requires.
	wait := func() { c.lock.Wait(10 * time.Millisecond) }
	result := active.Scan(c.table, sysnow, params, c.bundleStore, wait)
	c.lock.Unlock()

	if result.Outcome.Lost > 0 || result.Outcome.Expired > 0 || result.Outcome.Retransmitted > 0 {
		c.foldOutcome(result.Outcome)
	}

	switch result.Status {
	case active.StatusSelected:
		if result.NewCID {
			// cid_reuse=false: the old cid was already retired and the slot
			// cleared by Scan, so this retransmission is installed exactly
			// like a fresh emission, under a brand new cid.
			data, err := c.emit(result.Data, bpstore.SID(result.SID), sysnow)
			if err != nil {
				return nil, active.StatusNone, err
			}
			logger.Debug("bundle retransmitted under new cid", logger.Channel(c.name), logger.SID(uint64(result.SID)))
			return data, active.StatusSelected, nil
		}
		// cid_reuse=true, or the wrap=RESEND path: the slot stays installed
		// under its existing cid, only the retransmit clock moves.
		c.lock.Lock()
		c.table.Touch(result.ATI, sysnow)
		occ := c.table.OccupiedCount()
		c.lock.Unlock()
		c.lock.Signal()
		if c.metrics != nil {
			c.metrics.SetActiveTableOccupancy(occ)
		}
		logger.Debug("bundle retransmitted", logger.Channel(c.name), logger.SID(uint64(result.SID)))
		return result.Data, active.StatusSelected, nil
	case active.StatusOverflow:
		return nil, active.StatusOverflow, nil
	}

	data, sid, err := c.bundleStore.Dequeue(ctx)
	if err != nil {
		if err == bpstore.ErrEmpty {
			return nil, active.StatusNone, nil
		}
		return nil, active.StatusNone, newStatusError("load", c.name, ErrStorage, err)
	}
	if _, disp, perr := bundle.Parse(data, len(data), sysnow); perr == nil && disp == bundle.DispositionExpired {
		if err := c.bundleStore.Relinquish(sid); err != nil {
			logger.Warn("failed to relinquish expired bundle", logger.Channel(c.name), logger.Err(err))
		}
		c.lock.Lock()
		c.stats.Expired++
		c.lock.Unlock()
		if c.metrics != nil {
			c.metrics.IncExpired()
		}
		return c.scanOrDequeue(ctx)
	}

	data, err = c.emit(data, sid, sysnow)
	if err != nil {
		return nil, active.StatusNone, err
	}
	return data, active.StatusSelected, nil
}

// emit is spec §4.4's Emission step: a freshly dequeued bundle, if it
// requested custody, gets a CID installed into the active table and
// patched into its CTEB; otherwise its storage slot is relinquished
// immediately since nothing will ever retransmit it.
func (c *Channel) emit(data []byte, sid bpstore.SID, sysnow uint64) ([]byte, error) {
	hasCustody, err := active.HasCustody(data)
	if err != nil {
		return nil, newStatusError("load", c.name, ErrProtocol, err)
	}

	if !hasCustody {
		if err := c.bundleStore.Relinquish(sid); err != nil {
			logger.Warn("failed to relinquish non-custodial bundle", logger.Channel(c.name), logger.Err(err))
		}
		c.lock.Lock()
		c.stats.Transmitted++
		c.lock.Unlock()
		if c.metrics != nil {
			c.metrics.IncTransmitted()
		}
		return data, nil
	}

	c.lock.Lock()
	cid, _ := c.table.Install(active.SID(sid), sysnow)
	c.stats.Transmitted++
	occ := c.table.OccupiedCount()
	c.lock.Unlock()

	if err := c.builder.PatchCustodyID(data, cid); err != nil {
		return nil, newStatusError("load", c.name, ErrProtocol, err)
	}
	if c.metrics != nil {
		c.metrics.IncTransmitted()
		c.metrics.SetActiveTableOccupancy(occ)
	}
	logger.Debug("bundle emitted with custody", logger.Channel(c.name), logger.CID(cid), logger.SID(uint64(sid)))
	return data, nil
}

func (c *Channel) foldOutcome(o active.Outcome) {
	c.lock.Lock()
	c.stats.Lost += uint64(o.Lost)
	c.stats.Expired += uint64(o.Expired)
	c.stats.Retransmitted += uint64(o.Retransmitted)
	occ := c.table.OccupiedCount()
	c.lock.Unlock()

	if c.metrics == nil {
		return
	}
	for i := 0; i < o.Lost; i++ {
		c.metrics.IncLost()
	}
	for i := 0; i < o.Expired; i++ {
		c.metrics.IncExpired()
	}
	for i := 0; i < o.Retransmitted; i++ {
		c.metrics.IncRetransmitted()
	}
	c.metrics.SetActiveTableOccupancy(occ)
}
