package channel

import (
	"context"
	"fmt"

	"github.com/dtn-stack/bplib/internal/logger"
	"github.com/dtn-stack/bplib/pkg/active"
	"github.com/dtn-stack/bplib/pkg/bundle"
	"github.com/dtn-stack/bplib/pkg/custody"
	"github.com/dtn-stack/bplib/pkg/eid"
)

// Process dispatches one received bundle (spec §4.3 / §4.6 "process"):
// expired bundles are dropped and counted, ACS admin records feed the
// custody engine's ack callback, custody-requesting bundles are
// accumulated for DACS and their payload delivered, and ordinary bundles
// are delivered directly.
func (c *Channel) Process(ctx context.Context, data []byte) (bundle.Disposition, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, newStatusError("process", c.name, ErrLifecycle, ErrClosed)
	}
	sysnow := c.sysnow()
	c.mu.Unlock()

	parsed, disp, err := bundle.Parse(data, len(data), sysnow)
	if err != nil {
		return 0, newStatusError("process", c.name, ErrProtocol, err)
	}

	switch disp {
	case bundle.DispositionExpired:
		c.lock.Lock()
		c.stats.Expired++
		c.lock.Unlock()
		if c.metrics != nil {
			c.metrics.IncExpired()
		}
		return disp, nil

	case bundle.DispositionPendingAcknowledgment:
		if err := c.processACS(parsed.Payload); err != nil {
			return 0, newStatusError("process", c.name, ErrProtocol, err)
		}
		return disp, nil

	case bundle.DispositionPendingCustodyTransfer:
		if err := c.accumulateCustody(ctx, parsed.Custodian); err != nil {
			return 0, err
		}
		if _, err := c.payloadStore.Enqueue(ctx, parsed.Payload); err != nil {
			return 0, newStatusError("process", c.name, ErrStorage, err)
		}
		c.lock.Lock()
		c.stats.Received++
		c.lock.Unlock()
		c.lock.Signal()
		if c.metrics != nil {
			c.metrics.IncReceived()
		}
		return disp, nil

	default: // DispositionSuccess
		if _, err := c.payloadStore.Enqueue(ctx, parsed.Payload); err != nil {
			return 0, newStatusError("process", c.name, ErrStorage, err)
		}
		c.lock.Lock()
		c.stats.Received++
		c.lock.Unlock()
		c.lock.Signal()
		if c.metrics != nil {
			c.metrics.IncReceived()
		}
		return disp, nil
	}
}

// processACS feeds an ACS admin-record payload to the custody reader,
// acknowledging each contained CID against the active table and waking any
// Load blocked waiting for a vacated slot.
func (c *Channel) processACS(payload []byte) error {
	woke := false
	_, err := custody.Read(payload, func(cid uint64) bool {
		c.lock.Lock()
		sid := c.table.AckCID(cid)
		c.lock.Unlock()
		if sid == active.SIDVacant {
			return false
		}
		if err := c.bundleStore.Relinquish(sid); err != nil {
			logger.Warn("failed to relinquish acknowledged bundle", logger.Channel(c.name), logger.Err(err))
		}
		c.lock.Lock()
		c.stats.Acknowledged++
		c.lock.Unlock()
		if c.metrics != nil {
			c.metrics.IncAcknowledged()
		}
		woke = true
		return true
	})
	if err != nil {
		return err
	}
	if woke {
		c.lock.Signal()
	}
	return nil
}

// accumulateCustody records custodian.CID against the per-source
// accumulator keyed by the custodian's EID, flushing a DACS admin bundle
// into the DACS queue when the accumulator decides it is time (spec §4.5
// dacs_rate / max_gaps_per_dacs).
func (c *Channel) accumulateCustody(ctx context.Context, custodian *bundle.Custodian) error {
	if custodian == nil {
		return newStatusError("process", c.name, ErrProtocol, fmt.Errorf("custody-requesting bundle carries no CTEB"))
	}
	custodianEID := eid.EID{Node: custodian.Node, Service: custodian.Service}

	c.lock.Lock()
	sysnow := c.sysnow()
	acc := c.accumulator(custodianEID.String())
	acc.Receive(uint32(custodian.CID))
	shouldFlush := acc.ShouldFlush(sysnow, c.attrs.DACSRate, c.attrs.MaxGapsPerDACS)
	c.lock.Unlock()

	if !shouldFlush {
		return nil
	}
	return c.flushDACS(ctx, custodianEID, acc, sysnow)
}

// flushDACS drains acc into an ACS record, wraps it in an admin bundle
// addressed back to custodianEID, and enqueues it to the DACS queue.
func (c *Channel) flushDACS(ctx context.Context, custodianEID eid.EID, acc *custody.Accumulator, sysnow uint64) error {
	c.mu.Lock()
	route := bundle.Route{Source: c.route.Source, Destination: custodianEID, ReportTo: c.route.Source}
	c.dacsBuilder.SetRoute(route)
	buf := make([]byte, 2048)
	maxFills := c.attrs.MaxFillsPerDACS

	c.lock.Lock()
	n, err := custody.Write(buf, len(buf), acc, maxFills)
	if err == nil {
		acc.MarkFlushed(sysnow)
	}
	c.lock.Unlock()

	if err != nil {
		c.mu.Unlock()
		return newStatusError("process", c.name, ErrProtocol, err)
	}

	seq := c.nextCreateSeq(sysnow)
	data, err := c.dacsBuilder.Build(buf[:n], sysnow, seq)
	c.mu.Unlock()
	if err != nil {
		return newStatusError("process", c.name, ErrProtocol, err)
	}

	if _, err := c.dacsStore.Enqueue(ctx, data); err != nil {
		return newStatusError("process", c.name, ErrStorage, err)
	}
	c.lock.Signal()
	logger.Debug("dacs flushed", logger.Channel(c.name), logger.DestEID(custodianEID.String()))
	return nil
}
