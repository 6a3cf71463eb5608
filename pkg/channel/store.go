package channel

import (
	"context"

	"github.com/dtn-stack/bplib/internal/logger"
)

// Store builds an outgoing bundle from payload and enqueues it to the
// bundle storage handle (spec §4.6 "store"). It does not install an
// active-table entry or assign a CID; that happens at emission time, the
// first time Load dequeues this bundle, so that a bundle sitting in the
// queue unread does not tie up a custody slot.
func (c *Channel) Store(ctx context.Context, payload []byte) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return newStatusError("store", c.name, ErrLifecycle, ErrClosed)
	}
	sysnow := c.sysnow()
	seq := c.nextCreateSeq(sysnow)
	data, err := c.builder.Build(payload, sysnow, seq)
	c.mu.Unlock()

	if err != nil {
		return newStatusError("store", c.name, ErrProtocol, err)
	}

	if _, err := c.bundleStore.Enqueue(ctx, data); err != nil {
		return newStatusError("store", c.name, ErrStorage, err)
	}

	c.lock.Lock()
	c.stats.Generated++
	c.lock.Unlock()
	c.lock.Signal()
	if c.metrics != nil {
		c.metrics.IncGenerated()
	}
	logger.Debug("bundle stored", logger.Channel(c.name), logger.DestEID(c.route.Destination.String()))
	return nil
}
