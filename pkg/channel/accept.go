package channel

import (
	"context"
	"time"

	"github.com/dtn-stack/bplib/internal/logger"
	"github.com/dtn-stack/bplib/pkg/bpstore"
)

// Accept dequeues the next delivered payload (spec §4.6 "accept"). Unlike
// Load, an accepted payload is final: it is dequeued and immediately
// relinquished, since nothing downstream of delivery retransmits it.
func (c *Channel) Accept(ctx context.Context, timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return nil, newStatusError("accept", c.name, ErrLifecycle, ErrClosed)
		}
		c.mu.Unlock()

		data, sid, err := c.payloadStore.Dequeue(ctx)
		if err == nil {
			if relErr := c.payloadStore.Relinquish(sid); relErr != nil {
				logger.Warn("failed to relinquish delivered payload", logger.Channel(c.name), logger.Err(relErr))
			}
			c.lock.Lock()
			c.stats.Delivered++
			c.lock.Unlock()
			if c.metrics != nil {
				c.metrics.IncDelivered()
			}
			return data, nil
		}
		if err != bpstore.ErrEmpty {
			return nil, newStatusError("accept", c.name, ErrStorage, err)
		}

		remaining := time.Until(deadline)
		if timeout <= 0 {
			remaining = 0
		} else if remaining <= 0 {
			return nil, newStatusError("accept", c.name, ErrTransient, ErrTimeout)
		}
		c.lock.Lock()
		woke := c.lock.Wait(remaining)
		c.lock.Unlock()
		if !woke && timeout > 0 {
			return nil, newStatusError("accept", c.name, ErrTransient, ErrTimeout)
		}
	}
}
