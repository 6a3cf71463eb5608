// Package channel implements the channel façade (spec §4.6): open/close/
// config/store/load/process/accept/flush/latchstats, gluing the bundle
// builder/parser, the active-table retransmit engine, and the custody/ACS
// engine to a trio of storage-service handles (outgoing bundles, accepted
// payloads, outgoing DACS).
package channel

import (
	"fmt"
	"sync"

	"github.com/dtn-stack/bplib/internal/logger"
	"github.com/dtn-stack/bplib/pkg/active"
	"github.com/dtn-stack/bplib/pkg/bpstore"
	"github.com/dtn-stack/bplib/pkg/bundle"
	"github.com/dtn-stack/bplib/pkg/custody"
	"github.com/dtn-stack/bplib/pkg/metrics"
	"github.com/dtn-stack/bplib/pkg/osal"
)

// Stats is the statistics counter set spec §7 requires: updated on the
// path where each event occurred, readable via LatchStats.
type Stats struct {
	Lost          uint64
	Expired       uint64
	Retransmitted uint64
	Acknowledged  uint64
	Delivered     uint64
	Generated     uint64
	Transmitted   uint64
	Received      uint64
}

// Channel owns everything spec §3's "Channel" data-model entry lists: the
// attribute set, the bundle template builders, the three storage handles,
// the custody RB-tree(s), the active table, the cid cursors (embedded in
// Table), the statistics counters, and the active-table lock.
type Channel struct {
	name string

	lock *osal.ActiveLock
	mu   sync.Mutex // guards route/attrs/builders against concurrent Config calls

	route bundle.Route
	attrs bundle.Attributes

	builder     *bundle.Builder
	dacsBuilder *bundle.Builder

	bundleStore  bpstore.Store
	payloadStore bpstore.Store
	dacsStore    bpstore.Store

	table            *active.Table
	accumulators     map[string]*custody.Accumulator
	lastCreateSeqSec uint64
	lastCreateSeq    uint64

	clock   osal.Clock
	metrics *metrics.ChannelMetrics

	stats  Stats
	closed bool
}

// Open allocates a channel: it sets up the bundle builder (which builds its
// template on the first Build) and wires in the three storage handles the caller has already constructed
// (spec's `create(parm)` is realized one layer up, in pkg/config/cmd/bpd,
// which picks a pkg/bpstore backend per handle and passes the resulting
// Store values in here).
func Open(name string, route bundle.Route, attrs bundle.Attributes, bundleStore, payloadStore, dacsStore bpstore.Store, clock osal.Clock) (*Channel, error) {
	if bundleStore == nil || payloadStore == nil || dacsStore == nil {
		return nil, &StatusError{Op: "open", Channel: name, Taxon: ErrParameter, Err: fmt.Errorf("all three storage handles are required")}
	}
	if clock == nil {
		clock = osal.SystemClock{}
	}

	dacsAttrs := attrs
	dacsAttrs.RequestCustody = false
	dacsAttrs.AdminRecord = true

	treeSize := attrs.ActiveTableSize
	if treeSize <= 0 {
		treeSize = 256
	}

	c := &Channel{
		name:         name,
		lock:         osal.NewActiveLock(),
		route:        route,
		attrs:        attrs,
		builder:      bundle.NewBuilder(route, attrs),
		dacsBuilder:  bundle.NewBuilder(route, dacsAttrs),
		bundleStore:  bundleStore,
		payloadStore: payloadStore,
		dacsStore:    dacsStore,
		table:        active.NewTable(treeSize),
		accumulators: make(map[string]*custody.Accumulator),
		clock:        clock,
		metrics:      metrics.NewChannelMetrics(name),
	}

	logger.Info("channel opened", logger.Channel(name), logger.SourceEID(route.Source.String()), logger.DestEID(route.Destination.String()))
	return c, nil
}

// Close releases the channel's storage handles. It does not flush
// outstanding active-table entries first; call Flush before Close if that
// is required.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	var firstErr error
	for _, s := range []bpstore.Store{c.bundleStore, c.payloadStore, c.dacsStore} {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	logger.Info("channel closed", logger.Channel(c.name))
	return firstErr
}

func (c *Channel) accumulator(custodianEID string) *custody.Accumulator {
	a, ok := c.accumulators[custodianEID]
	if !ok {
		size := c.attrs.ActiveTableSize
		if size <= 0 {
			size = 256
		}
		a = custody.NewAccumulator(size)
		c.accumulators[custodianEID] = a
	}
	return a
}

func (c *Channel) sysnow() uint64 {
	secs, unreliable := c.clock.Now()
	if unreliable {
		logger.Warn("clock reported unreliable time", logger.Channel(c.name))
	}
	return secs
}

func (c *Channel) nextCreateSeq(sec uint64) uint64 {
	if sec != c.lastCreateSeqSec {
		c.lastCreateSeqSec = sec
		c.lastCreateSeq = 0
	} else {
		c.lastCreateSeq++
	}
	return c.lastCreateSeq
}
