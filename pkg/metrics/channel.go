package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// statVecs is the process-wide set of CounterVec/GaugeVec instruments,
// labeled by channel name, built once on first use regardless of how many
// channels get opened.
type statVecs struct {
	counters map[string]*prometheus.CounterVec
	gauges   map[string]*prometheus.GaugeVec
}

var (
	vecsOnce sync.Once
	vecs     *statVecs
)

var counterStats = []string{
	"lost", "expired", "retransmitted", "acknowledged",
	"delivered", "generated", "transmitted", "received",
}

var gaugeStats = map[string]string{
	"active_table_occupancy": "Slots currently occupied in the active table.",
	"rbtree_pool_usage":      "Peak simultaneously-allocated custody RB-tree nodes.",
}

func buildVecs(reg prometheus.Registerer) *statVecs {
	v := &statVecs{
		counters: make(map[string]*prometheus.CounterVec, len(counterStats)),
		gauges:   make(map[string]*prometheus.GaugeVec, len(gaugeStats)),
	}
	for _, name := range counterStats {
		v.counters[name] = promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "bplib_" + name + "_total",
				Help: "Cumulative count of " + name + " bundles.",
			},
			[]string{"channel"},
		)
	}
	for name, help := range gaugeStats {
		v.gauges[name] = promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{Name: "bplib_" + name, Help: help},
			[]string{"channel"},
		)
	}
	return v
}

// ChannelMetrics records the spec §7 statistics counters (lost, expired,
// retransmitted, acknowledged, delivered, generated, transmitted, received)
// plus active-table occupancy and RB-tree pool gauges, all labeled by
// channel name. A nil *ChannelMetrics is valid and every method on it is a
// no-op, exactly like the teacher's badgerMetrics/cacheMetrics.
type ChannelMetrics struct {
	channel string
}

// NewChannelMetrics returns a recorder for channel, or nil if metrics are
// disabled.
func NewChannelMetrics(channel string) *ChannelMetrics {
	if !IsEnabled() {
		return nil
	}
	vecsOnce.Do(func() { vecs = buildVecs(GetRegistry()) })
	return &ChannelMetrics{channel: channel}
}

func (m *ChannelMetrics) incCounter(name string) {
	if m == nil {
		return
	}
	vecs.counters[name].WithLabelValues(m.channel).Inc()
}

// IncLost records one lost bundle (storage failure or wrap-drop).
func (m *ChannelMetrics) IncLost() { m.incCounter("lost") }

// IncExpired records one bundle whose lifetime elapsed before delivery or ack.
func (m *ChannelMetrics) IncExpired() { m.incCounter("expired") }

// IncRetransmitted records one retransmit, whether from a timeout or a
// wrap/RESEND selection.
func (m *ChannelMetrics) IncRetransmitted() { m.incCounter("retransmitted") }

// IncAcknowledged records one CID acknowledged by an incoming DACS.
func (m *ChannelMetrics) IncAcknowledged() { m.incCounter("acknowledged") }

// IncDelivered records one payload handed to accept().
func (m *ChannelMetrics) IncDelivered() { m.incCounter("delivered") }

// IncGenerated records one bundle built by store().
func (m *ChannelMetrics) IncGenerated() { m.incCounter("generated") }

// IncTransmitted records one bundle returned by load() for emission.
func (m *ChannelMetrics) IncTransmitted() { m.incCounter("transmitted") }

// IncReceived records one bundle handed to process().
func (m *ChannelMetrics) IncReceived() { m.incCounter("received") }

// SetActiveTableOccupancy records the current occupied-slot count.
func (m *ChannelMetrics) SetActiveTableOccupancy(n int) {
	if m == nil {
		return
	}
	vecs.gauges["active_table_occupancy"].WithLabelValues(m.channel).Set(float64(n))
}

// SetRBTreePoolUsage records the custody RB-tree's current PeakUsage().
func (m *ChannelMetrics) SetRBTreePoolUsage(n int) {
	if m == nil {
		return
	}
	vecs.gauges["rbtree_pool_usage"].WithLabelValues(m.channel).Set(float64(n))
}
