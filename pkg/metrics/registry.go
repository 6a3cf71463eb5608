// Package metrics is a thin Prometheus registry wrapper in the shape of the
// teacher's pkg/metrics: a package-level enable gate plus per-domain
// recorder types whose methods are safe to call on a nil receiver, so a
// channel constructed with metrics disabled pays zero overhead.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu       sync.Mutex
	enabled  bool
	registry *prometheus.Registry
)

// Init enables or disables metrics collection process-wide. Call it once at
// startup before constructing any channel.
func Init(enable bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = enable
	if enable && registry == nil {
		registry = prometheus.NewRegistry()
	}
}

// IsEnabled reports whether Init(true) has been called.
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// GetRegistry returns the process-wide registry, or nil if metrics are
// disabled.
func GetRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	return registry
}
