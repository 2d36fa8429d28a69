// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Bridge counters backed by Prometheus. Counter increments are atomic adds
// and safe on the real-time thread.

package control

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const subsystem = "spaceradio"

// MetricsRegistry holds the bridge counters and the registry they live in.
type MetricsRegistry struct {
	Blocks       prometheus.Counter
	Dispatched   prometheus.Counter
	SubmitFailed prometheus.Counter
	Sent         prometheus.Counter
	Dropped      prometheus.Counter
	Failed       prometheus.Counter

	registry *prometheus.Registry
	mu       sync.RWMutex
	gauges   map[string]func() float64
}

// NewMetricsRegistry creates the counters on a private registry.
func NewMetricsRegistry() *MetricsRegistry {
	newCounter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
	}
	mr := &MetricsRegistry{
		Blocks:       newCounter("blocks_total", "Processing blocks handled."),
		Dispatched:   newCounter("dispatched_total", "Dispatch tasks submitted to the executor."),
		SubmitFailed: newCounter("submit_failed_total", "Dispatch tasks rejected by the executor."),
		Sent:         newCounter("sent_total", "OSC messages written to the socket."),
		Dropped:      newCounter("dropped_total", "Dispatch tasks dropped because no sender was available."),
		Failed:       newCounter("failed_total", "OSC messages that failed to send."),
		registry:     prometheus.NewRegistry(),
		gauges:       make(map[string]func() float64),
	}
	mr.registry.MustRegister(mr.Blocks, mr.Dispatched, mr.SubmitFailed, mr.Sent, mr.Dropped, mr.Failed)
	return mr
}

// Registry exposes the underlying registry for HTTP export.
func (mr *MetricsRegistry) Registry() *prometheus.Registry {
	return mr.registry
}

// RegisterGauge exposes fn as a gauge named key.
func (mr *MetricsRegistry) RegisterGauge(key, help string, fn func() float64) error {
	g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Subsystem: subsystem,
		Name:      key,
		Help:      help,
	}, fn)
	if err := mr.registry.Register(g); err != nil {
		return err
	}
	mr.mu.Lock()
	mr.gauges[key] = fn
	mr.mu.Unlock()
	return nil
}

// GetSnapshot returns the latest metric values keyed by short name.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	out := map[string]any{
		"blocks":        CounterValue(mr.Blocks),
		"dispatched":    CounterValue(mr.Dispatched),
		"submit_failed": CounterValue(mr.SubmitFailed),
		"sent":          CounterValue(mr.Sent),
		"dropped":       CounterValue(mr.Dropped),
		"failed":        CounterValue(mr.Failed),
	}
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	for k, fn := range mr.gauges {
		out[k] = fn()
	}
	return out
}

// CounterValue reads a counter's current value.
func CounterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
