// File: bridge/bridge.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package bridge

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/momentics/spaceradio/api"
	"github.com/momentics/spaceradio/control"
	"github.com/momentics/spaceradio/internal/dirty"
	"github.com/momentics/spaceradio/param"
	"github.com/momentics/spaceradio/transport"
)

// Bridge is the processing core. Process must be called from a single
// real-time thread; the handler returned by TaskExecutor may run on any
// number of background goroutines.
type Bridge struct {
	id       uuid.UUID
	cfg      Config
	log      logrus.FieldLogger
	tracker  *dirty.Tracker
	bank     *param.Bank
	endpoint *control.EndpointStore
	slot     *transport.Slot
	metrics  *control.MetricsRegistry

	sender    *transport.Sender
	skipSpawn bool

	// scratch is reused by Process for draining.
	scratch []int

	mu         sync.Mutex
	sampleRate float32
	active     bool
	closed     bool
}

var _ api.Plugin[Task] = (*Bridge)(nil)

// New builds the bank, tracker and endpoint, then spawns the sender on a
// helper thread. A bind failure is logged and leaves the bridge without a
// sender; construction still succeeds.
func New(cfg Config, opts ...Option) (*Bridge, error) {
	def := DefaultConfig()
	if cfg.Controls <= 0 {
		cfg.Controls = def.Controls
	}
	if cfg.LocalAddr == "" {
		cfg.LocalAddr = def.LocalAddr
	}
	if cfg.Address == "" {
		cfg.Address = def.Address
	}
	if cfg.Port == 0 {
		cfg.Port = def.Port
	}

	b := &Bridge{
		id:  uuid.New(),
		cfg: cfg,
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.WithField("instance", b.id.String())

	if b.endpoint == nil {
		ep := control.Endpoint{Address: cfg.Address, Port: cfg.Port}
		if err := ep.Validate(); err != nil {
			return nil, err
		}
		b.endpoint = control.NewEndpointStore(ep)
	}
	if b.metrics == nil {
		b.metrics = control.NewMetricsRegistry()
	}

	b.tracker = dirty.New(cfg.Controls)
	b.bank = param.NewBank(cfg.Controls, b.markDirty, param.WithSmoothing(cfg.Smoothing))
	b.scratch = make([]int, 0, b.tracker.Capacity())

	if !b.skipSpawn {
		s, err := transport.Spawn(cfg.LocalAddr)
		if err != nil {
			b.log.WithFields(logrus.Fields{
				"function":   "New",
				"local_addr": cfg.LocalAddr,
				"error":      err.Error(),
			}).Error("OSC sender unavailable, updates will be dropped")
		} else {
			b.sender = s
		}
	}
	b.slot = transport.NewSlot(b.sender)
	b.sender = nil

	b.log.WithFields(logrus.Fields{
		"function":    "New",
		"controls":    cfg.Controls,
		"destination": b.endpoint.Destination(),
		"sender":      b.slot.Available(),
	}).Info("Bridge created")
	return b, nil
}

func (b *Bridge) markDirty(index int) {
	b.tracker.MarkDirty(index)
}

// ID returns the instance id used in log fields.
func (b *Bridge) ID() uuid.UUID { return b.id }

// Info returns the static plugin description.
func (b *Bridge) Info() Info { return PluginInfo() }

// Bank returns the control bank.
func (b *Bridge) Bank() *param.Bank { return b.bank }

// Endpoint returns the shared endpoint store.
func (b *Bridge) Endpoint() *control.EndpointStore { return b.endpoint }

// Metrics returns the counters updated by the bridge.
func (b *Bridge) Metrics() *control.MetricsRegistry { return b.metrics }

// SenderAvailable reports whether a sender is installed.
func (b *Bridge) SenderAvailable() bool { return b.slot.Available() }

// Initialize accepts any layout with at least one output channel and a
// positive sample rate.
func (b *Bridge) Initialize(bus api.BusConfig, buf api.BufferConfig, _ api.InitContext[Task]) bool {
	if bus.NumOutputChannels < 1 || buf.SampleRate <= 0 {
		b.log.WithFields(logrus.Fields{
			"function":        "Initialize",
			"output_channels": bus.NumOutputChannels,
			"sample_rate":     buf.SampleRate,
		}).Warn("Rejected host configuration")
		return false
	}
	b.mu.Lock()
	b.sampleRate = buf.SampleRate
	b.active = true
	b.mu.Unlock()
	b.bank.Reset(buf.SampleRate)
	return true
}

// Process drains the tracker and submits one Task per changed control.
// Submission results are ignored: a rejected task is counted and lost.
func (b *Bridge) Process(buf *api.Buffer, ctx api.ProcessContext[Task]) api.ProcessStatus {
	b.metrics.Blocks.Inc()
	b.scratch = b.tracker.Drain(b.scratch)
	for _, index := range b.scratch {
		value, ok := b.bank.Value(index)
		if !ok {
			continue
		}
		if ctx.ExecuteBackground(Task{Index: index, Value: value}) {
			b.metrics.Dispatched.Inc()
		} else {
			b.metrics.SubmitFailed.Inc()
		}
	}
	b.bank.Advance(buf.Samples())
	return api.ProcessNormal
}

// TaskExecutor returns the background handler.
func (b *Bridge) TaskExecutor() func(task Task) {
	return b.execute
}

// execute sends task to the endpoint current at the time of the call.
func (b *Bridge) execute(task Task) {
	var dest string
	err := b.slot.Do(func(s *transport.Sender) error {
		dest = b.endpoint.Destination()
		return s.SendUpdate(dest, task.Index, task.Value)
	})
	switch {
	case err == nil:
		b.metrics.Sent.Inc()
	case errors.Is(err, transport.ErrNoSender):
		b.metrics.Dropped.Inc()
	default:
		b.metrics.Failed.Inc()
		b.log.WithFields(logrus.Fields{
			"function":    "execute",
			"index":       task.Index,
			"destination": dest,
			"error":       err.Error(),
		}).Debug("OSC send failed")
	}
}

// Params lists the bank controls followed by the persisted endpoint fields.
func (b *Bridge) Params() []api.ParamInfo {
	infos := b.bank.Infos()
	n := len(infos)
	return append(infos,
		api.ParamInfo{
			Index: n,
			ID:    KeyAddress,
			Name:  "OSC Address",
			Kind:  api.ParamPersistString,
		},
		api.ParamInfo{
			Index:   n + 1,
			ID:      KeyPort,
			Name:    "OSC Port",
			Kind:    api.ParamPersistInt,
			Default: float32(control.DefaultPort),
			Min:     0,
			Max:     65535,
		},
	)
}

// Deactivate marks the bridge suspended. The sender stays open.
func (b *Bridge) Deactivate() {
	b.mu.Lock()
	b.active = false
	b.mu.Unlock()
}

// Active reports whether the bridge is between Initialize and Deactivate.
func (b *Bridge) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// Shutdown closes the sender. Tasks handled afterwards are dropped.
func (b *Bridge) Shutdown() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.active = false
	b.mu.Unlock()

	pending := b.tracker.Pending()
	b.tracker.Reset()
	err := b.slot.Close()
	b.log.WithFields(logrus.Fields{
		"function":  "Shutdown",
		"discarded": pending,
	}).Info("Bridge shut down")
	return err
}
