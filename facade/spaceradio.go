// File: facade/spaceradio.go
// Unified facade layer for spaceradio.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// This file defines the SpaceRadio struct, which plays the role of a host: it
// owns the bridge, the background executor that runs its tasks, the control
// surface and the state store, and drives processing blocks on a dedicated
// thread at the configured block rate.

package facade

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/momentics/spaceradio/adapters"
	"github.com/momentics/spaceradio/api"
	"github.com/momentics/spaceradio/bridge"
	"github.com/momentics/spaceradio/control"
	"github.com/momentics/spaceradio/internal/concurrency"
	"github.com/momentics/spaceradio/param"
)

// StateKey is the state store key holding the bridge document.
const StateKey = "spaceradio"

// ErrNotStarted is returned by block operations before Start.
var ErrNotStarted = errors.New("spaceradio is not started")

// Config holds parameters immutable per run.
type Config struct {
	SampleRate    float32 // Host sample rate in Hz
	BlockSize     int     // Samples per processing block
	Controls      int     // Number of controls in the bank
	NumWorkers    int     // Background workers; 1 keeps sends in dispatch order
	QueueCapacity int     // Capacity of the ordered task queue
	CPUAffinity   bool    // Whether to pin the block thread and workers
	CPUBase       int     // First CPU used when pinning
	LocalAddr     string  // Local UDP bind address
	Address       string  // OSC destination host
	Port          uint16  // OSC destination port
	SmoothingMs   float32 // Linear smoothing time; 0 disables smoothing
	StatePath     string  // File used to persist state; empty disables persistence
}

// DefaultConfig returns default configuration values.
func DefaultConfig() *Config {
	bc := bridge.DefaultConfig()
	return &Config{
		SampleRate:    48000,
		BlockSize:     512,
		Controls:      bc.Controls,
		NumWorkers:    1,
		QueueCapacity: concurrency.DefaultTaskQueueSize,
		CPUAffinity:   false,
		CPUBase:       0,
		LocalAddr:     bc.LocalAddr,
		Address:       bc.Address,
		Port:          bc.Port,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return api.NewError(api.ErrCodeInvalidArgument, "sample rate must be positive").
			WithContext("sample_rate", c.SampleRate)
	case c.BlockSize <= 0:
		return api.NewError(api.ErrCodeInvalidArgument, "block size must be positive").
			WithContext("block_size", c.BlockSize)
	case c.NumWorkers < 1:
		return api.NewError(api.ErrCodeInvalidArgument, "at least one worker is required").
			WithContext("workers", c.NumWorkers)
	}
	return control.Endpoint{Address: c.Address, Port: c.Port}.Validate()
}

// BlockDuration returns the wall-clock length of one block.
func (c *Config) BlockDuration() time.Duration {
	return time.Duration(float64(c.BlockSize) / float64(c.SampleRate) * float64(time.Second))
}

// SpaceRadio is the main facade type.
// It implements api.GracefulShutdown to allow unified shutdown logic.
type SpaceRadio struct {
	config   *Config
	bridge   *bridge.Bridge
	endpoint *control.EndpointStore
	metrics  *control.MetricsRegistry
	control  *adapters.ControlAdapter
	affinity *adapters.AffinityAdapter

	queue    *concurrency.TaskQueue[bridge.Task] // NumWorkers == 1
	executor *adapters.ExecutorAdapter           // NumWorkers > 1
	ctx      api.ProcessContext[bridge.Task]

	state      *FileStateStore
	buf        *api.Buffer
	automation atomic.Pointer[Automation]
	position   atomic.Uint64 // samples processed

	blockMu sync.Mutex   // serializes RunBlock
	mu      sync.RWMutex // protects started and closed
	started bool
	closed  bool
}

// Ensure compliance with api.GracefulShutdown.
var _ api.GracefulShutdown = (*SpaceRadio)(nil)

// New constructs SpaceRadio with the given configuration and restores saved
// state when StatePath is set. opts are applied to the bridge after the
// facade's own options. On error everything already started is released.
func New(cfg *Config, opts ...bridge.Option) (_ *SpaceRadio, err error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("facade config: %w", err)
	}
	s := &SpaceRadio{
		config:   cfg,
		endpoint: control.NewEndpointStore(control.Endpoint{Address: cfg.Address, Port: cfg.Port}),
		metrics:  control.NewMetricsRegistry(),
		affinity: adapters.NewAffinityAdapter(),
		buf:      api.NewBuffer(1, cfg.BlockSize),
	}
	s.control = adapters.NewControlAdapter(s.endpoint, s.metrics)

	smoothing := param.SmoothingNone
	if cfg.SmoothingMs > 0 {
		smoothing = param.SmoothingLinear(cfg.SmoothingMs)
	}
	bridgeOpts := append([]bridge.Option{
		bridge.WithEndpointStore(s.endpoint),
		bridge.WithMetrics(s.metrics),
	}, opts...)
	b, err := bridge.New(bridge.Config{
		Controls:  cfg.Controls,
		LocalAddr: cfg.LocalAddr,
		Smoothing: smoothing,
	}, bridgeOpts...)
	if err != nil {
		return nil, err
	}
	s.bridge = b
	defer func() {
		if err != nil {
			err = multierr.Append(err, s.release())
		}
	}()

	cpu := -1
	if cfg.CPUAffinity {
		cpu = cfg.CPUBase + 1
	}
	if cfg.NumWorkers == 1 {
		s.queue = concurrency.NewTaskQueue[bridge.Task](cfg.QueueCapacity, cpu, b.TaskExecutor())
		s.ctx = s.queue
	} else {
		s.executor = adapters.NewExecutorAdapter(cfg.NumWorkers, cpu)
		s.ctx = adapters.NewBackgroundAdapter(s.executor, b.TaskExecutor())
	}

	if err := s.metrics.RegisterGauge("pending_tasks", "Dispatch tasks waiting for the executor.",
		func() float64 { return float64(s.PendingTasks()) }); err != nil {
		return nil, err
	}
	s.control.RegisterDebugProbe("bridge.instance", func() any { return b.ID().String() })
	s.control.RegisterDebugProbe("bridge.sender", func() any { return b.SenderAvailable() })
	s.control.RegisterDebugProbe("bridge.position", func() any { return s.position.Load() })
	s.control.RegisterDebugProbe("executor.stats", func() any {
		if s.queue != nil {
			return s.queue.Stats()
		}
		return s.executor.Stats()
	})

	if cfg.StatePath != "" {
		s.state = NewFileStateStore(cfg.StatePath)
		if err := s.restore(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// release stops the executor and closes the bridge. Queued tasks run first.
func (s *SpaceRadio) release() error {
	if s.queue != nil {
		s.queue.Close()
	}
	if s.executor != nil {
		s.executor.Close()
	}
	return s.bridge.Shutdown()
}

func (s *SpaceRadio) restore() error {
	data, err := s.state.Load(StateKey)
	if errors.Is(err, api.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.bridge.RestoreState(data); err != nil {
		return fmt.Errorf("restore %s: %w", s.state.Path(), err)
	}
	logrus.WithFields(logrus.Fields{
		"function":    "restore",
		"path":        s.state.Path(),
		"destination": s.endpoint.Destination(),
	}).Info("State restored")
	return nil
}

// Start initializes the bridge for the configured layout. Subsequent calls
// have no effect.
func (s *SpaceRadio) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return api.NewError(api.ErrCodeUnavailable, "spaceradio is shut down")
	}
	if s.started {
		return nil
	}
	bus := api.BusConfig{NumOutputChannels: bridge.PluginInfo().OutputChannels}
	buf := api.BufferConfig{
		SampleRate:    s.config.SampleRate,
		MinBufferSize: uint32(s.config.BlockSize),
		MaxBufferSize: uint32(s.config.BlockSize),
	}
	if !s.bridge.Initialize(bus, buf, s.ctx) {
		return api.NewError(api.ErrCodeNotSupported, "bridge rejected host configuration")
	}
	s.started = true
	return nil
}

// Stop deactivates the bridge and saves state. Calling Stop on a
// non-started facade is a no-op.
func (s *SpaceRadio) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	s.bridge.Deactivate()
	s.started = false
	return s.saveLocked()
}

// Save persists bridge state when a state path is configured.
func (s *SpaceRadio) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *SpaceRadio) saveLocked() error {
	if s.state == nil {
		return nil
	}
	data, err := s.bridge.SaveState()
	if err != nil {
		return err
	}
	return s.state.Save(StateKey, data)
}

// Shutdown implements api.GracefulShutdown. Queued tasks are sent before
// the socket closes.
func (s *SpaceRadio) Shutdown() error {
	err := s.Stop()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return err
	}
	s.closed = true
	s.mu.Unlock()

	return multierr.Append(err, s.release())
}

// RunBlock applies automation and processes one block on the calling thread.
func (s *SpaceRadio) RunBlock() error {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}
	s.blockMu.Lock()
	defer s.blockMu.Unlock()
	if a := s.automation.Load(); a != nil {
		t := float64(s.position.Load()) / float64(s.config.SampleRate)
		a.Apply(s.bridge.Bank(), t)
	}
	if status := s.bridge.Process(s.buf, s.ctx); status == api.ProcessError {
		return api.NewError(api.ErrCodeInternal, "block processing failed")
	}
	s.position.Add(uint64(s.buf.Samples()))
	return nil
}

// Run drives blocks at the configured rate until ctx is cancelled. The
// block loop runs on a locked OS thread, pinned when CPUAffinity is set.
func (s *SpaceRadio) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if s.config.CPUAffinity {
		if err := s.affinity.Pin(s.config.CPUBase); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Run",
				"cpu":      s.config.CPUBase,
				"error":    err.Error(),
			}).Warn("CPU affinity unavailable")
		} else {
			defer s.affinity.Unpin()
		}
	}

	ticker := time.NewTicker(s.config.BlockDuration())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.RunBlock(); err != nil {
				return err
			}
		}
	}
}

// SetAutomation installs a generator applied before each block; nil removes it.
func (s *SpaceRadio) SetAutomation(a *Automation) {
	s.automation.Store(a)
}

// Set writes one control; it is sent with the next block.
func (s *SpaceRadio) Set(index int, value float32) error {
	if !s.bridge.Bank().Set(index, value) {
		return api.NewError(api.ErrCodeInvalidArgument, "control index out of range").
			WithContext("index", index)
	}
	return nil
}

// PendingTasks returns the number of tasks waiting for the executor.
func (s *SpaceRadio) PendingTasks() int {
	if s.queue != nil {
		return s.queue.Len()
	}
	return int(s.executor.Stats()["pending_tasks"])
}

// Position returns the number of samples processed.
func (s *SpaceRadio) Position() uint64 {
	return s.position.Load()
}

// GetControl returns the Control interface for dynamic config and metrics.
func (s *SpaceRadio) GetControl() api.Control {
	return s.control
}

// Bridge returns the processing core.
func (s *SpaceRadio) Bridge() *bridge.Bridge {
	return s.bridge
}

// Metrics returns the shared metrics registry.
func (s *SpaceRadio) Metrics() *control.MetricsRegistry {
	return s.metrics
}

// Endpoint returns the shared endpoint store.
func (s *SpaceRadio) Endpoint() *control.EndpointStore {
	return s.endpoint
}

// Config returns the configuration the facade was built with.
func (s *SpaceRadio) Config() *Config {
	return s.config
}
