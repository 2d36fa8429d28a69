// File: cmd/spaceradio/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Viper keys and their mapping onto facade.Config. Every key can be set by
// flag, by SPACERADIO_<KEY> (dots become underscores) or in the config file.

package main

import (
	"github.com/spf13/viper"

	"github.com/momentics/spaceradio/api"
	"github.com/momentics/spaceradio/control"
	"github.com/momentics/spaceradio/facade"
	"github.com/momentics/spaceradio/param"
	"github.com/momentics/spaceradio/transport"
)

const (
	keyAddress       = "osc.address"
	keyPort          = "osc.port"
	keyLocalAddr     = "osc.local_addr"
	keyControls      = "controls"
	keySampleRate    = "host.sample_rate"
	keyBlockSize     = "host.block_size"
	keyWorkers       = "host.workers"
	keyQueueCapacity = "host.queue_capacity"
	keyCPUAffinity   = "host.cpu_affinity"
	keyCPUBase       = "host.cpu_base"
	keySmoothing     = "host.smoothing_ms"
	keyState         = "state"
	keyMetricsAddr   = "metrics.addr"
	keyLFORate       = "lfo.rate"
	keyLFOControls   = "lfo.controls"
	keyStatsInterval = "stats.interval"
)

const (
	defaultAddress   = control.DefaultAddress
	defaultPort      = control.DefaultPort
	defaultLocalAddr = transport.DefaultLocalAddr
	defaultControls  = param.DefaultControls
)

// configFromViper builds the facade configuration from resolved settings.
func configFromViper(v *viper.Viper) (*facade.Config, error) {
	cfg := facade.DefaultConfig()
	cfg.Address = v.GetString(keyAddress)
	port := v.GetInt(keyPort)
	if port < 0 || port > 65535 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "port out of range").
			WithContext("port", port)
	}
	cfg.Port = uint16(port)
	cfg.LocalAddr = v.GetString(keyLocalAddr)
	cfg.Controls = v.GetInt(keyControls)
	if v.IsSet(keySampleRate) {
		cfg.SampleRate = float32(v.GetFloat64(keySampleRate))
	}
	if v.IsSet(keyBlockSize) {
		cfg.BlockSize = v.GetInt(keyBlockSize)
	}
	if v.IsSet(keyWorkers) {
		cfg.NumWorkers = v.GetInt(keyWorkers)
	}
	if v.IsSet(keyQueueCapacity) {
		cfg.QueueCapacity = v.GetInt(keyQueueCapacity)
	}
	cfg.CPUAffinity = v.GetBool(keyCPUAffinity)
	cfg.CPUBase = v.GetInt(keyCPUBase)
	cfg.SmoothingMs = float32(v.GetFloat64(keySmoothing))
	cfg.StatePath = v.GetString(keyState)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
