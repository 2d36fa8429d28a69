// File: cmd/spaceradio/run.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/spaceradio/facade"
)

func newRunCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Drive the bridge from a simulated host clock",
		Long: "Run processes blocks at sample_rate/block_size, optionally animating " +
			"controls with phase-shifted LFOs, until interrupted. Editing osc.address " +
			"or osc.port in the config file retargets the running bridge.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBridge(cmd.Context(), v)
		},
	}
	f := cmd.Flags()
	f.Float64("sample-rate", 48000, "host sample rate in Hz")
	f.Int("block-size", 512, "samples per block")
	f.Int("workers", 1, "background workers; 1 keeps sends in order")
	f.Int("queue-capacity", 0, "ordered task queue capacity (0 uses the default)")
	f.Bool("cpu-affinity", false, "pin the block thread and workers")
	f.Int("cpu-base", 0, "first CPU used when pinning")
	f.Float64("smoothing-ms", 0, "linear smoothing time in milliseconds")
	f.String("state", "", "state file restored at start and saved on exit")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	f.Float64("lfo-rate", 0, "LFO rate in Hz (0 disables automation)")
	f.Int("lfo-controls", 8, "number of controls animated by the LFO")
	f.Duration("stats-interval", 10*time.Second, "interval between stats log lines (0 disables)")
	for key, name := range map[string]string{
		keySampleRate:    "sample-rate",
		keyBlockSize:     "block-size",
		keyWorkers:       "workers",
		keyQueueCapacity: "queue-capacity",
		keyCPUAffinity:   "cpu-affinity",
		keyCPUBase:       "cpu-base",
		keySmoothing:     "smoothing-ms",
		keyState:         "state",
		keyMetricsAddr:   "metrics-addr",
		keyLFORate:       "lfo-rate",
		keyLFOControls:   "lfo-controls",
		keyStatsInterval: "stats-interval",
	} {
		mustBind(v, key, f.Lookup(name))
	}
	return cmd
}

func runBridge(parent context.Context, v *viper.Viper) (err error) {
	cfg, err := configFromViper(v)
	if err != nil {
		return err
	}
	s, err := facade.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, s.Shutdown())
	}()
	if err := s.Start(); err != nil {
		return err
	}
	if rate := v.GetFloat64(keyLFORate); rate > 0 {
		s.SetAutomation(facade.NewAutomation(rate, v.GetInt(keyLFOControls)))
	}
	watchEndpoint(v, s)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.Run(gctx) })

	if addr := v.GetString(keyMetricsAddr); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(s.Metrics().Registry(), promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			logrus.WithFields(logrus.Fields{"function": "runBridge", "addr": addr}).Info("Serving metrics")
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if interval := v.GetDuration(keyStatsInterval); interval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					logrus.WithFields(logrus.Fields(s.Metrics().GetSnapshot())).Info("Bridge stats")
				}
			}
		})
	}

	logrus.WithFields(logrus.Fields{
		"function":    "runBridge",
		"destination": s.Endpoint().Destination(),
		"block":       cfg.BlockDuration().String(),
		"workers":     cfg.NumWorkers,
	}).Info("Bridge running")
	return g.Wait()
}

// watchEndpoint retargets the bridge when the config file changes.
func watchEndpoint(v *viper.Viper, s *facade.SpaceRadio) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		addr := v.GetString(keyAddress)
		port := v.GetInt(keyPort)
		fields := logrus.Fields{
			"function": "watchEndpoint",
			"file":     e.Name,
			"address":  addr,
			"port":     port,
		}
		if port < 0 || port > 65535 {
			logrus.WithFields(fields).Warn("Ignoring out of range port")
			return
		}
		if err := s.GetControl().SetEndpoint(addr, uint16(port)); err != nil {
			fields["error"] = err.Error()
			logrus.WithFields(fields).Warn("Ignoring invalid endpoint")
			return
		}
		logrus.WithFields(fields).Info("Endpoint reloaded")
	})
	v.WatchConfig()
}
