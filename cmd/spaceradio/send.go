// File: cmd/spaceradio/send.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/momentics/spaceradio/facade"
)

func newSendCommand(v *viper.Viper) *cobra.Command {
	var (
		index int
		value float32
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Write one control and send it through the full pipeline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sendOnce(v, index, value, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&index, "index", 0, "control index (0-based, becomes the OSC address)")
	cmd.Flags().Float32Var(&value, "value", 0, "control value")
	return cmd
}

func sendOnce(v *viper.Viper, index int, value float32, out io.Writer) (err error) {
	cfg, err := configFromViper(v)
	if err != nil {
		return err
	}
	cfg.StatePath = ""
	cfg.NumWorkers = 1
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
	if !s.Bridge().SenderAvailable() {
		return fmt.Errorf("no OSC sender bound at %s", cfg.LocalAddr)
	}
	if err := s.Set(index, value); err != nil {
		return err
	}
	if err := s.RunBlock(); err != nil {
		return err
	}
	sent, _ := s.Bridge().Bank().Value(index)
	_, err = fmt.Fprintf(out, "/%d %g -> %s\n", index, sent, s.Endpoint().Destination())
	return err
}
