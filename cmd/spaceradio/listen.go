// File: cmd/spaceradio/listen.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/momentics/spaceradio/control"
	"github.com/momentics/spaceradio/transport"
)

func newListenCommand(v *viper.Viper) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print OSC control updates received on the destination endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			port := v.GetInt(keyPort)
			if port < 0 || port > 65535 {
				return fmt.Errorf("port %d out of range", port)
			}
			ep := control.Endpoint{Address: v.GetString(keyAddress), Port: uint16(port)}
			conn, err := net.ListenPacket("udp", ep.Destination())
			if err != nil {
				return fmt.Errorf("listen on %s: %w", ep, err)
			}
			logrus.WithFields(logrus.Fields{
				"function": "listen",
				"addr":     conn.LocalAddr().String(),
			}).Info("Listening for OSC updates")
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serveListen(ctx, conn, cmd.OutOrStdout(), count)
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "exit after this many updates (0 runs until interrupted)")
	return cmd
}

// serveListen prints one line per decoded update until ctx ends, count
// updates arrive, or conn fails. It closes conn.
func serveListen(ctx context.Context, conn net.PacketConn, out io.Writer, count int) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		conn.Close()
	}()

	buf := make([]byte, 65535)
	for received := 0; count <= 0 || received < count; {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		index, value, err := transport.DecodeUpdate(buf[:n])
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "serveListen",
				"from":     from.String(),
				"error":    err.Error(),
			}).Warn("Ignoring datagram")
			continue
		}
		if _, err := fmt.Fprintf(out, "%s /%d %g\n", from, index, value); err != nil {
			return err
		}
		received++
	}
	return nil
}
