// File: cmd/spaceradio/main.go
// Package main
// Command spaceradio drives the OSC bridge without a plugin host: it runs a
// simulated block clock with LFO automation, sends one-off updates, and
// listens for updates for debugging receivers.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logrus.WithError(err).Error("spaceradio failed")
		os.Exit(1)
	}
}
