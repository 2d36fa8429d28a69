// File: cmd/spaceradio/version.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/momentics/spaceradio/bridge"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := bridge.PluginInfo()
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s) by %s <%s>\n",
				info.Name, info.Version, info.ClapID, info.Vendor, info.URL)
			return err
		},
	}
}
