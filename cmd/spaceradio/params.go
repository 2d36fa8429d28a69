// File: cmd/spaceradio/params.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/momentics/spaceradio/bridge"
)

func newParamsCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "List host-visible parameters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := bridge.New(bridge.Config{Controls: v.GetInt(keyControls)}, bridge.WithoutSender())
			if err != nil {
				return err
			}
			defer b.Shutdown()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "INDEX\tID\tNAME\tKIND\tDEFAULT\tRANGE\tAUTOMATABLE")
			for _, p := range b.Params() {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%g\t[%g, %g]\t%t\n",
					p.Index, p.ID, p.Name, p.Kind, p.Default, p.Min, p.Max, p.Automatable())
			}
			return w.Flush()
		},
	}
}
