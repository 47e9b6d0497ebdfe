// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"uismoke/android/adb"
)

func devicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List devices known to adb",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			devs, err := adb.Devices(cmd.Context(), cfg.ADB)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "SERIAL\tSTATE\tCONNECTION\tMODEL")
			for _, d := range devs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Serial, d.State, d.ConnType, d.Model)
			}
			return w.Flush()
		},
	}
}
