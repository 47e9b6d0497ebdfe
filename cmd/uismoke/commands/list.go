// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"uismoke/internal/testing"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [pattern...]",
		Short: "List registered tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			tests, err := testing.Select(testing.RegisteredTests(), args)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			for _, t := range tests {
				fmt.Fprintf(w, "%s\t%s\n", t.Name, t.Desc)
			}
			return w.Flush()
		},
	}
}
