// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package commands

import (
	"context"

	"github.com/spf13/cobra"

	"uismoke/internal/config"
)

var (
	configPath string
	flagCfg    config.Config
	varFlags   []string
	verbose    bool

	// cfg is the configuration file merged with flags.
	cfg *config.Config
)

// Execute runs the uismoke CLI.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "uismoke",
		Short: "Android UI smoke tests driven by UI Automator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(configPath)
			if err != nil {
				return err
			}
			vars, err := config.ParseVars(varFlags)
			if err != nil {
				return err
			}
			o := flagCfg
			o.Vars = vars
			c.Merge(&o)
			cfg = c
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&flagCfg.ADB, "adb", "", "adb executable (default adb)")
	root.PersistentFlags().StringVarP(&flagCfg.Serial, "serial", "s", "", "serial of the device to use (default the only online device)")
	root.PersistentFlags().StringVar(&flagCfg.OutDir, "outdir", "", "directory for results (default "+config.DefaultOutDir+")")
	root.PersistentFlags().StringSliceVar(&flagCfg.ServerAPKs, "server-apk", nil, "UI Automator server APKs to install if missing")
	root.PersistentFlags().StringVar(&flagCfg.UIServer, "ui-server", "", "host:port of an already running, forwarded UI Automator server")
	root.PersistentFlags().StringArrayVar(&varFlags, "var", nil, "runtime variable as key=value; may be repeated")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level, including UI Automator RPC traffic")

	root.SilenceUsage = true
	root.AddCommand(listCmd(), runCmd(), devicesCmd())
	return root
}
