// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/luxfi/coordinator/config"
	"github.com/luxfi/coordinator/deployment"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a scenario against a simulated deployment",
		Long: `Deploy a canonical coordinator, its remote coordinators and their bridges
on an in-process network, run the configured scenario and print a JSON report.

The config file is read from --config-file or the CONFIG_FILE environment
variable.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := config.BuildViper(cmd.Flags())
			if err != nil {
				return fmt.Errorf("couldn't configure flags: %w", err)
			}
			cfg, err := config.NewConfig(v)
			if err != nil {
				return fmt.Errorf("couldn't build config: %w", err)
			}

			d, err := deployment.Build(cfg, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			report, err := d.Run(cmd.Context())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().AddFlagSet(config.BuildFlagSet())
	return cmd
}
