package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asadnewbie/livecap/internal/config"
	"github.com/asadnewbie/livecap/internal/logging"
	"github.com/asadnewbie/livecap/pkg/capture"
)

func newDevicesCmd() *cobra.Command {
	var kindFlag string

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List capture-capable devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log := logging.NewWithLevel(cfg.LogLevel)

			kind, err := parseKind(kindFlag)
			if err != nil {
				return err
			}

			eng, err := capture.NewEngine(log)
			if err != nil {
				return err
			}
			defer eng.Close()

			devs := eng.ListDevices(kind)
			if len(devs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no %s devices found\n", kind)
				return nil
			}
			for _, d := range devs {
				marker := " "
				if d.Default {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, d.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "input", "device kind: input or loopback")
	return cmd
}
