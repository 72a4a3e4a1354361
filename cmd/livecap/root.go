package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asadnewbie/livecap/pkg/capture"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "livecap",
		Short:   "Capture live audio from microphones and system loopback devices",
		Version: fmt.Sprintf("%s (%s)", Version, Commit),

		SilenceUsage: true,
	}

	root.AddCommand(newDevicesCmd())
	root.AddCommand(newRecordCmd())
	return root
}

func parseKind(s string) (capture.DeviceKind, error) {
	switch s {
	case "input", "":
		return capture.KindInput, nil
	case "loopback":
		return capture.KindLoopback, nil
	default:
		return 0, fmt.Errorf("unknown capture kind %q (want input or loopback)", s)
	}
}
