package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luma/boingscope/transport"
)

var PortsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List the serial ports a device could be attached to",
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := transport.ListPorts()
		if err != nil {
			return err
		}

		if len(ports) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No serial ports found")
			return nil
		}

		for _, port := range ports {
			fmt.Fprintln(cmd.OutOrStdout(), port)
		}

		return nil
	},
}
