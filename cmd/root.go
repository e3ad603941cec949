package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luma/boingscope/cmd/gen"
)

var RootCmd = &cobra.Command{
	Use:   "boingscope",
	Short: "View the display of a microcontroller streamed over serial",
	Long: `boingscope decodes the frame and palette blocks a microcontroller
prints over its serial console and shows the result in a browser.`,
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(ViewCmd)
	RootCmd.AddCommand(EmulateCmd)
	RootCmd.AddCommand(PortsCmd)
	RootCmd.AddCommand(VersionCmd)
	RootCmd.AddCommand(gen.RootCmd)
}

// Execute runs the root command, exiting non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
