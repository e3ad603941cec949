package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luma/boingscope/internal/meta"
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		info := meta.GetInfo()

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "boingscope %s\n", info.Version)
		fmt.Fprintf(w, "  build:    %s (%s)\n", info.Build, info.Branch)
		fmt.Fprintf(w, "  built:    %s\n", info.BuildTime)
		fmt.Fprintf(w, "  platform: %s\n", info.Platform)
		fmt.Fprintf(w, "  go:       %s %s\n", info.GoVersion, info.GoTag)
	},
}
