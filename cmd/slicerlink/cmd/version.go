package cmd

import (
	"runtime"

	"slicerlink/internal/constants"
	"slicerlink/internal/output"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the version of the CLI",
	Run: func(_ *cobra.Command, _ []string) {
		output.KeyValue("CLI version", *constants.GetVersion())
		output.KeyValue("Platform", runtime.GOOS+"/"+runtime.GOARCH)
		output.KeyValue("Formats", formatList())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
