// Bufcat reads an input through parsebuf and prints its lines, tokens or
// buffering statistics. It is a debugging aid for parsers built on the
// package: what bufcat prints is exactly what a parser would see.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:          "bufcat",
		Short:        "Inspect inputs the way parsebuf reads them",
		SilenceUsage: true,
	}

	flags.bind(rootCmd)

	rootCmd.AddCommand(newLinesCmd(flags))
	rootCmd.AddCommand(newTokensCmd(flags))
	rootCmd.AddCommand(newStatCmd(flags))

	return rootCmd
}
