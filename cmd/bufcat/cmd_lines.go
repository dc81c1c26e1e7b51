package main

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"
)

func newLinesCmd(flags *globalFlags) *cobra.Command {
	var number bool

	cmd := &cobra.Command{
		Use:   "lines [path]",
		Short: "Print every line with its terminator normalised to \\n",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := flags.open(cmd, args)
			if err != nil {
				return err
			}
			defer b.Close()

			out := bufio.NewWriter(cmd.OutOrStdout())

			n := 0
			for line, err := range b.Lines() {
				if err != nil {
					return err
				}

				n++
				if number {
					fmt.Fprintf(out, "%6d\t", n)
				}

				out.Write(line)
				out.WriteByte('\n')
			}

			err = out.Flush()
			if err != nil {
				return err
			}

			return b.Close()
		},
	}

	cmd.Flags().BoolVarP(&number, "number", "n", false, "number output lines")

	return cmd
}
