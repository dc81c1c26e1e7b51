package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newStatCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stat [path]",
		Short: "Report how an input is buffered, with its size and line count",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := flags.open(cmd, args)
			if err != nil {
				return err
			}
			defer b.Close()

			mode := b.Mode()

			var lines int64
			for _, err := range b.Lines() {
				if err != nil {
					return err
				}

				lines++
			}

			size := b.Position()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mode:      %s\n", mode)
			fmt.Fprintf(out, "page size: %s\n", humanize.IBytes(uint64(b.PageSize())))
			fmt.Fprintf(out, "bytes:     %s (%s)\n", humanize.IBytes(uint64(size)), humanize.Comma(size))
			fmt.Fprintf(out, "lines:     %s\n", humanize.Comma(lines))

			if name := b.Filename(); name != "" {
				fmt.Fprintf(out, "file:      %s\n", name)
			}

			if command := b.Command(); command != "" {
				fmt.Fprintf(out, "command:   %s\n", command)
			}

			return b.Close()
		},
	}
}
