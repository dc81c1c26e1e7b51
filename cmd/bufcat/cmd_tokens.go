package main

import (
	"bufio"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/calvinalkan/parsebuf"
)

func newTokensCmd(flags *globalFlags) *cobra.Command {
	var (
		delims  string
		perLine bool
	)

	cmd := &cobra.Command{
		Use:   "tokens [path]",
		Short: "Print one token per line",
		Long: `Print one token per output line.

By default tokens run across line ends. With --per-line, line ends are not
delimiters: each input line end is printed as an empty output line, the way a
record parser would see it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := flags.open(cmd, args)
			if err != nil {
				return err
			}
			defer b.Close()

			set := strings.Trim(delims, "\r\n")
			if !perLine {
				set += "\r\n"
			}

			out := bufio.NewWriter(cmd.OutOrStdout())

			for tok, err := range b.Tokens(set) {
				if errors.Is(err, parsebuf.ErrEndOfLine) {
					out.WriteByte('\n')

					continue
				}

				if err != nil {
					return err
				}

				out.Write(tok)
				out.WriteByte('\n')
			}

			err = out.Flush()
			if err != nil {
				return err
			}

			return b.Close()
		},
	}

	cmd.Flags().StringVarP(&delims, "delims", "d", " \t", "delimiter bytes")
	cmd.Flags().BoolVar(&perLine, "per-line", false, "treat line ends as record boundaries")

	return cmd
}
