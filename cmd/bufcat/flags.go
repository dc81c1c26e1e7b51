package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/calvinalkan/parsebuf"
)

const stdinPath = "-"

var errNoPlaceholder = errors.New("gzip command must contain %s")

// globalFlags are shared by every subcommand.
type globalFlags struct {
	searchEnv      string
	pageSize       string
	slurpThreshold string
	inflate        bool
	gzipCmd        string
	verbose        bool
}

func (f *globalFlags) bind(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.searchEnv, "search-env", "", "environment variable holding directories to search for the input")
	pf.StringVar(&f.pageSize, "page-size", "", "read chunk size for streams and pipes (e.g. 64KiB)")
	pf.StringVar(&f.slurpThreshold, "slurp-threshold", "", "files smaller than this are read into memory instead of mapped")
	pf.BoolVar(&f.inflate, "inflate", false, "decode .gz, .zst, .xz and .bz2 in process")
	pf.StringVar(&f.gzipCmd, "gzip-cmd", "", "command used to decompress .gz inputs (default \"gzip -dc %s\")")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "log buffering decisions to stderr")
}

// options converts the flags into parsebuf options.
func (f *globalFlags) options(cmd *cobra.Command) ([]parsebuf.Option, error) {
	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Prefix: "bufcat"})
	if f.verbose {
		logger.SetLevel(log.DebugLevel)
	}

	opts := []parsebuf.Option{parsebuf.WithLogger(logger)}

	if f.pageSize != "" {
		n, err := humanize.ParseBytes(f.pageSize)
		if err != nil {
			return nil, fmt.Errorf("--page-size: %w", err)
		}

		opts = append(opts, parsebuf.WithPageSize(int(n)))
	}

	if f.slurpThreshold != "" {
		n, err := humanize.ParseBytes(f.slurpThreshold)
		if err != nil {
			return nil, fmt.Errorf("--slurp-threshold: %w", err)
		}

		opts = append(opts, parsebuf.WithSlurpThreshold(int64(n)))
	}

	if f.inflate {
		opts = append(opts, parsebuf.WithInflate())
	}

	if f.gzipCmd != "" {
		err := validateCommandTemplate(f.gzipCmd)
		if err != nil {
			return nil, fmt.Errorf("--gzip-cmd: %w", err)
		}

		opts = append(opts, parsebuf.WithGzipCommand(f.gzipCmd))
	}

	return opts, nil
}

// validateCommandTemplate checks that tmpl is a well-formed shell command
// with a %s word for the path.
func validateCommandTemplate(tmpl string) error {
	words, err := shellquote.Split(tmpl)
	if err != nil {
		return err
	}

	for _, w := range words {
		if strings.Contains(w, "%s") {
			return nil
		}
	}

	return errNoPlaceholder
}

// open opens the input named by args (stdin when absent or "-").
func (f *globalFlags) open(cmd *cobra.Command, args []string) (*parsebuf.Buffer, error) {
	opts, err := f.options(cmd)
	if err != nil {
		return nil, err
	}

	path := stdinPath
	if len(args) > 0 {
		path = args[0]
	}

	if path == stdinPath {
		return parsebuf.OpenStream(cmd.InOrStdin(), opts...)
	}

	return parsebuf.Open(path, f.searchEnv, opts...)
}
