// Parsebufbench measures parse throughput of one input through parsebuf.
//
// Each run opens the input with a chosen strategy, drains it with a chosen
// parser (lines, tokens or fixed-size records) and reports bytes per second.
// Results can be appended to a JSONL file for later comparison.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/calvinalkan/parsebuf"
)

type benchResult struct {
	Timestamp time.Time `json:"ts"`

	Case  string `json:"case,omitempty"`
	Notes string `json:"notes,omitempty"`

	File     string `json:"file"`
	Strategy string `json:"strategy"`
	Mode     string `json:"mode"`
	Parse    string `json:"parse"`
	PageSize int    `json:"page_size"`

	Repeat    int `json:"repeat"`
	GCPercent int `json:"gc"`

	Bytes       int64         `json:"bytes"`
	Records     int64         `json:"records"`
	Duration    time.Duration `json:"duration"`
	BytesPerSec float64       `json:"bytes_per_sec"`

	GoVersion   string `json:"go"`
	GOOS        string `json:"goos"`
	GOARCH      string `json:"goarch"`
	VCSRevision string `json:"vcs_revision,omitempty"`
	VCSModified bool   `json:"vcs_modified,omitempty"`
}

const (
	strategyAuto   = "auto"
	strategySlurp  = "slurp"
	strategyMmap   = "mmap"
	strategyStream = "stream"
	strategyPipe   = "pipe"

	parseLines  = "lines"
	parseTokens = "tokens"
	parseBytes  = "bytes"

	recordSize = 4096
)

type benchFlags struct {
	file       string
	strategy   string
	parse      string
	pageSize   string
	repeat     int
	gcPercent  int
	quiet      bool
	caseName   string
	notes      string
	out        string
	cpuProfile string
}

func parseFlags() *benchFlags {
	flags := &benchFlags{}

	flag.StringVar(&flags.file, "file", "", "input file")
	flag.StringVar(&flags.strategy, "strategy", strategyAuto, "open strategy: auto | slurp | mmap | stream | pipe")
	flag.StringVar(&flags.parse, "parse", parseLines, "parser: lines | tokens | bytes")
	flag.StringVar(&flags.pageSize, "page-size", "", "read chunk size for stream and pipe (e.g. 64KiB)")
	flag.IntVar(&flags.repeat, "repeat", 1, "parse the input N times")
	flag.IntVar(&flags.gcPercent, "gc", -1, "if >=0, call debug.SetGCPercent(gc)")
	flag.BoolVar(&flags.quiet, "q", false, "quiet: print only bytes/sec")
	flag.StringVar(&flags.caseName, "case", "", "optional short case name to store in JSON output")
	flag.StringVar(&flags.notes, "notes", "", "optional freeform notes to store in JSON output")
	flag.StringVar(&flags.out, "out", "", "optional JSONL output file to append one result per run")
	flag.StringVar(&flags.cpuProfile, "cpuprofile", "", "write CPU profile to file")

	return flags
}

func main() {
	flags := parseFlags()

	flag.Parse()

	os.Exit(run(flags, os.Stdout, os.Stderr))
}

func run(flags *benchFlags, stdout, stderr io.Writer) int {
	if flags.file == "" {
		fmt.Fprintln(stderr, "-file is required")

		return 2
	}

	if flags.repeat <= 0 {
		fmt.Fprintln(stderr, "-repeat must be >= 1")

		return 2
	}

	flags.strategy = strings.ToLower(strings.TrimSpace(flags.strategy))

	opts, err := strategyOptions(flags.strategy)
	if err != nil {
		fmt.Fprintln(stderr, err)

		return 2
	}

	parse, err := parserFor(flags.parse)
	if err != nil {
		fmt.Fprintln(stderr, err)

		return 2
	}

	if flags.pageSize != "" {
		n, err := humanize.ParseBytes(flags.pageSize)
		if err != nil {
			fmt.Fprintf(stderr, "invalid -page-size: %v\n", err)

			return 2
		}

		opts = append(opts, parsebuf.WithPageSize(int(n)))
	}

	if flags.gcPercent >= 0 {
		debug.SetGCPercent(flags.gcPercent)
	}

	if flags.cpuProfile != "" {
		cpuFile, err := os.Create(flags.cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "error creating cpuprofile: %v\n", err)

			return 1
		}

		err = pprof.StartCPUProfile(cpuFile)
		if err != nil {
			_ = cpuFile.Close()

			fmt.Fprintf(stderr, "error starting cpuprofile: %v\n", err)

			return 1
		}

		defer func() {
			pprof.StopCPUProfile()

			_ = cpuFile.Close()
		}()
	}

	res := benchResult{
		Case:      flags.caseName,
		Notes:     flags.notes,
		File:      flags.file,
		Strategy:  flags.strategy,
		Parse:     flags.parse,
		Repeat:    flags.repeat,
		GCPercent: flags.gcPercent,
	}

	start := time.Now()

	for range flags.repeat {
		b, release, err := openWith(flags.strategy, flags.file, opts)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)

			return 1
		}

		res.Mode = b.Mode().String()
		res.PageSize = b.PageSize()

		records, err := parse(b)
		if err != nil {
			_ = release()

			fmt.Fprintf(stderr, "error: %v\n", err)

			return 1
		}

		res.Records += records
		res.Bytes += b.Position()

		err = release()
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)

			return 1
		}
	}

	res.Duration = time.Since(start)
	res.BytesPerSec = float64(res.Bytes) / res.Duration.Seconds()
	res.Timestamp = time.Now()
	res.GOOS = runtime.GOOS
	res.GOARCH = runtime.GOARCH

	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		res.GoVersion = bi.GoVersion
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				res.VCSRevision = setting.Value
			case "vcs.modified":
				res.VCSModified = setting.Value == "true"
			}
		}
	}

	if flags.out != "" {
		err := appendJSONL(flags.out, &res)
		if err != nil {
			fmt.Fprintf(stderr, "error writing -out: %v\n", err)

			return 1
		}
	}

	if flags.quiet {
		fmt.Fprintf(stdout, "%.0f\n", res.BytesPerSec)

		return 0
	}

	fmt.Fprintf(stdout, "mode=%s parse=%s records=%d bytes=%s repeat=%d duration=%v throughput=%s/s\n",
		res.Mode, res.Parse, res.Records, humanize.IBytes(uint64(res.Bytes)), res.Repeat, res.Duration,
		humanize.IBytes(uint64(res.BytesPerSec)))

	return 0
}

// strategyOptions maps a strategy name to the options that force it.
func strategyOptions(strategy string) ([]parsebuf.Option, error) {
	switch strategy {
	case strategyAuto, strategyStream, strategyPipe:
		return nil, nil
	case strategySlurp:
		return []parsebuf.Option{parsebuf.WithSlurpThreshold(1 << 62)}, nil
	case strategyMmap:
		return []parsebuf.Option{parsebuf.WithSlurpThreshold(1)}, nil
	default:
		return nil, fmt.Errorf("invalid -strategy %q (expected: auto | slurp | mmap | stream | pipe)", strategy)
	}
}

// openWith opens path with the given strategy. The returned release closes
// the buffer and anything opened on its behalf.
func openWith(strategy, path string, opts []parsebuf.Option) (*parsebuf.Buffer, func() error, error) {
	var (
		b   *parsebuf.Buffer
		err error
	)

	switch strategy {
	case strategyStream:
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}

		b, err = parsebuf.OpenStream(f, opts...)
		if err != nil {
			_ = f.Close()

			return nil, nil, err
		}

		return b, func() error {
			return errors.Join(b.Close(), f.Close())
		}, nil
	case strategyPipe:
		b, err = parsebuf.OpenPipe("cat %s", path, opts...)
	default:
		b, err = parsebuf.OpenFile(path, opts...)
	}

	if err != nil {
		return nil, nil, err
	}

	return b, b.Close, nil
}

type parseFunc func(b *parsebuf.Buffer) (int64, error)

func parserFor(name string) (parseFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case parseLines:
		return func(b *parsebuf.Buffer) (int64, error) {
			var n int64
			for _, err := range b.Lines() {
				if err != nil {
					return n, err
				}

				n++
			}

			return n, nil
		}, nil

	case parseTokens:
		return func(b *parsebuf.Buffer) (int64, error) {
			var n int64
			for _, err := range b.Tokens(" \t\r\n") {
				if err != nil {
					return n, err
				}

				n++
			}

			return n, nil
		}, nil

	case parseBytes:
		return func(b *parsebuf.Buffer) (int64, error) {
			var n int64
			for {
				_, err := b.Next(recordSize)
				if errors.Is(err, io.EOF) {
					return n, nil
				}

				if errors.Is(err, io.ErrUnexpectedEOF) {
					// Trailing partial record.
					view, perr := b.Peek()
					if perr != nil {
						return n, perr
					}

					return n + 1, b.Commit(len(view))
				}

				if err != nil {
					return n, err
				}

				n++
			}
		}, nil

	default:
		return nil, fmt.Errorf("invalid -parse %q (expected: lines | tokens | bytes)", name)
	}
}

func appendJSONL(path string, res *benchResult) error {
	outFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}

	defer func() { _ = outFile.Close() }()

	writer := bufio.NewWriter(outFile)
	enc := json.NewEncoder(writer)
	enc.SetEscapeHTML(false)

	err = enc.Encode(res)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	err = writer.Flush()
	if err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
