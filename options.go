package parsebuf

import (
	"io"

	"github.com/charmbracelet/log"
)

// Option configures the Open functions.
// Options are applied in order.
type Option func(*options)

type options struct {
	PageSize       int
	SlurpThreshold int64
	Logger         *log.Logger
	Stderr         io.Writer
	Inflate        bool
	GzipCommand    string
}

const (
	// defaultPageSize is used when the file system reports no block size.
	defaultPageSize = 4096
	minPageSize     = 512
	maxPageSize     = 4 << 20

	// defaultSlurpThreshold is the largest regular file that is read into
	// the heap instead of being memory-mapped.
	defaultSlurpThreshold = 256 << 10

	// defaultGzipCommand decompresses .gz inputs in [Open]. %s is replaced by
	// the shell-quoted path.
	defaultGzipCommand = "gzip -dc %s"

	// stderrTailSize bounds the command stderr kept for diagnostics.
	stderrTailSize = 4096
)

// WithPageSize sets the preferred read-chunk size for Stream and Pipe inputs.
//
// By default the size comes from the file system block size of the input
// (st_blksize) when it can be determined, otherwise 4 KiB. The value is
// clamped to [512 B, 4 MiB].
//
// Values <= 0 use the default.
func WithPageSize(n int) Option {
	return func(o *options) {
		o.PageSize = n
	}
}

// WithSlurpThreshold sets the file size below which [OpenFile] reads the whole
// file into memory instead of mapping it.
//
// # Default
//
// 256 KiB. Mapping small files costs more in syscalls and page faults than
// copying them.
//
// Values <= 0 use the default.
func WithSlurpThreshold(n int64) Option {
	return func(o *options) {
		o.SlurpThreshold = n
	}
}

// WithLogger sets the logger used for debug events: strategy selection,
// pipe reclassification, window growth and source repositioning.
//
// Nothing is logged on the per-line or per-token paths. A nil logger
// disables logging, which is the default.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.Logger = l
	}
}

// WithStderr routes the standard error of pipe commands to w.
//
// If unset, the last few KiB of stderr are captured and attached to the
// [*Error] returned when the command fails.
func WithStderr(w io.Writer) Option {
	return func(o *options) {
		o.Stderr = w
	}
}

// WithInflate makes [Open] decompress .gz, .zst, .xz and .bz2 files in
// process instead of running an external decompressor. The result is a
// Stream buffer that owns both the decoder and the file.
func WithInflate() Option {
	return func(o *options) {
		o.Inflate = true
	}
}

// WithGzipCommand overrides the command template [Open] uses for .gz files.
// The template must contain one %s, which is replaced by the quoted path.
//
// Empty uses the default, "gzip -dc %s".
func WithGzipCommand(template string) Option {
	return func(o *options) {
		o.GzipCommand = template
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return withDefaults(o)
}

func withDefaults(o options) options {
	if o.PageSize > 0 {
		o.PageSize = clampPageSize(o.PageSize)
	}

	if o.SlurpThreshold <= 0 {
		o.SlurpThreshold = defaultSlurpThreshold
	}

	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}

	if o.GzipCommand == "" {
		o.GzipCommand = defaultGzipCommand
	}

	return o
}

// pageSizeFor returns the configured page size, or the block size hint when
// none was configured.
func (o options) pageSizeFor(blockSize int64) int {
	if o.PageSize > 0 {
		return o.PageSize
	}

	if blockSize <= 0 {
		return defaultPageSize
	}

	return clampPageSize(int(min(blockSize, maxPageSize)))
}

func clampPageSize(n int) int {
	return min(max(n, minPageSize), maxPageSize)
}
