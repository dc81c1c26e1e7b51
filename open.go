package parsebuf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"unsafe"

	"github.com/kballard/go-shellquote"
)

// AutoLength tells [OpenMemory] to take the input up to the first NUL byte
// (or the whole slice if it has none).
const AutoLength = -1

// Open opens a named input.
//
// path "-" reads standard input as a stream; standard input is borrowed and
// left open by Close. Any other path is looked up in the working directory,
// then in each directory of the colon-separated list held by the
// environment variable searchEnv (skipped when searchEnv is empty).
//
// A resolved path ending in ".gz" is decompressed by a command
// ("gzip -dc %s" by default, see [WithGzipCommand]) through [OpenPipe].
// With [WithInflate], .gz, .zst, .xz and .bz2 files are decoded in process
// instead. Everything else goes through [OpenFile].
//
// If nothing is found, Open returns an [*Error] wrapping [ErrNotFound].
func Open(path, searchEnv string, opts ...Option) (*Buffer, error) {
	o := applyOptions(opts)

	if path == "-" {
		b := newBuffer(o)
		b.filename = "-"
		b.pageSize = o.pageSizeFor(fileBlockSize(os.Stdin))

		err := b.initStream(borrowedSource{r: os.Stdin}, ModeStream)
		if err != nil {
			return nil, err
		}

		return b, nil
	}

	resolved, ok := findFile(path, searchEnv)
	if !ok {
		return nil, &Error{Op: "open", Path: path, Err: ErrNotFound}
	}

	if o.Inflate {
		if dec := decoderFor(resolved); dec != nil {
			return openInflated(resolved, dec, o)
		}
	}

	if strings.HasSuffix(resolved, ".gz") {
		return openPipe(o.GzipCommand, resolved, o)
	}

	return openFile(resolved, o)
}

// OpenFile opens a file and picks a strategy by size:
//
//	regular, size < slurp threshold   read whole into memory  (ModeEntireFile)
//	regular, size >= slurp threshold  mapped read-only         (ModeEntireFile)
//	size unknown (FIFO, device, ...)  streamed in pages        (ModeStream)
//
// On platforms without mmap, large files are streamed. The slurp threshold
// is set with [WithSlurpThreshold].
func OpenFile(path string, opts ...Option) (*Buffer, error) {
	return openFile(path, applyOptions(opts))
}

func openFile(path string, o options) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()

		return nil, &Error{Op: "stat", Path: path, Err: fmt.Errorf("%w: %w", ErrOpenFailed, err)}
	}

	if info.IsDir() {
		_ = f.Close()

		return nil, &Error{Op: "open", Path: path, Err: fmt.Errorf("%w: is a directory", ErrOpenFailed)}
	}

	b := newBuffer(o)
	b.filename = path
	b.pageSize = o.pageSizeFor(fileBlockSize(f))

	if !info.Mode().IsRegular() {
		return b.streamFile(f)
	}

	size := info.Size()

	if size < o.SlurpThreshold {
		defer f.Close()

		err = b.slurp(f, size)
		if err != nil {
			return nil, err
		}

		return b, nil
	}

	data, err := mapFile(f, size)
	if errors.Is(err, errMapUnsupported) {
		return b.streamFile(f)
	}

	_ = f.Close()

	if err != nil {
		return nil, &Error{Op: "mmap", Path: path, Err: fmt.Errorf("%w: %w", ErrOpenFailed, err)}
	}

	b.mem = data
	b.n = len(data)
	b.store = storeMapped
	b.mode = ModeEntireFile
	b.logger.Debug("opened", "file", path, "strategy", "mmap", "size", size)

	return b, nil
}

// slurp reads the whole of r into an owned window. size is a hint; files
// that grow or shrink while being read are handled.
func (b *Buffer) slurp(r io.Reader, size int64) error {
	var buf bytes.Buffer
	if size > 0 {
		buf.Grow(int(size) + 1)
	}

	_, err := buf.ReadFrom(r)
	if err != nil {
		return b.newError("read", fmt.Errorf("%w: %w", ErrOpenFailed, err))
	}

	b.mem = buf.Bytes()
	b.n = len(b.mem)
	b.store = storeHeap
	b.mode = ModeEntireFile
	b.logger.Debug("opened", "file", b.filename, "strategy", "slurp", "size", b.n)

	return nil
}

// streamFile turns b into a Stream over a file it owns.
func (b *Buffer) streamFile(f *os.File) (*Buffer, error) {
	adviseSequential(f)

	err := b.initStream(&ownedSource{r: f, closers: []io.Closer{f}}, ModeStream)
	if err != nil {
		_ = f.Close()

		return nil, err
	}

	b.logger.Debug("opened", "file", b.filename, "strategy", "stream", "page_size", b.pageSize)

	return b, nil
}

// initStream attaches src and performs the initial page read.
func (b *Buffer) initStream(src source, mode Mode) error {
	b.src = src
	b.mode = mode
	b.store = storeHeap

	err := b.ensure(b.pageSize)
	if err != nil && !errors.Is(err, io.EOF) {
		b.src = nil
		b.mode = ModeUnset

		return err
	}

	return nil
}

// OpenMemory wraps caller-owned bytes. Nothing is copied or allocated and
// ownership stays with the caller, who must not modify data while the buffer
// is in use.
//
// n is the input length; [AutoLength] uses data up to its first NUL byte.
func OpenMemory(data []byte, n int, opts ...Option) (*Buffer, error) {
	switch {
	case n == AutoLength:
		if i := bytes.IndexByte(data, 0); i >= 0 {
			data = data[:i]
		}
	case n < 0 || n > len(data):
		return nil, &Error{Op: "open", Path: "<memory>", Err: fmt.Errorf("%w: length %d of %d-byte slice", ErrOpenFailed, n, len(data))}
	default:
		data = data[:n]
	}

	b := newBuffer(applyOptions(opts))
	b.mem = data
	b.n = len(data)
	b.store = storeBorrowed
	b.mode = ModeString

	return b, nil
}

// OpenString wraps a string without copying it.
func OpenString(s string, opts ...Option) (*Buffer, error) {
	return OpenMemory(unsafe.Slice(unsafe.StringData(s), len(s)), len(s), opts...)
}

// OpenStream wraps a reader the caller already opened. The reader is
// borrowed: Close does not close it.
//
// If r is an [io.Seeker] (for example an *os.File on a regular file),
// [Buffer.SetPosition] can rewind behind the window.
func OpenStream(r io.Reader, opts ...Option) (*Buffer, error) {
	o := applyOptions(opts)

	b := newBuffer(o)
	if f, ok := r.(*os.File); ok {
		b.filename = f.Name()
		b.pageSize = o.pageSizeFor(fileBlockSize(f))
	}

	err := b.initStream(borrowedSource{r: r}, ModeStream)
	if err != nil {
		return nil, err
	}

	return b, nil
}

// commandLine builds a pipe command from a template and a path. The path is
// shell-quoted and replaces the first %s; without a path the template is
// used literally.
func commandLine(template, path string) string {
	if path == "" {
		return template
	}

	return strings.Replace(template, "%s", shellquote.Join(path), 1)
}

func openError(path string, err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		err = pe.Err
	}

	if errors.Is(err, fs.ErrNotExist) {
		return &Error{Op: "open", Path: path, Err: fmt.Errorf("%w: %w", ErrNotFound, err)}
	}

	return &Error{Op: "open", Path: path, Err: fmt.Errorf("%w: %w", ErrOpenFailed, err)}
}
