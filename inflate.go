package parsebuf

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// decoder wraps a compressed stream. The returned closer, if non-nil, is
// closed before the underlying file.
type decoder func(r io.Reader) (io.Reader, io.Closer, error)

// decoders maps file suffixes to in-process decoders used by [WithInflate].
var decoders = map[string]decoder{
	".gz": func(r io.Reader) (io.Reader, io.Closer, error) {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}

		return zr, zr, nil
	},
	".zst": func(r io.Reader) (io.Reader, io.Closer, error) {
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, nil, err
		}

		rc := zr.IOReadCloser()

		return rc, rc, nil
	},
	".xz": func(r io.Reader) (io.Reader, io.Closer, error) {
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, err
		}

		return xr, nil, nil
	},
	".bz2": func(r io.Reader) (io.Reader, io.Closer, error) {
		br, err := bzip2.NewReader(r, nil)
		if err != nil {
			return nil, nil, err
		}

		return br, br, nil
	},
}

func decoderFor(path string) decoder {
	for suffix, dec := range decoders {
		if strings.HasSuffix(path, suffix) {
			return dec
		}
	}

	return nil
}

// openInflated opens a compressed file and streams its decoded content.
// The buffer owns both the decoder and the file.
func openInflated(path string, dec decoder, o options) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}

	r, closer, err := dec(f)
	if err != nil {
		_ = f.Close()

		return nil, &Error{Op: "open", Path: path, Err: fmt.Errorf("%w: %w", ErrOpenFailed, err)}
	}

	closers := []io.Closer{f}
	if closer != nil {
		closers = []io.Closer{closer, f}
	}

	b := newBuffer(o)
	b.filename = path
	b.pageSize = o.pageSizeFor(fileBlockSize(f))

	adviseSequential(f)

	err = b.initStream(&ownedSource{r: r, closers: closers}, ModeStream)
	if err != nil {
		_ = (&ownedSource{closers: closers}).release()

		return nil, err
	}

	b.logger.Debug("opened", "file", path, "strategy", "inflate", "page_size", b.pageSize)

	return b, nil
}
