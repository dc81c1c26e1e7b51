package parsebuf

import (
	"bytes"
	"errors"
	"io"
)

// NextLine returns the next line without its terminator.
//
// Recognized terminators are "\n", "\r\n" and a bare "\r". A final line
// without a terminator is returned as data; the call after it returns
// io.EOF, and so does every later call.
//
// The returned slice is a view into the window, valid until the next
// mutating call. Use [Buffer.CopyLine] to keep it.
func (b *Buffer) NextLine() ([]byte, error) {
	if b.mode == ModeUnset {
		return nil, ErrClosed
	}

	length, term, err := b.scanLine()
	if err != nil {
		return nil, err
	}

	start := b.pos
	end := start + length
	b.pos = end + term

	return b.mem[start:end:end], nil
}

// CopyLine is like [Buffer.NextLine] but returns an owned copy.
func (b *Buffer) CopyLine() ([]byte, error) {
	line, err := b.NextLine()
	if err != nil {
		return nil, err
	}

	return bytes.Clone(line), nil
}

// CopyLineNul is like [Buffer.CopyLine] but the copy carries a trailing NUL
// byte, for handing to C or syscall APIs.
func (b *Buffer) CopyLineNul() (NulTerm, error) {
	line, err := b.NextLine()
	if err != nil {
		return nil, err
	}

	return newNulTerm(line), nil
}

// scanLine finds the end of the line starting at pos.
//
// It returns the content length and the terminator length (0, 1 or 2)
// relative to pos, refilling as needed. pos itself is not moved, but pos
// may change value when a refill compacts the window; offsets relative to pos
// remain valid.
func (b *Buffer) scanLine() (int, int, error) {
	from := 0

	for {
		avail := b.n - b.pos

		i := bytes.IndexAny(b.mem[b.pos+from:b.n], "\r\n")
		if i >= 0 {
			i += from
			if b.mem[b.pos+i] == '\n' {
				return i, 1, nil
			}

			// A '\r' that ends the window may be the first half of "\r\n" split
			// across reads: pull one more byte before deciding.
			if i+1 == avail {
				err := b.ensure(i + 2)
				if err != nil && !errors.Is(err, io.EOF) {
					return 0, 0, err
				}
			}

			if b.pos+i+1 < b.n && b.mem[b.pos+i+1] == '\n' {
				return i, 2, nil
			}

			return i, 1, nil
		}

		from = avail

		err := b.ensure(avail + 1)
		if errors.Is(err, io.EOF) {
			if avail == 0 {
				return 0, 0, io.EOF
			}

			return avail, 0, nil
		}

		if err != nil {
			return 0, 0, err
		}
	}
}
