package parsebuf

import (
	"bytes"
	"fmt"
	"io"
)

// Next returns a view of exactly n bytes at the cursor and advances past
// them.
//
// If the input ends first, Next returns io.EOF when no bytes remain and
// io.ErrUnexpectedEOF when some but fewer than n remain. It never returns a
// short slice, and the cursor does not move on failure.
//
// The view is valid until the next mutating call.
func (b *Buffer) Next(n int) ([]byte, error) {
	if b.mode == ModeUnset {
		return nil, ErrClosed
	}

	if n < 0 {
		return nil, b.newError("read", fmt.Errorf("%w: negative length %d", ErrInvalidOffset, n))
	}

	err := b.Fill(n)
	if err == io.EOF {
		if b.pos == b.n {
			return nil, io.EOF
		}

		return nil, io.ErrUnexpectedEOF
	}

	if err != nil {
		return nil, err
	}

	start := b.pos
	b.pos += n

	return b.mem[start:b.pos:b.pos], nil
}

// CopyBytes is like [Buffer.Next] but returns an owned copy.
func (b *Buffer) CopyBytes(n int) ([]byte, error) {
	p, err := b.Next(n)
	if err != nil {
		return nil, err
	}

	return bytes.Clone(p), nil
}
