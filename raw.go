package parsebuf

import (
	"errors"
	"fmt"
	"io"
)

// Peek returns a view of every byte buffered at or after the cursor.
//
// It never reads from the source and never moves the cursor. If nothing is
// buffered it returns io.EOF; in ModeStream and ModePipe that only means the
// window is empty, so call [Buffer.Commit] (with 0) or [Buffer.Fill] to
// refill first when more input may follow.
//
// The view is valid until the next mutating call.
func (b *Buffer) Peek() ([]byte, error) {
	if b.mode == ModeUnset {
		return nil, ErrClosed
	}

	b.checkState()

	if b.pos == b.n {
		return nil, io.EOF
	}

	return b.window(), nil
}

// Commit advances the cursor by n bytes, measured from the start of the last
// view returned by [Buffer.Peek], then refills the window so the next Peek
// sees at least a page of lookahead when the input has one.
//
// Commit(0) only refills. n must not exceed the bytes Peek returned.
//
// Commit invalidates every view previously returned.
func (b *Buffer) Commit(n int) error {
	if b.mode == ModeUnset {
		return ErrClosed
	}

	if n < 0 || n > b.n-b.pos {
		return b.newError("commit", fmt.Errorf("%w: commit %d with %d bytes buffered", ErrInvalidOffset, n, b.n-b.pos))
	}

	b.pos += n

	err := b.ensure(b.pageSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

// Fill reads until at least n bytes are buffered at or after the cursor, or
// the input ends. It returns io.EOF if fewer than n bytes could be buffered.
//
// Fill invalidates views unless an anchor protects them.
func (b *Buffer) Fill(n int) error {
	if b.mode == ModeUnset {
		return ErrClosed
	}

	for b.n-b.pos < n {
		err := b.ensure(n)
		if err != nil {
			return err
		}
	}

	return nil
}

// Read implements io.Reader. It copies buffered bytes into p and advances
// the cursor, refilling only when the window is empty.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.mode == ModeUnset {
		return 0, ErrClosed
	}

	if len(p) == 0 {
		return 0, nil
	}

	if b.pos == b.n {
		err := b.ensure(1)
		if err != nil {
			return 0, err
		}
	}

	n := copy(p, b.mem[b.pos:b.n])
	b.pos += n

	return n, nil
}
