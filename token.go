package parsebuf

import (
	"bytes"
	"errors"
	"io"
)

// NextToken returns the next token delimited by any byte in delims.
//
// Leading delimiters are skipped. Line terminators always end a token. What
// happens at a terminator depends on delims:
//
//   - If delims contains '\n' (and '\r' for CRLF input), terminators are
//     skipped like any delimiter and tokens are read across lines.
//   - Otherwise the token scan is line-bounded: when the next non-delimiter
//     byte is a terminator, NextToken consumes it and returns [ErrEndOfLine].
//     This lets a parser read a fixed number of tokens per line.
//
// After the token, the following run of delimiters is consumed too.
// At end of input NextToken returns io.EOF.
//
// The returned slice is a view into the window, valid until the next
// mutating call. Use [Buffer.CopyToken] to keep it.
func (b *Buffer) NextToken(delims string) ([]byte, error) {
	if b.mode == ModeUnset {
		return nil, ErrClosed
	}

	set := newByteSet(delims)

	// Skip leading delimiters.
	i, err := b.scanWhile(0, set.contains)
	if err != nil {
		return nil, err
	}

	if i == b.n-b.pos {
		b.pos += i

		return nil, io.EOF
	}

	c := b.mem[b.pos+i]
	if c == '\n' || c == '\r' {
		term := 1

		if c == '\r' {
			err = b.ensure(i + 2)
			if err != nil && !errors.Is(err, io.EOF) {
				return nil, err
			}

			if b.pos+i+1 < b.n && b.mem[b.pos+i+1] == '\n' {
				term = 2
			}
		}

		b.pos += i + term

		return nil, ErrEndOfLine
	}

	j, err := b.scanWhile(i+1, func(c byte) bool {
		return !set.contains(c) && c != '\n' && c != '\r'
	})
	if err != nil {
		return nil, err
	}

	k, err := b.scanWhile(j, set.contains)
	if err != nil {
		return nil, err
	}

	start := b.pos + i
	end := b.pos + j
	b.pos += k

	return b.mem[start:end:end], nil
}

// CopyToken is like [Buffer.NextToken] but returns an owned copy.
func (b *Buffer) CopyToken(delims string) ([]byte, error) {
	tok, err := b.NextToken(delims)
	if err != nil {
		return nil, err
	}

	return bytes.Clone(tok), nil
}

// CopyTokenNul is like [Buffer.CopyToken] but the copy carries a trailing NUL
// byte.
func (b *Buffer) CopyTokenNul(delims string) (NulTerm, error) {
	tok, err := b.NextToken(delims)
	if err != nil {
		return nil, err
	}

	return newNulTerm(tok), nil
}

// scanWhile returns the offset, relative to pos, of the first byte at or
// after from that does not satisfy keep, refilling as needed. At end of
// input it returns n-pos and a nil error; callers detect that by comparing.
// Read failures are returned as errors.
func (b *Buffer) scanWhile(from int, keep func(byte) bool) (int, error) {
	i := from

	for {
		for b.pos+i < b.n && keep(b.mem[b.pos+i]) {
			i++
		}

		if b.pos+i < b.n {
			return i, nil
		}

		err := b.ensure(i + 1)
		if errors.Is(err, io.EOF) {
			return i, nil
		}

		if err != nil {
			return i, err
		}
	}
}

// byteSet is a 256-bit membership set for delimiter bytes.
type byteSet [8]uint32

func newByteSet(chars string) byteSet {
	var s byteSet
	for i := range len(chars) {
		c := chars[i]
		s[c>>5] |= 1 << (c & 31)
	}

	return s
}

func (s *byteSet) contains(c byte) bool {
	return s[c>>5]&(1<<(c&31)) != 0
}
