package parsebuf

import (
	"errors"
	"io"
	"iter"
)

// Lines iterates over the remaining lines, as [Buffer.NextLine] returns them.
// Iteration stops at end of input; any other error is yielded once, last.
//
// Each line is a view valid for one iteration step only.
//
// Example:
//
//	for line, err := range b.Lines() {
//	    if err != nil {
//	        return err
//	    }
//	    // use line
//	}
func (b *Buffer) Lines() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			line, err := b.NextLine()
			if errors.Is(err, io.EOF) {
				return
			}

			if err != nil {
				yield(nil, err)

				return
			}

			if !yield(line, nil) {
				return
			}
		}
	}
}

// Tokens iterates over the remaining tokens, as [Buffer.NextToken] returns
// them. [ErrEndOfLine] signals are yielded as errors so a caller can track
// line boundaries; iteration continues after them if the caller keeps going.
//
// Each token is a view valid for one iteration step only.
func (b *Buffer) Tokens(delims string) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			tok, err := b.NextToken(delims)
			if errors.Is(err, io.EOF) {
				return
			}

			if errors.Is(err, ErrEndOfLine) {
				if !yield(nil, err) {
					return
				}

				continue
			}

			if err != nil {
				yield(nil, err)

				return
			}

			if !yield(tok, nil) {
				return
			}
		}
	}
}
