// Package parsebuf provides a buffered input for hand-written parsers.
//
// A [Buffer] gives one line / token / raw-byte interface over very different
// inputs: a string or byte slice, a memory-mapped file, a file slurped into
// memory, a streaming reader, or the standard output of a decompression
// command. It minimizes copies and supports bounded look-behind ("anchoring")
// so a parser can peek, backtrack and re-read without reopening the input.
//
// The package interprets no file format. It exposes bytes, lines and
// delimited tokens only.
//
// # Modes
//
// Every open buffer is in one of four modes (see [Mode]):
//
//	ModeString      caller memory, whole input resident, no I/O
//	ModeEntireFile  slurped or mapped file, whole input resident, no I/O
//	ModeStream      sliding window over a reader, refilled on demand
//	ModePipe        sliding window over a command's standard output
//
// Callers cannot tell a slurped file from a mapped one. A pipe command that
// finishes within its first read is reclassified as ModeEntireFile.
//
// # Views
//
// [Buffer.Peek], [Buffer.NextLine], [Buffer.NextToken] and [Buffer.Next]
// return views that alias the buffer's window. A view is valid until the
// next call that mutates the buffer (Commit, Fill, any Next*/Copy*, Read,
// SetPosition, Close). Use the Copy* variants to keep data.
//
// Views at or after an active anchor (see [Buffer.SetAnchor]) stay valid
// across refills until the anchor is raised.
//
// # End of input
//
// Exhaustion is reported as [io.EOF]. The token parser additionally reports
// [ErrEndOfLine] when it reaches a line terminator before a token. Both are
// control flow, not failures.
//
// # Concurrency
//
// A Buffer is not safe for concurrent use. All I/O is synchronous.
package parsebuf

import (
	"errors"

	"github.com/charmbracelet/log"
)

// Mode identifies how a buffer holds its input.
type Mode uint8

const (
	// ModeUnset is the mode of a closed buffer.
	ModeUnset Mode = iota
	// ModeString wraps caller-owned memory.
	ModeString
	// ModeEntireFile holds a whole file, slurped or memory-mapped.
	ModeEntireFile
	// ModeStream holds a sliding window over a reader.
	ModeStream
	// ModePipe holds a sliding window over a command's standard output.
	ModePipe
)

func (m Mode) String() string {
	switch m {
	case ModeUnset:
		return "unset"
	case ModeString:
		return "string"
	case ModeEntireFile:
		return "file"
	case ModeStream:
		return "stream"
	case ModePipe:
		return "pipe"
	default:
		return "unknown"
	}
}

// storeKind tracks who owns the memory behind Buffer.mem.
type storeKind uint8

const (
	// storeHeap is a window the buffer allocated; it may grow and be read into.
	storeHeap storeKind = iota
	// storeBorrowed is caller memory (ModeString); never written.
	storeBorrowed
	// storeMapped is a read-only mapping; fixed length, unmapped on Close.
	storeMapped
)

// noAnchor marks the absence of an anchor.
const noAnchor = -1

// Buffer is a buffered input opened by one of the Open functions.
//
// The zero value is a closed buffer.
type Buffer struct {
	// Window state.
	// mem is the window; len(mem) is its allocated size. Only mem[:n] is valid.
	mem []byte
	n   int
	// pos is the parse cursor, window-relative.
	pos int
	// baseOffset is the absolute input offset of mem[0].
	baseOffset int64
	// anchor is a window-relative offset, or noAnchor.
	anchor int

	mode  Mode
	store storeKind

	// src is nil for ModeString and ModeEntireFile.
	src source
	// eof is set once src has reported end of input.
	eof bool

	pageSize int

	// Diagnostics.
	filename string
	command  string

	logger *log.Logger
}

func newBuffer(o options) *Buffer {
	return &Buffer{
		anchor:   noAnchor,
		pageSize: o.pageSizeFor(0),
		logger:   o.Logger,
	}
}

// Close releases the buffer's resources: it unmaps a mapped file, closes a
// handle or command the buffer opened itself, and drops the window.
// Borrowed readers are left open.
//
// Close is idempotent and safe on a nil *Buffer. For a pipe that was read to
// the end, a non-zero exit status of the command is reported.
func (b *Buffer) Close() error {
	if b == nil || b.mode == ModeUnset {
		return nil
	}

	var errs []error

	if b.store == storeMapped {
		err := unmapFile(b.mem)
		if err != nil {
			errs = append(errs, b.newError("munmap", err))
		}
	}

	if b.src != nil {
		err := b.src.release()
		if err != nil {
			errs = append(errs, b.newError("close", err))
		}
	}

	b.mem = nil
	b.n = 0
	b.pos = 0
	b.anchor = noAnchor
	b.src = nil
	b.mode = ModeUnset

	return errors.Join(errs...)
}

// Mode reports how the buffer holds its input.
func (b *Buffer) Mode() Mode {
	return b.mode
}

// PageSize reports the preferred read-chunk size.
func (b *Buffer) PageSize() int {
	return b.pageSize
}

// Filename reports the file the buffer was opened on, if any.
// Standard input is reported as "-".
func (b *Buffer) Filename() string {
	return b.filename
}

// Command reports the shell command line of a pipe buffer, if any. It stays
// set after a pipe is reclassified as ModeEntireFile.
func (b *Buffer) Command() string {
	return b.command
}

// window returns the valid part of the window at or after pos.
func (b *Buffer) window() []byte {
	return b.mem[b.pos:b.n:b.n]
}

// checkState panics on an internally inconsistent window. It guards the
// invariants every operation relies on; a violation is a bug in this package.
func (b *Buffer) checkState() {
	if b.pos < 0 || b.pos > b.n || b.n > len(b.mem) {
		panic("parsebuf: inconsistent window state")
	}
}
