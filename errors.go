package parsebuf

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEndOfLine is returned by the token parser when a line terminator is
	// reached before any token. It is a control-flow signal, not a failure:
	// the terminator has been consumed and the next call continues on the
	// following line.
	ErrEndOfLine = errors.New("end of line")

	// ErrNotFound indicates the input could not be located or opened.
	ErrNotFound = errors.New("not found")

	// ErrOpenFailed indicates the input exists but could not be opened or
	// initialized (stat, mmap or initial read failure).
	ErrOpenFailed = errors.New("open failed")

	// ErrCommandFailed indicates a pipe command could not be started or
	// exited unsuccessfully.
	ErrCommandFailed = errors.New("command failed")

	// ErrInvalidOffset indicates a seek, anchor or commit outside the range
	// of bytes the buffer can still reach.
	ErrInvalidOffset = errors.New("invalid offset")

	// ErrAnchorMismatch indicates RaiseAnchor was called for an anchor that
	// is not active.
	ErrAnchorMismatch = errors.New("anchor mismatch")

	// ErrClosed is returned by operations on a closed buffer.
	ErrClosed = errors.New("buffer is closed")
)

// Error describes a failed buffer operation.
//
// Errors returned by the Open functions are always *Error, so callers can
// report the offending file or command even though no Buffer was returned.
type Error struct {
	// Op is the failed operation: "open", "stat", "mmap", "read", "seek",
	// "exec", "wait", "anchor" or "position".
	Op string
	// Path is the input file name, if any.
	Path string
	// Command is the shell command line for pipe inputs, if any.
	Command string
	// Stderr is a tail of the command's standard error, when captured.
	Stderr string
	// Err is the underlying error.
	Err error
}

func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Op)

	switch {
	case e.Command != "":
		fmt.Fprintf(&sb, " command %q", e.Command)
	case e.Path != "":
		sb.WriteString(" ")
		sb.WriteString(e.Path)
	}

	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}

	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		sb.WriteString(" (stderr: ")
		sb.WriteString(stderr)
		sb.WriteString(")")
	}

	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError builds an *Error carrying the buffer's diagnostic names.
func (b *Buffer) newError(op string, err error) *Error {
	return &Error{Op: op, Path: b.filename, Command: b.command, Err: err}
}
