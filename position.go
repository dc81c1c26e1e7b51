package parsebuf

import (
	"errors"
	"fmt"
	"io"
)

// Position returns the absolute input offset of the parse cursor.
func (b *Buffer) Position() int64 {
	return b.baseOffset + int64(b.pos)
}

// SetPosition moves the parse cursor to an absolute input offset.
//
// In ModeString and ModeEntireFile any offset within the input succeeds.
//
// In ModeStream and ModePipe:
//   - an offset inside the current window is a plain assignment (free rewind);
//   - an offset past the window reads forward until it is covered, and fails
//     with [ErrInvalidOffset] if the input ends first;
//   - an offset before the window fails with [ErrInvalidOffset] because those
//     bytes were discarded, unless no anchor is set and the source is seekable
//     (a file), in which case the source is repositioned and the window
//     reloaded from there.
//
// Reading forward discards bytes behind the cursor unless an anchor protects
// them.
func (b *Buffer) SetPosition(offset int64) error {
	if b.mode == ModeUnset {
		return ErrClosed
	}

	if offset < 0 {
		return b.positionError(offset)
	}

	if offset >= b.baseOffset && offset <= b.baseOffset+int64(b.n) {
		b.pos = int(offset - b.baseOffset)

		return nil
	}

	if b.src == nil {
		return b.positionError(offset)
	}

	if offset < b.baseOffset {
		return b.rewindSource(offset)
	}

	for offset > b.baseOffset+int64(b.n) {
		b.pos = b.n

		err := b.ensure(b.pageSize)
		if errors.Is(err, io.EOF) {
			return b.positionError(offset)
		}

		if err != nil {
			return err
		}
	}

	b.pos = int(offset - b.baseOffset)

	return nil
}

// rewindSource repositions a seekable source behind the window and reloads
// the window from offset.
func (b *Buffer) rewindSource(offset int64) error {
	sk := b.src.seeker()
	if b.anchor != noAnchor || sk == nil {
		return b.positionError(offset)
	}

	_, err := sk.Seek(offset, io.SeekStart)
	if err != nil {
		return &Error{Op: "seek", Path: b.filename, Command: b.command, Err: fmt.Errorf("%w: %w", ErrInvalidOffset, err)}
	}

	b.logger.Debug("source repositioned", "file", b.filename, "offset", offset)

	b.n = 0
	b.pos = 0
	b.baseOffset = offset
	b.eof = false

	err = b.ensure(b.pageSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

func (b *Buffer) positionError(offset int64) error {
	return b.newError("position", fmt.Errorf("%w: %d not in [%d, %d]",
		ErrInvalidOffset, offset, b.baseOffset, b.baseOffset+int64(b.n)))
}

// SetAnchor protects the bytes at and after the absolute offset from being
// discarded by refills, so the parser can later rewind to it with
// [Buffer.SetPosition].
//
// offset must lie inside the current window. Only one anchor is active: if
// one is already set, the smaller (more upstream) offset is kept. Every
// SetAnchor must be paired with a [Buffer.RaiseAnchor] for the same offset.
//
// An anchor also keeps views at or after it valid across refills.
func (b *Buffer) SetAnchor(offset int64) error {
	if b.mode == ModeUnset {
		return ErrClosed
	}

	if offset < b.baseOffset || offset > b.baseOffset+int64(b.n) {
		return &Error{Op: "anchor", Path: b.filename, Command: b.command,
			Err: fmt.Errorf("%w: anchor %d outside window [%d, %d]", ErrInvalidOffset, offset, b.baseOffset, b.baseOffset+int64(b.n))}
	}

	a := int(offset - b.baseOffset)
	if b.anchor == noAnchor || a < b.anchor {
		b.anchor = a
	}

	return nil
}

// RaiseAnchor releases the anchor set at the absolute offset.
//
// If offset is the active anchor, it is cleared and refills may discard
// bytes again. If offset is after the active anchor (a nested anchor that an
// outer, earlier one superseded), RaiseAnchor does nothing. Raising when no
// anchor is active, or an offset before the active anchor, returns
// [ErrAnchorMismatch].
func (b *Buffer) RaiseAnchor(offset int64) error {
	if b.mode == ModeUnset {
		return ErrClosed
	}

	if b.anchor == noAnchor {
		return &Error{Op: "anchor", Path: b.filename, Command: b.command,
			Err: fmt.Errorf("%w: no active anchor, raising %d", ErrAnchorMismatch, offset)}
	}

	active := b.baseOffset + int64(b.anchor)

	switch {
	case offset == active:
		b.anchor = noAnchor
	case offset > active:
		// Superseded nested anchor; the outer one stays.
	default:
		return &Error{Op: "anchor", Path: b.filename, Command: b.command,
			Err: fmt.Errorf("%w: active anchor %d, raising %d", ErrAnchorMismatch, active, offset)}
	}

	return nil
}

// Anchor reports the absolute offset of the active anchor, if any.
func (b *Buffer) Anchor() (int64, bool) {
	if b.anchor == noAnchor {
		return 0, false
	}

	return b.baseOffset + int64(b.anchor), true
}
