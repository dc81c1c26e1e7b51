package parsebuf

import (
	"errors"
	"io"
)

// maxConsecutiveEmptyReads bounds reads that return (0, nil) before a refill
// gives up with io.ErrNoProgress.
const maxConsecutiveEmptyReads = 100

// ensure guarantees that at least minAhead bytes are available at or after
// pos, or reports that the source is exhausted.
//
// It returns nil when the lookahead is already satisfied or when one read
// added bytes (a partial read is success; callers loop). It returns io.EOF
// when there is no live source or the source has no more bytes. Any other
// error is a read failure.
//
// ensure is the only place the window is compacted or grown. Bytes at or
// after min(pos, anchor) are never discarded; see makeRoom.
func (b *Buffer) ensure(minAhead int) error {
	if b.n-b.pos >= minAhead {
		return nil
	}

	if b.src == nil || b.eof {
		return io.EOF
	}

	need := max(minAhead-(b.n-b.pos), b.pageSize)
	b.makeRoom(need)

	for range maxConsecutiveEmptyReads {
		nr, err := b.src.Read(b.mem[b.n : b.n+need])
		if nr < 0 || nr > need {
			panic("parsebuf: reader returned invalid count")
		}

		b.n += nr

		if errors.Is(err, io.EOF) {
			b.eof = true
			if nr == 0 {
				return io.EOF
			}

			return nil
		}

		if err != nil {
			return b.newError("read", err)
		}

		if nr > 0 {
			return nil
		}
	}

	return b.newError("read", io.ErrNoProgress)
}

// makeRoom makes at least need bytes of free space after n.
//
// Bytes before keep = min(pos, anchor) are discarded and baseOffset advances
// by exactly that amount. Without an anchor, live bytes slide to the front of
// the existing array. With an anchor, live bytes are copied into a fresh
// array so that views handed out at or after the anchor are never
// overwritten.
func (b *Buffer) makeRoom(need int) {
	if len(b.mem)-b.n >= need {
		return
	}

	if b.store != storeHeap {
		panic("parsebuf: refill on a fixed window")
	}

	keep := b.pos
	if b.anchor != noAnchor && b.anchor < keep {
		keep = b.anchor
	}

	live := b.n - keep

	if b.anchor == noAnchor && len(b.mem)-live >= need {
		copy(b.mem, b.mem[keep:b.n])
	} else {
		size := len(b.mem)
		if live+need > size {
			size = nextWindowLen(size, live+need)
			b.logger.Debug("window grown", "file", b.filename, "from", len(b.mem), "to", size)
		}

		mem := make([]byte, size)
		copy(mem, b.mem[keep:b.n])
		b.mem = mem
	}

	b.discard(keep)
}

// discard drops k bytes from the front of the window bookkeeping. The bytes
// themselves must already have been moved by the caller.
func (b *Buffer) discard(k int) {
	if k == 0 {
		return
	}

	b.n -= k
	b.pos -= k
	if b.anchor != noAnchor {
		b.anchor -= k
	}

	b.baseOffset += int64(k)
}

// nextWindowLen returns a window size of at least minLen.
//
// Growth is geometric: double once windows are large, with a 4 KiB minimum
// for small ones. If the immediate demand is larger, grow exactly to need.
func nextWindowLen(currentLen, minLen int) int {
	growBy := max(currentLen, 4096)

	need := minLen - currentLen
	if growBy < need {
		growBy = need
	}

	nextLen := currentLen + growBy
	if nextLen < currentLen {
		panic("parsebuf: window size overflow")
	}

	return nextLen
}
