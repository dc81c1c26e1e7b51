package parsebuf

import (
	"errors"
	"io"
)

// source is the live input behind a Stream or Pipe buffer.
//
// The three implementations make handle ownership a type-level property:
// release closes what the buffer opened and never touches what it borrowed.
type source interface {
	io.Reader

	// release frees the source. It is called exactly once, by Close or by
	// pipe reclassification.
	release() error

	// seeker returns the source as an io.Seeker when it supports random
	// access, or nil.
	seeker() io.Seeker
}

// ownedSource is a reader the buffer opened itself (a file, or a decoder
// stacked on a file). Closers run in order on release.
type ownedSource struct {
	r       io.Reader
	closers []io.Closer
}

func (s *ownedSource) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

func (s *ownedSource) release() error {
	var errs []error
	for _, c := range s.closers {
		err := c.Close()
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (s *ownedSource) seeker() io.Seeker {
	sk, _ := s.r.(io.Seeker)

	return sk
}

// borrowedSource is a caller-supplied reader. release leaves it open.
type borrowedSource struct {
	r io.Reader
}

func (s borrowedSource) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

func (borrowedSource) release() error {
	return nil
}

func (s borrowedSource) seeker() io.Seeker {
	sk, _ := s.r.(io.Seeker)

	return sk
}
