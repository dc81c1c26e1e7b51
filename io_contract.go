package parsebuf

import "os"

// ============================================================================
// Internal I/O backend contract
// ============================================================================
//
// OpenFile is written against a small set of unexported, platform-dependent
// functions provided by build-tagged files:
//   - All Unix platforms (mmap, st_blksize):  io_unix.go
//   - Linux read-ahead hints:                 io_linux.go
//   - Non-Linux Unix (no hints):              io_bsd.go
//   - Everything else (no mmap):              io_other.go
//
// Semantics expected by the open strategies:
//
//   - mapFile maps size bytes of f read-only. The mapping stays valid after f
//     is closed. Backends without mmap return errMapUnsupported, and
//     OpenFile falls back to streaming.
//
//   - unmapFile releases a mapping returned by mapFile. It is called exactly
//     once, by Close.
//
//   - fileBlockSize returns the preferred I/O size of f (st_blksize), or 0
//     when unknown.
//
//   - adviseSequential and adviseMapping are best-effort read-ahead hints;
//     they never fail.

// Function signatures required by the open strategies.
var (
	_ func(*os.File, int64) ([]byte, error) = mapFile
	_ func([]byte) error                    = unmapFile
	_ func(*os.File) int64                  = fileBlockSize
	_ func(*os.File)                        = adviseSequential
	_ func([]byte)                          = adviseMapping
)
