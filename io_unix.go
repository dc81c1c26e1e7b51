//go:build unix

// io_unix.go implements the internal I/O backend contract (see io_contract.go)
// for Unix platforms: read-only mmap for large files and st_blksize for the
// page size.
package parsebuf

import (
	"errors"
	"fmt"
	"math"
	"os"

	"golang.org/x/sys/unix"
)

var errMapUnsupported = errors.New("mmap not supported")

// mapFile maps size bytes of f read-only.
func mapFile(f *os.File, size int64) ([]byte, error) {
	if size <= 0 || size > math.MaxInt {
		return nil, fmt.Errorf("mmap: invalid size %d", size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}

	adviseMapping(data)

	return data, nil
}

func unmapFile(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	err := unix.Munmap(data)
	if err != nil {
		return fmt.Errorf("munmap: %w", err)
	}

	return nil
}

// fileBlockSize returns st_blksize for f, or 0 if fstat fails.
func fileBlockSize(f *os.File) int64 {
	var st unix.Stat_t
	for {
		err := unix.Fstat(int(f.Fd()), &st)
		if err == unix.EINTR {
			continue
		}

		if err != nil {
			return 0
		}

		break
	}

	return int64(st.Blksize)
}
