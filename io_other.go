//go:build !unix

// io_other.go implements the internal I/O backend contract (see io_contract.go)
// for platforms without mmap support in this package. Large files are
// streamed instead of mapped.
package parsebuf

import (
	"errors"
	"os"
)

var errMapUnsupported = errors.New("mmap not supported")

func mapFile(*os.File, int64) ([]byte, error) {
	return nil, errMapUnsupported
}

func unmapFile([]byte) error {
	return nil
}

func fileBlockSize(*os.File) int64 {
	return 0
}

func adviseSequential(*os.File) {}

func adviseMapping([]byte) {}
