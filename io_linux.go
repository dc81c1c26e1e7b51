//go:build linux

package parsebuf

import (
	"os"

	"golang.org/x/sys/unix"
)

// adviseSequential tells the kernel f will be read front to back, which
// doubles the read-ahead window for streamed files.
func adviseSequential(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
}

// adviseMapping asks for aggressive read-ahead on a mapped file.
func adviseMapping(data []byte) {
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)
}
