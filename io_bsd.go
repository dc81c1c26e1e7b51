//go:build unix && !linux

package parsebuf

import "os"

func adviseSequential(*os.File) {}

func adviseMapping([]byte) {}
