package parsebuf

import (
	"os"
	"path/filepath"
	"strings"
)

// ============================================================================
// NUL-terminated copies
// ============================================================================

// NulTerm is an owned byte string followed by a NUL terminator, as returned
// by [Buffer.CopyLineNul] and [Buffer.CopyTokenNul]. The terminator is
// included in the slice so it can be passed directly to C-style APIs.
type NulTerm []byte

func newNulTerm(p []byte) NulTerm {
	b := make([]byte, 0, len(p)+1)
	b = append(b, p...)
	b = append(b, 0)

	return b
}

// Bytes returns the content without the trailing NUL.
func (n NulTerm) Bytes() []byte {
	return n[:n.Len()]
}

// Len returns the content length, excluding a trailing NUL if present.
func (n NulTerm) Len() int {
	if len(n) > 0 && n[len(n)-1] == 0 {
		return len(n) - 1
	}

	return len(n)
}

// String converts the content back to a string (strips the NUL).
func (n NulTerm) String() string {
	return string(n.Bytes())
}

// ============================================================================
// Input location
// ============================================================================

// findFile resolves path against the working directory, then against each
// directory of the colon-separated list in the environment variable envVar
// (if envVar is non-empty). It returns the first candidate that exists and
// is not a directory.
func findFile(path, envVar string) (string, bool) {
	if isReadableFile(path) {
		return path, true
	}

	if envVar == "" || filepath.IsAbs(path) {
		return "", false
	}

	dirs := os.Getenv(envVar)
	if dirs == "" {
		return "", false
	}

	for _, dir := range strings.Split(dirs, string(os.PathListSeparator)) {
		if dir == "" {
			continue
		}

		candidate := filepath.Join(dir, path)
		if isReadableFile(candidate) {
			return candidate, true
		}
	}

	return "", false
}

func isReadableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return !info.IsDir()
}
