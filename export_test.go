package parsebuf

// Export internal symbols for white-box tests in the parsebuf_test package.
var (
	NextWindowLen         = nextWindowLen
	CommandLine           = commandLine
	FindFile              = findFile
	DefaultSlurpThreshold = defaultSlurpThreshold
	DefaultPageSize       = defaultPageSize
)

// BaseOffset exposes the absolute offset of the first window byte.
func (b *Buffer) BaseOffset() int64 {
	return b.baseOffset
}

// WindowLen exposes the allocated window size.
func (b *Buffer) WindowLen() int {
	return len(b.mem)
}

// IsMapped reports whether the buffer holds a memory mapping.
func (b *Buffer) IsMapped() bool {
	return b.store == storeMapped
}
