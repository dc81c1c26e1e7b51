package parsebuf_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/calvinalkan/parsebuf"
)

const (
	windowsOS    = "windows"
	testPageSize = 512
)

func writeFile(t *testing.T, root, rel string, data []byte) string {
	t.Helper()

	fullPath := filepath.Join(root, rel)
	parent := filepath.Dir(fullPath)

	err := os.MkdirAll(parent, 0o750)
	if err != nil {
		t.Fatalf("mkdir %s: %v", parent, err)
	}

	err = os.WriteFile(fullPath, data, 0o600)
	if err != nil {
		t.Fatalf("write %s: %v", fullPath, err)
	}

	return fullPath
}

// plainReader hides every method but Read, so buffers over it cannot seek.
type plainReader struct {
	r io.Reader
}

func (p *plainReader) Read(b []byte) (int, error) {
	return p.r.Read(b)
}

// closeTracker records whether Close was called on a borrowed reader.
type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true

	return nil
}

// modeCase opens the same content through one backing strategy.
type modeCase struct {
	name string
	open func(t *testing.T, content []byte) *parsebuf.Buffer
}

// allModes returns one opener per backing strategy: caller memory, slurped
// file, mapped file, stream over a non-seekable reader, stream delivering one
// byte per read, and a pipe (on platforms with /bin/sh).
func allModes() []modeCase {
	cases := []modeCase{
		{
			name: "String",
			open: func(t *testing.T, content []byte) *parsebuf.Buffer {
				t.Helper()

				return mustOpen(t)(parsebuf.OpenMemory(content, len(content)))
			},
		},
		{
			name: "Slurp",
			open: func(t *testing.T, content []byte) *parsebuf.Buffer {
				t.Helper()

				path := writeFile(t, t.TempDir(), "input.txt", content)

				return mustOpen(t)(parsebuf.OpenFile(path, parsebuf.WithSlurpThreshold(1<<30)))
			},
		},
		{
			name: "Mapped",
			open: func(t *testing.T, content []byte) *parsebuf.Buffer {
				t.Helper()

				path := writeFile(t, t.TempDir(), "input.txt", content)

				return mustOpen(t)(parsebuf.OpenFile(path, parsebuf.WithSlurpThreshold(1)))
			},
		},
		{
			name: "Stream",
			open: func(t *testing.T, content []byte) *parsebuf.Buffer {
				t.Helper()

				r := &plainReader{r: bytes.NewReader(content)}

				return mustOpen(t)(parsebuf.OpenStream(r, parsebuf.WithPageSize(testPageSize)))
			},
		},
		{
			name: "StreamOneByte",
			open: func(t *testing.T, content []byte) *parsebuf.Buffer {
				t.Helper()

				r := &oneByteReader{r: bytes.NewReader(content)}

				return mustOpen(t)(parsebuf.OpenStream(r, parsebuf.WithPageSize(testPageSize)))
			},
		},
	}

	if runtime.GOOS != windowsOS {
		cases = append(cases, modeCase{
			name: "Pipe",
			open: func(t *testing.T, content []byte) *parsebuf.Buffer {
				t.Helper()

				path := writeFile(t, t.TempDir(), "input.txt", content)

				return mustOpen(t)(parsebuf.OpenPipe("cat %s", path, parsebuf.WithPageSize(testPageSize)))
			},
		})
	}

	return cases
}

// oneByteReader returns at most one byte per Read, exercising every refill
// boundary.
type oneByteReader struct {
	r io.Reader
}

func (o *oneByteReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	return o.r.Read(p[:1])
}

func mustOpen(t *testing.T) func(*parsebuf.Buffer, error) *parsebuf.Buffer {
	t.Helper()

	return func(b *parsebuf.Buffer, err error) *parsebuf.Buffer {
		t.Helper()

		if err != nil {
			t.Fatalf("open: %v", err)
		}

		t.Cleanup(func() {
			_ = b.Close()
		})

		return b
	}
}

// readLines drains b with NextLine and returns owned copies.
func readLines(t *testing.T, b *parsebuf.Buffer) []string {
	t.Helper()

	var lines []string

	for {
		line, err := b.NextLine()
		if errors.Is(err, io.EOF) {
			return lines
		}

		if err != nil {
			t.Fatalf("NextLine: %v", err)
		}

		lines = append(lines, string(line))
	}
}

// readTokens drains b with NextToken. Line-end signals are recorded as "\n".
func readTokens(t *testing.T, b *parsebuf.Buffer, delims string) []string {
	t.Helper()

	var toks []string

	for {
		tok, err := b.NextToken(delims)
		if errors.Is(err, io.EOF) {
			return toks
		}

		if errors.Is(err, parsebuf.ErrEndOfLine) {
			toks = append(toks, "\n")

			continue
		}

		if err != nil {
			t.Fatalf("NextToken: %v", err)
		}

		toks = append(toks, string(tok))
	}
}

func assertStringSlicesEqual(t *testing.T, got, want []string) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("slice length mismatch: got=%d want=%d (got=%q want=%q)", len(got), len(want), got, want)
	}

	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("slice mismatch at %d: got=%q want=%q", i, got, want)
		}
	}
}

func requireShell(t *testing.T) {
	t.Helper()

	if runtime.GOOS == windowsOS {
		t.Skip("pipe inputs need /bin/sh")
	}
}

func requireCommand(t *testing.T, name string) {
	t.Helper()

	requireShell(t)

	_, err := exec.LookPath(name)
	if err != nil {
		t.Skipf("%s not installed", name)
	}
}

func assertBufError(t *testing.T, err error, wantOp string, wantSentinel error) *parsebuf.Error {
	t.Helper()

	var bufErr *parsebuf.Error
	if !errors.As(err, &bufErr) {
		t.Fatalf("expected *parsebuf.Error, got %T (%v)", err, err)
	}

	if bufErr.Op != wantOp {
		t.Fatalf("unexpected error op: got=%s want=%s (%v)", bufErr.Op, wantOp, err)
	}

	if !errors.Is(err, wantSentinel) {
		t.Fatalf("expected errors.Is(%v, %v)", err, wantSentinel)
	}

	return bufErr
}
