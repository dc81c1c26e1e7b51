package parsebuf_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/calvinalkan/parsebuf"
)

func Test_Commit_Zero_Keeps_Position_When_Called_After_Peek(t *testing.T) {
	t.Parallel()

	content := []byte(strings.Repeat("peek-and-commit ", 500))

	for _, mc := range allModes() {
		t.Run(mc.name, func(t *testing.T) {
			t.Parallel()

			b := mc.open(t, content)

			view, err := b.Peek()
			if err != nil {
				t.Fatalf("Peek: %v", err)
			}

			first := view[0]
			before := b.Position()

			err = b.Commit(0)
			if err != nil {
				t.Fatalf("Commit(0): %v", err)
			}

			if b.Position() != before {
				t.Fatalf("Commit(0) moved the cursor: %d -> %d", before, b.Position())
			}

			view, err = b.Peek()
			if err != nil {
				t.Fatalf("Peek after Commit(0): %v", err)
			}

			if view[0] != first {
				t.Fatalf("Peek after Commit(0): first=%q want=%q", view[0], first)
			}
		})
	}
}

func Test_Peek_And_Commit_Reproduce_Input_When_Draining(t *testing.T) {
	t.Parallel()

	content := []byte(strings.Repeat("0123456789abcdef", 700))

	for _, mc := range allModes() {
		t.Run(mc.name, func(t *testing.T) {
			t.Parallel()

			b := mc.open(t, content)

			var out bytes.Buffer

			for {
				view, err := b.Peek()
				if errors.Is(err, io.EOF) {
					break
				}

				if err != nil {
					t.Fatalf("Peek: %v", err)
				}

				// Take at most 100 bytes per step to exercise partial commits.
				take := min(len(view), 100)
				out.Write(view[:take])

				err = b.Commit(take)
				if err != nil {
					t.Fatalf("Commit: %v", err)
				}
			}

			if !bytes.Equal(out.Bytes(), content) {
				t.Fatalf("drained %d bytes, want %d", out.Len(), len(content))
			}
		})
	}
}

func Test_Commit_Fails_When_Count_Exceeds_Buffered_Bytes(t *testing.T) {
	t.Parallel()

	b := mustOpen(t)(parsebuf.OpenString("abc"))

	err := b.Commit(4)
	assertBufError(t, err, "commit", parsebuf.ErrInvalidOffset)

	err = b.Commit(-1)
	assertBufError(t, err, "commit", parsebuf.ErrInvalidOffset)

	if b.Position() != 0 {
		t.Fatalf("failed Commit moved the cursor to %d", b.Position())
	}
}

func Test_Fill_Buffers_Requested_Lookahead_When_Stream_Has_It(t *testing.T) {
	t.Parallel()

	content := []byte(strings.Repeat("z", 5000))
	r := &oneByteReader{r: bytes.NewReader(content)}
	b := mustOpen(t)(parsebuf.OpenStream(r, parsebuf.WithPageSize(testPageSize)))

	err := b.Fill(3000)
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}

	view, err := b.Peek()
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}

	if len(view) < 3000 {
		t.Fatalf("Peek after Fill(3000) returned %d bytes", len(view))
	}

	err = b.Fill(6000)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("Fill past end: expected io.EOF, got %v", err)
	}
}

func Test_Next_Returns_Exact_Bytes_When_Available(t *testing.T) {
	t.Parallel()

	content := []byte("abcdef")

	for _, mc := range allModes() {
		t.Run(mc.name, func(t *testing.T) {
			t.Parallel()

			b := mc.open(t, content)

			p, err := b.Next(4)
			if err != nil || string(p) != "abcd" {
				t.Fatalf("Next(4): got=%q err=%v", p, err)
			}

			_, err = b.Next(4)
			if !errors.Is(err, io.ErrUnexpectedEOF) {
				t.Fatalf("short Next: expected io.ErrUnexpectedEOF, got %v", err)
			}

			if b.Position() != 4 {
				t.Fatalf("short Next moved the cursor to %d", b.Position())
			}

			p, err = b.CopyBytes(2)
			if err != nil || string(p) != "ef" {
				t.Fatalf("CopyBytes(2): got=%q err=%v", p, err)
			}

			_, err = b.Next(1)
			if !errors.Is(err, io.EOF) {
				t.Fatalf("Next at end: expected io.EOF, got %v", err)
			}
		})
	}
}

func Test_Next_Spans_Many_Pages_When_Length_Exceeds_Window(t *testing.T) {
	t.Parallel()

	content := bytes.Repeat([]byte{0xde, 0xad, 0xbe, 0xef}, 4096)
	r := &plainReader{r: bytes.NewReader(content)}
	b := mustOpen(t)(parsebuf.OpenStream(r, parsebuf.WithPageSize(testPageSize)))

	_, err := b.Next(3)
	if err != nil {
		t.Fatalf("Next(3): %v", err)
	}

	p, err := b.Next(10000)
	if err != nil {
		t.Fatalf("Next(10000): %v", err)
	}

	if !bytes.Equal(p, content[3:10003]) {
		t.Fatal("Next(10000) returned wrong bytes")
	}
}

func Test_Read_Implements_Reader_When_Used_With_ReadAll(t *testing.T) {
	t.Parallel()

	content := []byte(strings.Repeat("reader ", 3000))

	for _, mc := range allModes() {
		t.Run(mc.name, func(t *testing.T) {
			t.Parallel()

			b := mc.open(t, content)

			_, err := b.NextToken(" ")
			if err != nil {
				t.Fatalf("NextToken: %v", err)
			}

			got, err := io.ReadAll(b)
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}

			if !bytes.Equal(got, content[len("reader "):]) {
				t.Fatalf("ReadAll returned %d bytes, want %d", len(got), len(content)-len("reader "))
			}
		})
	}
}
