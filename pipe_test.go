package parsebuf_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/calvinalkan/parsebuf"
)

func Test_OpenPipe_Fails_With_Command_In_Message_When_Command_Does_Not_Exist(t *testing.T) {
	t.Parallel()
	requireShell(t)

	b, err := parsebuf.OpenPipe("nonexistent-cmd %s", "/etc/hosts")
	if b != nil {
		t.Fatal("expected nil buffer on failure")
	}

	bufErr := assertBufError(t, err, "wait", parsebuf.ErrCommandFailed)

	if !strings.Contains(err.Error(), "nonexistent-cmd") {
		t.Fatalf("error does not name the command: %v", err)
	}

	if bufErr.Command != "nonexistent-cmd /etc/hosts" {
		t.Fatalf("error command: got=%q", bufErr.Command)
	}

	if bufErr.Stderr == "" {
		t.Fatal("expected captured stderr from the shell")
	}
}

func Test_OpenPipe_Becomes_Entire_File_When_Output_Fits_In_First_Read(t *testing.T) {
	t.Parallel()
	requireShell(t)

	b := mustOpen(t)(parsebuf.OpenPipe("printf 'a\\nb\\n'", ""))

	if b.Mode() != parsebuf.ModeEntireFile {
		t.Fatalf("expected ModeEntireFile, got %s", b.Mode())
	}

	if b.Command() != "printf 'a\\nb\\n'" {
		t.Fatalf("Command: got=%q", b.Command())
	}

	assertStringSlicesEqual(t, readLines(t, b), []string{"a", "b"})
}

func Test_OpenPipe_Stays_Pipe_When_Output_Exceeds_First_Read(t *testing.T) {
	t.Parallel()
	requireShell(t)

	content := numberedLines(1000)
	path := writeFile(t, t.TempDir(), "big file.txt", content)

	b := mustOpen(t)(parsebuf.OpenPipe("cat %s", path, parsebuf.WithPageSize(testPageSize)))

	if b.Mode() != parsebuf.ModePipe {
		t.Fatalf("expected ModePipe, got %s", b.Mode())
	}

	lines := readLines(t, b)
	if len(lines) != 1000 || lines[999] != "line-00999" {
		t.Fatalf("unexpected lines: count=%d", len(lines))
	}

	err := b.Close()
	if err != nil {
		t.Fatalf("Close after full read: %v", err)
	}
}

func Test_Close_Succeeds_When_Pipe_Is_Closed_Before_Output_Ends(t *testing.T) {
	t.Parallel()
	requireCommand(t, "yes")

	b, err := parsebuf.OpenPipe("yes", "", parsebuf.WithPageSize(testPageSize))
	if err != nil {
		t.Fatalf("OpenPipe: %v", err)
	}

	line, err := b.NextLine()
	if err != nil || string(line) != "y" {
		t.Fatalf("NextLine: got=%q err=%v", line, err)
	}

	err = b.Close()
	if err != nil {
		t.Fatalf("Close of an unfinished pipe: %v", err)
	}
}

func Test_Close_Reports_Exit_Status_When_Pipe_Fails_After_Full_Read(t *testing.T) {
	t.Parallel()
	requireShell(t)

	cmd := "i=0; while [ $i -lt 300 ]; do echo line$i; i=$((i+1)); done; exit 3"

	b, err := parsebuf.OpenPipe(cmd, "", parsebuf.WithPageSize(testPageSize))
	if err != nil {
		t.Fatalf("OpenPipe: %v", err)
	}

	if b.Mode() != parsebuf.ModePipe {
		t.Fatalf("expected ModePipe, got %s", b.Mode())
	}

	_, err = io.ReadAll(b)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	err = b.Close()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *exec.ExitError from Close, got %T (%v)", err, err)
	}

	if exitErr.ExitCode() != 3 {
		t.Fatalf("exit code: got=%d want=3", exitErr.ExitCode())
	}
}

func Test_OpenPipe_Routes_Stderr_When_Writer_Is_Given(t *testing.T) {
	t.Parallel()
	requireShell(t)

	var stderr bytes.Buffer

	_, err := parsebuf.OpenPipe("echo boom >&2; exit 1", "", parsebuf.WithStderr(&stderr))
	bufErr := assertBufError(t, err, "wait", parsebuf.ErrCommandFailed)

	if strings.TrimSpace(stderr.String()) != "boom" {
		t.Fatalf("stderr writer: got=%q", stderr.String())
	}

	if bufErr.Stderr != "" {
		t.Fatalf("stderr captured despite WithStderr: %q", bufErr.Stderr)
	}
}

func Test_Open_Decompresses_With_Command_When_Path_Ends_In_Gz(t *testing.T) {
	t.Parallel()
	requireCommand(t, "gzip")

	content := numberedLines(2000)

	var gz bytes.Buffer

	zw := gzip.NewWriter(&gz)

	_, err := zw.Write(content)
	if err != nil {
		t.Fatalf("gzip write: %v", err)
	}

	err = zw.Close()
	if err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	path := writeFile(t, t.TempDir(), "input.txt.gz", gz.Bytes())

	b := mustOpen(t)(parsebuf.Open(path, ""))

	if !strings.HasPrefix(b.Command(), "gzip -dc ") {
		t.Fatalf("Command: got=%q", b.Command())
	}

	lines := readLines(t, b)
	if len(lines) != 2000 || lines[1234] != "line-01234" {
		t.Fatalf("unexpected lines: count=%d", len(lines))
	}
}

func Test_Open_Uses_Custom_Command_When_Gzip_Command_Is_Set(t *testing.T) {
	t.Parallel()
	requireShell(t)

	path := writeFile(t, t.TempDir(), "plain.gz", []byte("not really\ncompressed\n"))

	b := mustOpen(t)(parsebuf.Open(path, "", parsebuf.WithGzipCommand("cat %s")))

	if b.Command() != fmt.Sprintf("cat %s", parsebuf.CommandLine("%s", path)) {
		t.Fatalf("Command: got=%q", b.Command())
	}

	assertStringSlicesEqual(t, readLines(t, b), []string{"not really", "compressed"})
}

func Test_CommandLine_Quotes_Path_When_It_Has_Spaces(t *testing.T) {
	t.Parallel()

	cases := []struct {
		template, path, want string
	}{
		{"gzip -dc %s", "my file.gz", "gzip -dc 'my file.gz'"},
		{"gzip -dc %s", "plain.gz", "gzip -dc plain.gz"},
		{"cat %s | sort", "a$b", `cat a\$b | sort`},
		{"ls -l", "", "ls -l"},
	}

	for _, tc := range cases {
		got := parsebuf.CommandLine(tc.template, tc.path)
		if got != tc.want {
			t.Fatalf("CommandLine(%q, %q): got=%q want=%q", tc.template, tc.path, got, tc.want)
		}
	}
}
