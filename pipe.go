package parsebuf

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// OpenPipe runs a shell command and buffers its standard output.
//
// With path empty, cmdTemplate is the literal command line. Otherwise the
// first %s in cmdTemplate is replaced by the shell-quoted path, so
// OpenPipe("gzip -dc %s", "my file.gz") runs gzip -dc 'my file.gz'.
// The command runs through /bin/sh.
//
// The first page of output is read immediately. If the command finishes
// within it (a short read), it is waited for and the buffer becomes
// ModeEntireFile; small outputs then behave like fully buffered strings.
// Otherwise the buffer is ModePipe and the command keeps running until the
// output is consumed or the buffer is closed.
//
// A command that cannot start, or that exits non-zero before its output is
// exhausted by the first read, yields an [*Error] wrapping
// [ErrCommandFailed]. The error names the command and, unless [WithStderr]
// redirects it, includes the tail of its standard error.
func OpenPipe(cmdTemplate, path string, opts ...Option) (*Buffer, error) {
	return openPipe(cmdTemplate, path, applyOptions(opts))
}

func openPipe(cmdTemplate, path string, o options) (*Buffer, error) {
	b := newBuffer(o)
	b.filename = path
	b.command = commandLine(cmdTemplate, path)

	src, err := startPipe(b.command, o.Stderr)
	if err != nil {
		return nil, &Error{Op: "exec", Path: path, Command: b.command, Err: fmt.Errorf("%w: %w", ErrCommandFailed, err)}
	}

	b.src = src
	b.mode = ModePipe
	b.store = storeHeap
	b.makeRoom(b.pageSize)

	nr, err := io.ReadFull(src, b.mem[:b.pageSize])
	b.n = nr

	switch {
	case err == nil:
		b.logger.Debug("opened", "command", b.command, "strategy", "pipe", "page_size", b.pageSize)

		return b, nil

	case errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF):
		// Short read: the command is done. Reap it and keep the output as an
		// entire-file buffer.
		b.src = nil
		b.eof = true
		b.mode = ModeEntireFile

		err = src.release()
		if err != nil {
			return nil, &Error{Op: "wait", Path: path, Command: b.command, Stderr: src.stderrTail(),
				Err: fmt.Errorf("%w: %w", ErrCommandFailed, err)}
		}

		b.logger.Debug("opened", "command", b.command, "strategy", "pipe->entire", "size", nr)

		return b, nil

	default:
		_ = src.release()

		return nil, &Error{Op: "read", Path: path, Command: b.command, Stderr: src.stderrTail(),
			Err: fmt.Errorf("%w: %w", ErrCommandFailed, err)}
	}
}

// pipeSource is the standard output of a running command, owned by the
// buffer.
type pipeSource struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *tailWriter // nil when stderr is routed elsewhere
	eof    bool
	done   bool
}

func startPipe(command string, stderr io.Writer) (*pipeSource, error) {
	cmd := exec.Command("/bin/sh", "-c", command)

	src := &pipeSource{cmd: cmd}

	if stderr != nil {
		cmd.Stderr = stderr
	} else {
		src.stderr = &tailWriter{limit: stderrTailSize}
		cmd.Stderr = src.stderr
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	err = cmd.Start()
	if err != nil {
		return nil, err
	}

	src.stdout = stdout

	return src, nil
}

func (s *pipeSource) Read(p []byte) (int, error) {
	n, err := s.stdout.Read(p)
	if errors.Is(err, io.EOF) {
		s.eof = true
	}

	return n, err
}

// release closes the command's output and waits for it. The exit status is
// only reported when the output was read to the end; a command cut off early
// by Close typically dies of SIGPIPE, which is expected.
func (s *pipeSource) release() error {
	if s.done {
		return nil
	}

	s.done = true

	// Wait closes stdout itself; closing first unblocks a writer that would
	// otherwise fill the pipe forever.
	if !s.eof {
		_ = s.stdout.Close()
	}

	err := s.cmd.Wait()
	if !s.eof {
		return nil
	}

	return err
}

func (*pipeSource) seeker() io.Seeker {
	return nil
}

func (s *pipeSource) stderrTail() string {
	if s.stderr == nil {
		return ""
	}

	return s.stderr.String()
}

// tailWriter keeps the last limit bytes written to it.
type tailWriter struct {
	mu    sync.Mutex
	buf   []byte
	limit int
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	if over := len(w.buf) - w.limit; over > 0 {
		w.buf = append(w.buf[:0], w.buf[over:]...)
	}

	return len(p), nil
}

func (w *tailWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return string(w.buf)
}
