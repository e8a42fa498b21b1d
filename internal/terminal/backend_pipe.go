package terminal

import (
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// DegradedNotice is emitted as the first output of every pipe-backed session
// so the UI can tell the user resize and full terminal semantics are gone.
const DegradedNotice = "[terminal] pseudo-terminal unavailable; running in pipe mode (no resize)\r\n"

// pipeBackend is the fallback process control: plain stdio pipes, no terminal
// semantics. stdout and stderr both feed the session's single output stream;
// only within-stream ordering is guaranteed. Resize is a no-op.
type pipeBackend struct {
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	killOnce sync.Once
}

func startPipe(cmd Command, cwd string, cb Callbacks) (*pipeBackend, error) {
	c := exec.Command(cmd.Path, cmd.Args...)
	c.Dir = cwd
	env := make([]string, 0, len(cmd.Env)+1)
	env = append(env, cmd.Env...)
	env = append(env, "TERM=dumb")
	c.Env = env

	stdin, err := c.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdin pipe: %w", err)
	}
	stdout, err := c.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	stderr, err := c.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stderr pipe: %w", err)
	}

	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("failed to start process: %w", err)
	}

	b := &pipeBackend{cmd: c, stdin: stdin}

	cb.OnData([]byte(DegradedNotice))

	var pumps sync.WaitGroup
	pumps.Add(2)
	go pump(stdout, cb.OnData, &pumps)
	go pump(stderr, cb.OnData, &pumps)

	go func() {
		pumps.Wait()
		err := c.Wait()
		if err != nil {
			if _, ok := err.(*exec.ExitError); !ok {
				// Process-level failure, not a plain non-zero exit.
				cb.OnData([]byte(fmt.Sprintf("[terminal] process error: %v\r\n", err)))
			}
		}
		cb.OnExit(exitStatus(err))
	}()

	return b, nil
}

func pump(r io.Reader, onData func([]byte), wg *sync.WaitGroup) {
	defer wg.Done()
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			onData(chunk)
		}
		if err != nil {
			return
		}
	}
}

func (b *pipeBackend) Write(p []byte) error {
	_, err := b.stdin.Write(p)
	return err
}

// Resize is a no-op: plain pipes have no window size.
func (b *pipeBackend) Resize(cols, rows int) error {
	return nil
}

func (b *pipeBackend) Kill() {
	b.killOnce.Do(func() {
		b.stdin.Close()
		if b.cmd.Process != nil {
			b.cmd.Process.Kill()
		}
	})
}

func (b *pipeBackend) Kind() BackendKind {
	return BackendPipe
}
