package terminal

import (
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
)

// ptyBackend runs the child behind a native pseudo-terminal: true resize and
// one combined, ordered output stream.
type ptyBackend struct {
	cmd      *exec.Cmd
	ptmx     *os.File
	killOnce sync.Once
}

func startPTY(cmd Command, cwd string, cb Callbacks) (*ptyBackend, error) {
	c := exec.Command(cmd.Path, cmd.Args...)
	c.Dir = cwd
	env := make([]string, 0, len(cmd.Env)+1)
	env = append(env, cmd.Env...)
	env = append(env, "TERM=xterm-256color")
	c.Env = env

	ptmx, err := pty.StartWithSize(c, &pty.Winsize{Rows: 24, Cols: 80})
	if err != nil {
		return nil, fmt.Errorf("failed to start pty: %w", err)
	}

	b := &ptyBackend{cmd: c, ptmx: ptmx}

	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := ptmx.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				cb.OnData(chunk)
			}
			if err != nil {
				// EOF or EIO once the child side closes.
				break
			}
		}
		err := c.Wait()
		ptmx.Close()
		cb.OnExit(exitStatus(err))
	}()

	return b, nil
}

func (b *ptyBackend) Write(p []byte) error {
	_, err := b.ptmx.Write(p)
	return err
}

func (b *ptyBackend) Resize(cols, rows int) error {
	return pty.Setsize(b.ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

func (b *ptyBackend) Kill() {
	b.killOnce.Do(func() {
		if b.cmd.Process != nil {
			b.cmd.Process.Kill()
		}
		b.ptmx.Close()
	})
}

func (b *ptyBackend) Kind() BackendKind {
	return BackendPTY
}
