package terminal

import (
	"os/exec"
	"sync"

	"github.com/GriffinCanCode/TermOS/backend/internal/logging"
	"github.com/creack/pty"
	"go.uber.org/zap"
)

// Backend drives one child process behind a uniform surface. Data and exit
// are delivered through the Callbacks registered at spawn time; for a given
// backend, data callbacks arrive in produced order and the exit callback
// fires last.
type Backend interface {
	Write(p []byte) error
	Resize(cols, rows int) error
	Kill()
	Kind() BackendKind
}

// Callbacks receive backend events. OnData must treat its slice as owned;
// OnExit fires exactly once, after the final OnData.
type Callbacks struct {
	OnData func(p []byte)
	OnExit func(code int)
}

// Factory selects the process-control variant. PTY capability is probed once
// at construction; the first real PTY spawn failure disables PTY permanently
// for the process lifetime. The flag lives here, not in package state.
type Factory struct {
	log *logging.Logger

	mu          sync.Mutex
	ptyDisabled bool
}

// NewFactory probes native PTY support and returns a factory.
func NewFactory(log *logging.Logger) *Factory {
	f := &Factory{log: log}
	ptmx, tty, err := pty.Open()
	if err != nil {
		f.ptyDisabled = true
		log.Warn("pty unavailable, sessions will use pipe fallback", zap.Error(err))
		return f
	}
	ptmx.Close()
	tty.Close()
	return f
}

// PTYEnabled reports whether the native backend is still in play.
func (f *Factory) PTYEnabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.ptyDisabled
}

func (f *Factory) disablePTY(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ptyDisabled {
		return
	}
	f.ptyDisabled = true
	f.log.Warn("pty spawn failed, disabling native backend for process lifetime",
		zap.Error(err))
}

// Spawn starts cmd in cwd behind the best available backend: PTY first, then
// the pipe fallback. An error means both variants failed.
func (f *Factory) Spawn(cmd Command, cwd string, cb Callbacks) (Backend, error) {
	if f.PTYEnabled() {
		b, err := startPTY(cmd, cwd, cb)
		if err == nil {
			return b, nil
		}
		f.disablePTY(err)
	}
	return startPipe(cmd, cwd, cb)
}

// exitStatus maps a Wait result to an exit code: 0 on clean exit, the
// process's code when it exited non-zero, -1 when it was signaled or never
// reported one.
func exitStatus(err error) int {
	if err == nil {
		return 0
	}
	if ee, ok := err.(*exec.ExitError); ok {
		return ee.ExitCode()
	}
	return -1
}
