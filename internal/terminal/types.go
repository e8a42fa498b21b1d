package terminal

// SessionKind selects what a session runs: an interactive shell or an
// external command-line agent tool.
type SessionKind string

const (
	KindInteractive SessionKind = "interactive"
	KindAgent       SessionKind = "agent"
)

// ParseKind maps a wire string to a SessionKind, defaulting to interactive.
func ParseKind(s string) SessionKind {
	if s == string(KindAgent) {
		return KindAgent
	}
	return KindInteractive
}

// BackendKind identifies which process-control variant backs a session.
type BackendKind string

const (
	BackendPTY  BackendKind = "pty"
	BackendPipe BackendKind = "pipe"
)

// Command is a fully resolved executable invocation.
type Command struct {
	Path string
	Args []string
	Env  []string
}

// Sink receives asynchronous session notifications. Implementations must not
// call back into the Manager synchronously from these methods.
type Sink interface {
	// Output delivers a chunk of session output, in backend-produced order
	// for a given id.
	Output(id string, data []byte)

	// Exit reports that a session's process exited on its own.
	Exit(id string, code int)

	// SessionCountChanged reports the number of live sessions after a
	// create, kill, or exit.
	SessionCountChanged(count int)
}

// nopSink is used when no sink is wired (tests, tooling).
type nopSink struct{}

func (nopSink) Output(string, []byte)   {}
func (nopSink) Exit(string, int)        {}
func (nopSink) SessionCountChanged(int) {}

// SessionInfo is the public representation of a session.
type SessionInfo struct {
	ID      string      `json:"id"`
	Kind    SessionKind `json:"kind"`
	Cwd     string      `json:"cwd"`
	Backend BackendKind `json:"backend"`
}
