package terminal

import (
	"runtime"
	"sync"

	"github.com/GriffinCanCode/TermOS/backend/internal/logging"
	"go.uber.org/zap"
)

// CommandResolver resolves a session kind into an executable invocation.
type CommandResolver interface {
	Resolve(kind SessionKind, platform, override, agentVariant string) Command
}

// Spawner starts a resolved command behind the best available backend.
type Spawner interface {
	Spawn(cmd Command, cwd string, cb Callbacks) (Backend, error)
}

// Observer receives lifecycle measurements. May be nil.
type Observer interface {
	SessionOpened(backend BackendKind)
	SessionClosed()
	SpawnFailed()
	Output(bytes int)
	Trimmed(bytes int)
}

// Config bounds per-session output buffering and carries service-level
// resolution defaults.
type Config struct {
	HighWater int
	LowWater  int

	// DefaultShell applies when a create carries no shell override.
	DefaultShell string
}

// Session is one supervised process plus its identity, working directory,
// and output history. The process handle is exclusively owned.
type Session struct {
	id          string
	kind        SessionKind
	cwd         string
	backend     Backend
	backendKind BackendKind
	buffer      *OutputBuffer

	// closed marks the session as removed from the registry; late backend
	// callbacks for this instance are dropped.
	closed bool
}

// Manager multiplexes terminal sessions behind caller-assigned string ids.
//
// All registry and buffer state is serialized under one lock; backend I/O
// callbacks funnel through it, preserving single-writer semantics. No public
// operation blocks on process I/O. Sink notifications are emitted outside
// the lock; per-id output ordering is preserved because each session's data
// events originate from a single reader goroutine.
type Manager struct {
	log      *logging.Logger
	resolver CommandResolver
	spawner  Spawner
	sink     Sink
	obs      Observer
	cfg      Config

	mu       sync.Mutex
	sessions map[string]*Session
	disposed bool
}

// NewManager creates a session manager. A nil sink discards notifications;
// a nil observer discards measurements.
func NewManager(log *logging.Logger, resolver CommandResolver, spawner Spawner, sink Sink, obs Observer, cfg Config) *Manager {
	if sink == nil {
		sink = nopSink{}
	}
	return &Manager{
		log:      log,
		resolver: resolver,
		spawner:  spawner,
		sink:     sink,
		obs:      obs,
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

// Create resolves and spawns a session under id. Returns false only when
// both backends fail to spawn, the manager is disposed, or id is already
// registered (a caller error; ids are caller-assigned and must be unique).
func (m *Manager) Create(id, cwd string, kind SessionKind, shellOverride, agentVariant string) bool {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return false
	}
	if _, exists := m.sessions[id]; exists {
		m.mu.Unlock()
		m.log.Error("session id already registered", zap.String("session_id", id))
		return false
	}
	s := &Session{
		id:     id,
		kind:   kind,
		cwd:    cwd,
		buffer: NewOutputBuffer(m.cfg.HighWater, m.cfg.LowWater),
	}
	m.sessions[id] = s
	m.mu.Unlock()

	if shellOverride == "" {
		shellOverride = m.cfg.DefaultShell
	}
	cmd := m.resolver.Resolve(kind, runtime.GOOS, shellOverride, agentVariant)
	cb := Callbacks{
		OnData: func(p []byte) { m.handleData(s, p) },
		OnExit: func(code int) { m.handleExit(s, code) },
	}

	backend, err := m.spawner.Spawn(cmd, cwd, cb)
	if err != nil {
		m.mu.Lock()
		if cur, ok := m.sessions[id]; ok && cur == s {
			delete(m.sessions, id)
		}
		m.mu.Unlock()
		if m.obs != nil {
			m.obs.SpawnFailed()
		}
		m.log.Error("failed to spawn session on any backend",
			zap.String("session_id", id),
			zap.String("path", cmd.Path),
			zap.Error(err))
		return false
	}

	m.mu.Lock()
	// The process may have exited before the handle was attached; in that
	// case the session is already deregistered and notified.
	if cur, ok := m.sessions[id]; ok && cur == s {
		s.backend = backend
		s.backendKind = backend.Kind()
	}
	count := len(m.sessions)
	m.mu.Unlock()

	m.sink.SessionCountChanged(count)
	if m.obs != nil {
		m.obs.SessionOpened(backend.Kind())
	}
	m.log.Info("session created",
		zap.String("session_id", id),
		zap.String("kind", string(kind)),
		zap.String("backend", string(backend.Kind())),
		zap.String("cwd", cwd))
	return true
}

// Write sends input to a session. Unknown ids are treated as stale calls and
// ignored.
func (m *Manager) Write(id string, data []byte) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	var backend Backend
	if ok && !s.closed {
		backend = s.backend
	}
	m.mu.Unlock()

	if backend == nil {
		return
	}
	if err := backend.Write(data); err != nil {
		m.log.Debug("session write failed", zap.String("session_id", id), zap.Error(err))
	}
}

// Resize changes terminal dimensions. No-op for unknown ids and for backends
// without resize support.
func (m *Manager) Resize(id string, cols, rows int) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	var backend Backend
	if ok && !s.closed {
		backend = s.backend
	}
	m.mu.Unlock()

	if backend == nil {
		return
	}
	if err := backend.Resize(cols, rows); err != nil {
		m.log.Debug("session resize failed", zap.String("session_id", id), zap.Error(err))
	}
}

// Kill terminates a session unconditionally: no graceful handshake with the
// child. Returns whether the session existed. No exit notification is
// emitted for a killed session.
func (m *Manager) Kill(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	s.closed = true
	delete(m.sessions, id)
	backend := s.backend
	count := len(m.sessions)
	m.mu.Unlock()

	if backend != nil {
		backend.Kill()
	}
	m.sink.SessionCountChanged(count)
	if m.obs != nil {
		m.obs.SessionClosed()
	}
	m.log.Info("session killed", zap.String("session_id", id))
	return true
}

// Restart tears down a session's process and re-creates it under the same id
// with a new working directory, carrying the buffered scrollback into the new
// instance. Requires an existing session. On failure the id is left
// unregistered.
func (m *Manager) Restart(id, cwd string, shellOverride, agentVariant string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	kind := s.kind
	saved := s.buffer.Chunks()
	s.closed = true
	delete(m.sessions, id)
	backend := s.backend
	count := len(m.sessions)
	m.mu.Unlock()

	if backend != nil {
		backend.Kill()
	}
	m.sink.SessionCountChanged(count)
	if m.obs != nil {
		m.obs.SessionClosed()
	}

	if !m.Create(id, cwd, kind, shellOverride, agentVariant) {
		return false
	}

	m.mu.Lock()
	if ns, ok := m.sessions[id]; ok {
		ns.buffer.Prepend(saved)
	}
	m.mu.Unlock()

	m.log.Info("session restarted", zap.String("session_id", id), zap.String("cwd", cwd))
	return true
}

// Cwd returns the working directory recorded at creation time. It is never
// re-derived from the live process.
func (m *Manager) Cwd(id string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return "", false
	}
	return s.cwd, true
}

// Exists reports whether id is registered.
func (m *Manager) Exists(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	return ok
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sessions returns public info for every live session.
func (m *Manager) Sessions() []SessionInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SessionInfo, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, SessionInfo{
			ID:      s.id,
			Kind:    s.kind,
			Cwd:     s.cwd,
			Backend: s.backendKind,
		})
	}
	return out
}

// OutputSnapshot returns the restore-filtered buffered output for id. The
// caller should ClearOutput after consuming a restoration snapshot to avoid
// replaying it twice.
func (m *Manager) OutputSnapshot(id string) (string, bool) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return "", false
	}
	raw := s.buffer.Snapshot()
	m.mu.Unlock()
	return string(FilterForRestore(raw)), true
}

// ClearOutput empties a session's output buffer.
func (m *Manager) ClearOutput(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.buffer.Clear()
	}
}

// Dispose marks shutdown, suppressing further notifications, and kills every
// session.
func (m *Manager) Dispose() {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	m.disposed = true
	backends := make([]Backend, 0, len(m.sessions))
	for _, s := range m.sessions {
		s.closed = true
		if s.backend != nil {
			backends = append(backends, s.backend)
		}
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, b := range backends {
		b.Kill()
	}
	m.log.Info("session manager disposed", zap.Int("killed", len(backends)))
}

func (m *Manager) handleData(s *Session, data []byte) {
	m.mu.Lock()
	if m.disposed || s.closed {
		m.mu.Unlock()
		return
	}
	trimmed := s.buffer.Append(data)
	m.mu.Unlock()

	if m.obs != nil {
		m.obs.Output(len(data))
		if trimmed > 0 {
			m.obs.Trimmed(trimmed)
		}
	}
	m.sink.Output(s.id, data)
}

func (m *Manager) handleExit(s *Session, code int) {
	m.mu.Lock()
	if m.disposed || s.closed {
		m.mu.Unlock()
		return
	}
	s.closed = true
	delete(m.sessions, s.id)
	count := len(m.sessions)
	m.mu.Unlock()

	m.sink.Exit(s.id, code)
	m.sink.SessionCountChanged(count)
	if m.obs != nil {
		m.obs.SessionClosed()
	}
	m.log.Info("session exited", zap.String("session_id", s.id), zap.Int("code", code))
}
