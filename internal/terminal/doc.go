// Package terminal is the terminal-session process manager.
//
// It spawns, supervises, and tears down the interactive shell and agent
// processes backing terminal panels, multiplexes concurrent sessions behind
// stable string identifiers, buffers recent output for reconnection-safe
// replay, and exposes resize/restart/kill with cross-platform executable
// resolution.
//
// Architecture:
//   - Resolver: shell/agent executable and environment resolution, including
//     a bounded login-shell environment snapshot
//   - Backend: uniform process control with two variants: native PTY and a
//     plain-pipe fallback, selected once per process by the Factory
//   - OutputBuffer: bounded per-session chunk list with hysteresis trimming
//   - Manager: registry and orchestrator, notifying a Sink of output, exit,
//     and session-count events
//
// Example usage:
//
//	factory := terminal.NewFactory(log)
//	resolver := terminal.NewResolver(log, "claude", 5*time.Second)
//	mgr := terminal.NewManager(log, resolver, factory, sink, nil, terminal.Config{})
//
//	mgr.Create("panel-1", "/home/user/project", terminal.KindInteractive, "", "")
//	mgr.Write("panel-1", []byte("ls -la\n"))
//	mgr.Resize("panel-1", 120, 40)
//
//	// Reconnecting UI restores scrollback, then clears it to avoid
//	// replaying the same snapshot twice.
//	if snap, ok := mgr.OutputSnapshot("panel-1"); ok {
//		render(snap)
//		mgr.ClearOutput("panel-1")
//	}
//
//	mgr.Restart("panel-1", "/home/user/other", "", "")
//	mgr.Dispose()
package terminal
