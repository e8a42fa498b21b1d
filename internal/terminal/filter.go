package terminal

import "regexp"

// restoreStrip matches the control sequences that must not be replayed when
// restoring buffered scrollback into a reconnecting terminal widget:
//
//	ESC [2J      clear screen
//	ESC [3J      clear scrollback
//	ESC [H       cursor home (no parameters)
//	ESC [?1049h  enter alternate screen
//	ESC [?1049l  leave alternate screen
//	ESC c        full terminal reset
//
// Replaying any of these would destroy the scrollback being restored. The
// filter runs only on restoration snapshots, never on the live stream, and
// leaves every other byte (including partial or unrecognized sequences)
// untouched.
var restoreStrip = regexp.MustCompile(`\x1b\[2J|\x1b\[3J|\x1b\[H|\x1b\[\?1049[hl]|\x1bc`)

// FilterForRestore strips screen-destroying sequences from a restoration
// snapshot.
func FilterForRestore(data []byte) []byte {
	if len(data) == 0 {
		return data
	}
	return restoreStrip.ReplaceAll(data, nil)
}
