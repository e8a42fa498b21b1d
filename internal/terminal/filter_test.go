package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterStripsDesignatedSequences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clear screen", "before\x1b[2Jafter", "beforeafter"},
		{"clear scrollback", "a\x1b[3Jb", "ab"},
		{"cursor home", "a\x1b[Hb", "ab"},
		{"enter alt screen", "a\x1b[?1049hb", "ab"},
		{"leave alt screen", "a\x1b[?1049lb", "ab"},
		{"full reset", "a\x1bcb", "ab"},
		{"combined", "\x1b[2J\x1b[3J\x1b[Hprompt$ ", "prompt$ "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(FilterForRestore([]byte(tt.in))))
		})
	}
}

func TestFilterLeavesOtherBytesUntouched(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"plain text", "hi\r\nthere"},
		{"color codes", "\x1b[31mred\x1b[0m"},
		{"cursor home with params", "\x1b[5;10H"},
		{"cursor movement", "\x1b[2A\x1b[3B"},
		{"partial escape at end", "output\x1b["},
		{"bare escape", "x\x1by"},
		{"different private mode", "\x1b[?1048h"},
		{"clear line not screen", "\x1b[2K"},
		{"binary bytes", "\x00\x01\xff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.in, string(FilterForRestore([]byte(tt.in))))
		})
	}
}

func TestFilterEmpty(t *testing.T) {
	assert.Empty(t, FilterForRestore(nil))
	assert.Empty(t, FilterForRestore([]byte{}))
}
