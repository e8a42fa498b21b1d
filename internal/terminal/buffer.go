package terminal

// OutputBuffer retains recent session output as an ordered list of chunks.
//
// The running size is maintained incrementally; it is never recomputed by
// concatenating chunks. Trimming uses hysteresis: once the size passes the
// high-water mark, oldest whole chunks are dropped until the size is at or
// under the low-water mark. Chunks are never split.
//
// OutputBuffer is not internally synchronized; the Manager serializes all
// access under its own lock.
type OutputBuffer struct {
	chunks [][]byte
	size   int
	high   int
	low    int
}

// Default hysteresis thresholds, in bytes.
const (
	DefaultHighWater = 200000
	DefaultLowWater  = 160000
)

// NewOutputBuffer creates a buffer with the given hysteresis thresholds.
// Non-positive or inverted thresholds fall back to the defaults.
func NewOutputBuffer(high, low int) *OutputBuffer {
	if high <= 0 || low <= 0 || low > high {
		high, low = DefaultHighWater, DefaultLowWater
	}
	return &OutputBuffer{high: high, low: low}
}

// Append copies p into the buffer as one chunk and trims if the high-water
// mark is exceeded. Returns the number of bytes trimmed.
func (b *OutputBuffer) Append(p []byte) int {
	if len(p) == 0 {
		return 0
	}
	chunk := make([]byte, len(p))
	copy(chunk, p)
	b.chunks = append(b.chunks, chunk)
	b.size += len(chunk)

	if b.size <= b.high {
		return 0
	}
	trimmed := 0
	for b.size > b.low && len(b.chunks) > 0 {
		trimmed += len(b.chunks[0])
		b.size -= len(b.chunks[0])
		b.chunks[0] = nil
		b.chunks = b.chunks[1:]
	}
	return trimmed
}

// Prepend splices previously captured chunks in front of the current
// contents. Used to carry scrollback across a restart.
func (b *OutputBuffer) Prepend(chunks [][]byte) {
	if len(chunks) == 0 {
		return
	}
	merged := make([][]byte, 0, len(chunks)+len(b.chunks))
	merged = append(merged, chunks...)
	merged = append(merged, b.chunks...)
	b.chunks = merged
	for _, c := range chunks {
		b.size += len(c)
	}
}

// Chunks returns a shallow copy of the retained chunk list, oldest first.
func (b *OutputBuffer) Chunks() [][]byte {
	out := make([][]byte, len(b.chunks))
	copy(out, b.chunks)
	return out
}

// Snapshot concatenates the retained chunks without mutating the buffer.
func (b *OutputBuffer) Snapshot() []byte {
	out := make([]byte, 0, b.size)
	for _, c := range b.chunks {
		out = append(out, c...)
	}
	return out
}

// Len returns the running size in bytes.
func (b *OutputBuffer) Len() int {
	return b.size
}

// Clear empties the buffer.
func (b *OutputBuffer) Clear() {
	b.chunks = nil
	b.size = 0
}
