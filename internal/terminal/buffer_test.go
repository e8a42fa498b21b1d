package terminal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferSnapshotReproducesAppends(t *testing.T) {
	b := NewOutputBuffer(DefaultHighWater, DefaultLowWater)

	chunks := []string{"hello ", "world", "\r\n", "more output"}
	for _, c := range chunks {
		b.Append([]byte(c))
	}

	assert.Equal(t, strings.Join(chunks, ""), string(b.Snapshot()))
	assert.Equal(t, len(strings.Join(chunks, "")), b.Len())
}

func TestBufferNoTrimUnderHighWater(t *testing.T) {
	b := NewOutputBuffer(1000, 800)

	total := 0
	for i := 0; i < 10; i++ {
		trimmed := b.Append(bytes.Repeat([]byte{'x'}, 100))
		assert.Zero(t, trimmed)
		total += 100
	}

	assert.Equal(t, total, b.Len())
	assert.Len(t, b.Chunks(), 10)
}

func TestBufferHysteresisTrim(t *testing.T) {
	b := NewOutputBuffer(1000, 800)

	for i := 0; i < 10; i++ {
		b.Append(bytes.Repeat([]byte{'x'}, 100))
	}
	// Crossing the high-water mark settles at or under the low-water mark.
	trimmed := b.Append(bytes.Repeat([]byte{'y'}, 100))

	assert.Positive(t, trimmed)
	assert.LessOrEqual(t, b.Len(), 800)
	assert.True(t, bytes.HasSuffix(b.Snapshot(), bytes.Repeat([]byte{'y'}, 100)),
		"newest chunk must survive the trim intact")
}

func TestBufferTrimDropsWholeChunks(t *testing.T) {
	b := NewOutputBuffer(200000, 160000)

	a := bytes.Repeat([]byte{'a'}, 150000)
	bb := bytes.Repeat([]byte{'b'}, 60000)
	b.Append(a)
	trimmed := b.Append(bb)

	// 210000 > 200000: the oldest whole chunk goes, nothing is split.
	assert.Equal(t, 150000, trimmed)
	assert.LessOrEqual(t, b.Len(), 200000)
	assert.Equal(t, string(bb), string(b.Snapshot()))
}

func TestBufferIncrementalSize(t *testing.T) {
	b := NewOutputBuffer(1000, 800)

	b.Append([]byte("abc"))
	require.Equal(t, 3, b.Len())
	b.Append([]byte("defg"))
	require.Equal(t, 7, b.Len())
	b.Clear()
	require.Zero(t, b.Len())
	require.Empty(t, b.Snapshot())
}

func TestBufferSnapshotDoesNotMutate(t *testing.T) {
	b := NewOutputBuffer(1000, 800)
	b.Append([]byte("stable"))

	first := b.Snapshot()
	second := b.Snapshot()

	assert.Equal(t, first, second)
	assert.Equal(t, 6, b.Len())
}

func TestBufferPrepend(t *testing.T) {
	b := NewOutputBuffer(1000, 800)
	b.Append([]byte("new"))
	b.Prepend([][]byte{[]byte("old1 "), []byte("old2 ")})

	assert.Equal(t, "old1 old2 new", string(b.Snapshot()))
	assert.Equal(t, 13, b.Len())
}

func TestBufferEmptyAppend(t *testing.T) {
	b := NewOutputBuffer(1000, 800)
	b.Append(nil)
	b.Append([]byte{})

	assert.Zero(t, b.Len())
	assert.Empty(t, b.Chunks())
}
