package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamingBuffer(t *testing.T) {
	b := NewStreamingBuffer()

	assert.True(t, b.Open("m1"))
	assert.False(t, b.Open("m1"), "second open must not reset the entry")

	text, ok := b.Append("m1", "Hel")
	assert.True(t, ok)
	assert.Equal(t, "Hel", text)

	first := text
	text, ok = b.Append("m1", "lo")
	assert.True(t, ok)
	assert.Equal(t, "Hello", text)
	assert.Equal(t, "Hel", first, "earlier results are not affected by later appends")

	_, ok = b.Append("m2", "x")
	assert.False(t, ok)
	assert.Equal(t, 1, b.Len())

	assert.True(t, b.Close("m1"))
	assert.False(t, b.Close("m1"))
	assert.Equal(t, "Hello", text, "closing must not affect published text")

	_, ok = b.Text("m1")
	assert.False(t, ok)
}

func TestStreamingBuffer_Reset(t *testing.T) {
	b := NewStreamingBuffer()
	b.Open("a")
	b.Open("b")

	b.Reset()

	assert.Equal(t, 0, b.Len())
	assert.True(t, b.Open("a"))
}
