package conversation

import "strings"

// StreamingBuffer accumulates the text of messages that are still streaming,
// keyed by message id. It lets a delta be applied without re-deriving the
// accumulated text from the message list.
//
// A StreamingBuffer belongs to a single Reducer and is not safe for
// concurrent use.
type StreamingBuffer struct {
	entries map[string]*strings.Builder
}

// NewStreamingBuffer creates an empty buffer
func NewStreamingBuffer() *StreamingBuffer {
	return &StreamingBuffer{entries: make(map[string]*strings.Builder)}
}

// Open creates an empty entry for id. It reports false if one already exists.
func (b *StreamingBuffer) Open(id string) bool {
	if _, exists := b.entries[id]; exists {
		return false
	}
	b.entries[id] = &strings.Builder{}
	return true
}

// Append adds delta to the entry for id and returns the accumulated text.
// It reports false, leaving the buffer untouched, if there is no entry.
func (b *StreamingBuffer) Append(id, delta string) (string, bool) {
	sb, exists := b.entries[id]
	if !exists {
		return "", false
	}
	sb.WriteString(delta)
	return sb.String(), true
}

// Text returns the accumulated text for id
func (b *StreamingBuffer) Text(id string) (string, bool) {
	sb, exists := b.entries[id]
	if !exists {
		return "", false
	}
	return sb.String(), true
}

// Close drops the entry for id. Strings previously returned by Append stay valid.
func (b *StreamingBuffer) Close(id string) bool {
	if _, exists := b.entries[id]; !exists {
		return false
	}
	delete(b.entries, id)
	return true
}

// Len returns the number of open entries
func (b *StreamingBuffer) Len() int {
	return len(b.entries)
}

// Reset drops every entry
func (b *StreamingBuffer) Reset() {
	clear(b.entries)
}
