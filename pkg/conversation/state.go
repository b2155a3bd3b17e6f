package conversation

import (
	"encoding/json"
	"slices"
)

// ConnectionStatus is the connection state as seen by the presentation layer
type ConnectionStatus struct {
	Connected bool   `json:"connected"`
	LastError string `json:"lastError,omitempty"`
}

// String returns "connected" or "disconnected"
func (s ConnectionStatus) String() string {
	if s.Connected {
		return "connected"
	}
	return "disconnected"
}

// State is the reconstructed conversation.
//
// A State value handed out by the client is a snapshot: it shares no
// mutable memory with the client's own copy.
type State struct {
	Messages     []Message        `json:"messages"`
	IsProcessing bool             `json:"isProcessing"`
	RunID        string           `json:"runId,omitempty"`
	ThreadID     string           `json:"threadId,omitempty"`
	CurrentStep  string           `json:"currentStep,omitempty"`
	AgentState   json.RawMessage  `json:"agentState,omitempty"`
	Status       ConnectionStatus `json:"status"`
}

// Clone returns a deep copy of the state
func (s State) Clone() State {
	out := s
	out.Messages = slices.Clone(s.Messages)
	out.AgentState = slices.Clone(s.AgentState)
	return out
}

// Message returns the message with the given id
func (s State) Message(id string) (Message, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.Messages[i], true
	}
	return Message{}, false
}

// LastMessage returns the most recently appended message
func (s State) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// indexOf scans from the tail since the messages being updated are almost
// always the most recent ones.
func (s State) indexOf(id string) int {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].ID == id {
			return i
		}
	}
	return -1
}

// Append returns a copy of the state with msg added at the tail. The
// receiver's message list is left untouched.
func (s State) Append(msg Message) State {
	messages := make([]Message, len(s.Messages), len(s.Messages)+1)
	copy(messages, s.Messages)
	s.Messages = append(messages, msg)
	return s
}

// indexOfTool finds the tool message with the given id that belongs to
// toolCallID.
func (s State) indexOfTool(id, toolCallID string) int {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		m := s.Messages[i]
		if m.ID == id && m.Role == RoleTool && m.ToolCallID == toolCallID {
			return i
		}
	}
	return -1
}

// toolName returns the tool name recorded for toolCallID, if any.
func (s State) toolName(toolCallID string) string {
	for _, m := range s.Messages {
		if m.Role == RoleTool && m.ToolCallID == toolCallID && m.ToolName != "" {
			return m.ToolName
		}
	}
	return ""
}
