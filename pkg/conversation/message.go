package conversation

import (
	"fmt"
	"time"
)

// Role identifies who authored a conversation message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Validate validates that a role is one of the allowed values
func (r Role) Validate() error {
	switch r {
	case RoleUser, RoleAssistant, RoleTool:
		return nil
	default:
		return fmt.Errorf("invalid role: %s", r)
	}
}

// Message is a single entry of the conversation log.
//
// Content only grows while IsStreaming is true and is frozen afterwards.
type Message struct {
	ID          string    `json:"id"`
	Role        Role      `json:"role"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	IsStreaming bool      `json:"isStreaming,omitempty"`

	// Set on tool messages only.
	ToolCallID string `json:"toolCallId,omitempty"`
	ToolName   string `json:"toolName,omitempty"`
}

// ResultMessageID derives the id of the message holding a tool call's result.
// It is distinct from toolCallID. It can still equal the wire id of another
// tool call, in which case the reducer gives the later message a generated id.
func ResultMessageID(toolCallID string) string {
	return toolCallID + "-result"
}
