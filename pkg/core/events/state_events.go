package events

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// validJSONPatchOps contains the valid JSON Patch operations for efficient lookup
var validJSONPatchOps = map[string]bool{
	"add":     true,
	"remove":  true,
	"replace": true,
	"move":    true,
	"copy":    true,
	"test":    true,
}

// StateSnapshotEvent contains a complete snapshot of the agent state
type StateSnapshotEvent struct {
	*BaseEvent
	Snapshot json.RawMessage `json:"snapshot"`
}

// NewStateSnapshotEvent creates a new state snapshot event.
// The snapshot is marshaled eagerly so that later changes to it by the caller
// do not leak into the event.
func NewStateSnapshotEvent(snapshot any) (*StateSnapshotEvent, error) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	return &StateSnapshotEvent{
		BaseEvent: NewBaseEvent(EventTypeStateSnapshot),
		Snapshot:  raw,
	}, nil
}

// Validate validates the state snapshot event
func (e *StateSnapshotEvent) Validate() error {
	if err := e.BaseEvent.Validate(); err != nil {
		return err
	}

	trimmed := bytes.TrimSpace(e.Snapshot)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return fmt.Errorf("StateSnapshotEvent validation failed: snapshot field is required")
	}

	return nil
}

// ToJSON serializes the event to JSON
func (e *StateSnapshotEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func (*StateSnapshotEvent) sealed() {}

// JSONPatchOperation represents a JSON Patch operation (RFC 6902)
type JSONPatchOperation struct {
	Op    string          `json:"op"`              // "add", "remove", "replace", "move", "copy", "test"
	Path  string          `json:"path"`            // JSON Pointer path
	Value json.RawMessage `json:"value,omitempty"` // Value for add, replace, test operations
	From  string          `json:"from,omitempty"`  // Source path for move, copy operations
}

// StateDeltaEvent contains incremental state changes using JSON Patch
type StateDeltaEvent struct {
	*BaseEvent
	Delta []JSONPatchOperation `json:"delta"`
}

// NewStateDeltaEvent creates a new state delta event
func NewStateDeltaEvent(delta []JSONPatchOperation) *StateDeltaEvent {
	return &StateDeltaEvent{
		BaseEvent: NewBaseEvent(EventTypeStateDelta),
		Delta:     delta,
	}
}

// Validate validates the state delta event
func (e *StateDeltaEvent) Validate() error {
	if err := e.BaseEvent.Validate(); err != nil {
		return err
	}

	if len(e.Delta) == 0 {
		return fmt.Errorf("StateDeltaEvent validation failed: delta field must contain at least one operation")
	}

	for i, op := range e.Delta {
		if err := validateJSONPatchOperation(op); err != nil {
			return fmt.Errorf("StateDeltaEvent validation failed: invalid operation at index %d: %w", i, err)
		}
	}

	return nil
}

// validateJSONPatchOperation validates a single JSON patch operation
func validateJSONPatchOperation(op JSONPatchOperation) error {
	if !validJSONPatchOps[op.Op] {
		return fmt.Errorf("op field must be one of: add, remove, replace, move, copy, test, got: %s", op.Op)
	}

	if op.Path != "" && op.Path[0] != '/' {
		return fmt.Errorf("path field must be a JSON pointer, got: %s", op.Path)
	}

	// An explicit JSON null is a valid value, so only a missing value is rejected.
	if (op.Op == "add" || op.Op == "replace" || op.Op == "test") && len(op.Value) == 0 {
		return fmt.Errorf("value field is required for %s operation", op.Op)
	}

	if (op.Op == "move" || op.Op == "copy") && op.From == "" {
		return fmt.Errorf("from field is required for %s operation", op.Op)
	}

	return nil
}

// PatchDocument returns the delta as an RFC 6902 patch document.
func (e *StateDeltaEvent) PatchDocument() ([]byte, error) {
	return json.Marshal(e.Delta)
}

// ToJSON serializes the event to JSON
func (e *StateDeltaEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func (*StateDeltaEvent) sealed() {}
