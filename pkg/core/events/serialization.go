package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ag-ui/chat-client/pkg/core"
)

// EventFromJSON parses an event from JSON data.
//
// Field names are accepted in both the canonical camelCase form
// ("messageId") and the snake_case form ("message_id") produced by
// servers that serialize their models without aliases.
func EventFromJSON(data []byte) (Event, error) {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse event: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: event is null", core.ErrMalformedFrame)
	}

	normalized, err := json.Marshal(camelizeKeys(fields))
	if err != nil {
		return nil, fmt.Errorf("failed to normalize event: %w", err)
	}

	var base struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(normalized, &base); err != nil {
		return nil, fmt.Errorf("failed to parse event type: %w", err)
	}

	var event Event
	switch base.Type {
	case EventTypeRunStarted:
		event = &RunStartedEvent{}
	case EventTypeRunFinished:
		event = &RunFinishedEvent{}
	case EventTypeRunError:
		event = &RunErrorEvent{}
	case EventTypeTextMessageStart:
		event = &TextMessageStartEvent{}
	case EventTypeTextMessageContent:
		event = &TextMessageContentEvent{}
	case EventTypeTextMessageEnd:
		event = &TextMessageEndEvent{}
	case EventTypeToolCallStart:
		event = &ToolCallStartEvent{}
	case EventTypeToolCallResult:
		event = &ToolCallResultEvent{}
	case EventTypeStepStarted:
		event = &StepStartedEvent{}
	case EventTypeStepFinished:
		event = &StepFinishedEvent{}
	case EventTypeStateSnapshot:
		event = &StateSnapshotEvent{}
	case EventTypeStateDelta:
		event = &StateDeltaEvent{}
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownEvent, base.Type)
	}

	if err := json.Unmarshal(normalized, event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return event, nil
}

// Decode is the inbound decode boundary. It parses and validates a single
// frame; any failure is reported as a *core.DecodeError and the frame must
// be discarded by the caller.
func Decode(frame []byte) (Event, error) {
	if len(bytes.TrimSpace(frame)) == 0 {
		return nil, &core.DecodeError{Frame: frame, Err: core.ErrMalformedFrame}
	}

	event, err := EventFromJSON(frame)
	if err != nil {
		if !errors.Is(err, core.ErrUnknownEvent) && !errors.Is(err, core.ErrMalformedFrame) {
			err = fmt.Errorf("%w: %v", core.ErrMalformedFrame, err)
		}
		return nil, &core.DecodeError{Frame: frame, Err: err}
	}

	if err := event.Validate(); err != nil {
		return nil, &core.DecodeError{
			EventType: string(event.Type()),
			Frame:     frame,
			Err:       fmt.Errorf("%w: %v", core.ErrEventValidation, err),
		}
	}

	return event, nil
}

// camelizeKeys rewrites snake_case top-level keys to camelCase. When both
// spellings are present the camelCase value wins.
func camelizeKeys(fields map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(fields))
	for key, value := range fields {
		if !strings.Contains(key, "_") {
			out[key] = value
		}
	}
	for key, value := range fields {
		if !strings.Contains(key, "_") {
			continue
		}
		camel := snakeToCamel(key)
		if _, exists := out[camel]; !exists {
			out[camel] = value
		}
	}
	return out
}

func snakeToCamel(key string) string {
	parts := strings.Split(key, "_")
	var b strings.Builder
	b.Grow(len(key))
	b.WriteString(parts[0])
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
