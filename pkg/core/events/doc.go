// Package events provides the AG-UI event types consumed by the chat client.
//
// An agent streams one JSON object per frame. The "type" field selects the
// event:
//
// Run Lifecycle Events:
//   - RUN_STARTED: Agent execution initiation
//   - RUN_FINISHED: Successful agent execution completion
//   - RUN_ERROR: Agent execution error termination
//   - STEP_STARTED: Individual step initiation
//   - STEP_FINISHED: Individual step completion
//
// Message Events:
//   - TEXT_MESSAGE_START: Text message stream initiation
//   - TEXT_MESSAGE_CONTENT: Streaming text message content
//   - TEXT_MESSAGE_END: Text message stream completion
//
// Tool Events:
//   - TOOL_CALL_START: Tool invocation initiation
//   - TOOL_CALL_RESULT: Tool execution output
//
// State Events:
//   - STATE_SNAPSHOT: Complete agent state snapshot
//   - STATE_DELTA: Incremental state changes using JSON Patch (RFC 6902)
//
// Field names may be camelCase or snake_case. Event is a closed set: only the
// types in this package implement it.
//
// # Basic Usage
//
//	import "github.com/ag-ui/chat-client/pkg/core/events"
//
//	event, err := events.Decode(frame)
//	if err != nil {
//		var decodeErr *core.DecodeError
//		if errors.As(err, &decodeErr) {
//			log.Printf("dropping %s frame: %v", decodeErr.EventType, err)
//		}
//		return
//	}
//
//	switch e := event.(type) {
//	case *events.TextMessageContentEvent:
//		fmt.Print(e.Delta)
//	case *events.RunFinishedEvent:
//		fmt.Println()
//	}
//
// The only outbound frame is UserInput:
//
//	data, err := events.NewUserInput("Hello, agent!").ToJSON()
package events
