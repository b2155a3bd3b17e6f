package conversation

import (
	"fmt"
	"slices"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ag-ui/chat-client/pkg/core/events"
)

// Reducer folds inbound events into conversation state.
//
// Apply never mutates the state it is given and performs no I/O apart from
// logging anomalies. The only state carried between calls is the streaming
// buffer, so a Reducer must be driven by one goroutine at a time, in event
// arrival order.
type Reducer struct {
	buffer *StreamingBuffer
	logger logrus.FieldLogger
	now    func() time.Time
	newID  func() string
}

// ReducerOption configures a Reducer.
type ReducerOption func(*Reducer)

// WithLogger sets the logger used to report ignored events.
func WithLogger(logger logrus.FieldLogger) ReducerOption {
	return func(r *Reducer) {
		r.logger = logger
	}
}

// WithClock sets the clock used to timestamp messages created by the reducer.
func WithClock(now func() time.Time) ReducerOption {
	return func(r *Reducer) {
		r.now = now
	}
}

// WithIDGenerator sets the generator for ids of messages that have no wire id.
func WithIDGenerator(newID func() string) ReducerOption {
	return func(r *Reducer) {
		r.newID = newID
	}
}

// NewReducer creates a new reducer with an empty streaming buffer.
func NewReducer(opts ...ReducerOption) *Reducer {
	r := &Reducer{
		buffer: NewStreamingBuffer(),
		logger: logrus.StandardLogger(),
		now:    time.Now,
		newID:  uuid.NewString,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Reset drops all streaming buffer entries. Call it whenever the state fed
// to Apply is replaced by one that does not descend from earlier results.
func (r *Reducer) Reset() {
	r.buffer.Reset()
}

// Disconnected returns state with the open run closed and every streaming
// message finalized with the content received so far. A run never outlives
// the connection it was started on.
func (r *Reducer) Disconnected(state State) State {
	if state.IsProcessing {
		r.logger.WithField("run_id", state.RunID).Warn("connection lost during run, closing it")
	}
	state.IsProcessing = false
	state.RunID = ""
	state.CurrentStep = ""

	cloned := false
	for i, msg := range state.Messages {
		if !msg.IsStreaming {
			continue
		}
		if !cloned {
			state.Messages = slices.Clone(state.Messages)
			cloned = true
		}
		state.Messages[i].IsStreaming = false
		r.buffer.Close(msg.ID)
	}
	return state
}

// Streaming returns the number of messages currently being streamed.
func (r *Reducer) Streaming() int {
	return r.buffer.Len()
}

// Apply returns the state that results from applying event to state.
// Events that reference unknown messages or runs leave the state unchanged.
func (r *Reducer) Apply(state State, event events.Event) State {
	switch e := event.(type) {
	case *events.RunStartedEvent:
		return r.runStarted(state, e)
	case *events.RunFinishedEvent:
		return r.runFinished(state, e)
	case *events.RunErrorEvent:
		return r.runError(state, e)
	case *events.TextMessageStartEvent:
		return r.messageStart(state, e)
	case *events.TextMessageContentEvent:
		return r.messageContent(state, e)
	case *events.TextMessageEndEvent:
		return r.messageEnd(state, e)
	case *events.ToolCallStartEvent:
		return r.toolCallStart(state, e)
	case *events.ToolCallResultEvent:
		return r.toolCallResult(state, e)
	case *events.StepStartedEvent:
		state.CurrentStep = e.StepName
		return state
	case *events.StepFinishedEvent:
		if state.CurrentStep == e.StepName {
			state.CurrentStep = ""
		}
		return state
	case *events.StateSnapshotEvent:
		state.AgentState = slices.Clone(e.Snapshot)
		return state
	case *events.StateDeltaEvent:
		return r.stateDelta(state, e)
	default:
		r.logger.WithField("event_type", fmt.Sprintf("%T", event)).Warn("ignoring unsupported event")
		return state
	}
}

func (r *Reducer) runStarted(state State, e *events.RunStartedEvent) State {
	if state.IsProcessing && state.RunID != e.RunID {
		r.logger.WithFields(logrus.Fields{
			"run_id":      e.RunID,
			"open_run_id": state.RunID,
		}).Warn("run started while another run is open, replacing it")
	}

	state.IsProcessing = true
	state.RunID = e.RunID
	state.CurrentStep = ""
	if e.ThreadID != "" {
		state.ThreadID = e.ThreadID
	}
	return state
}

func (r *Reducer) runFinished(state State, e *events.RunFinishedEvent) State {
	if !state.IsProcessing || state.RunID != e.RunID {
		r.logger.WithFields(logrus.Fields{
			"run_id":      e.RunID,
			"open_run_id": state.RunID,
		}).Debug("ignoring finish for a run that is not open")
		return state
	}

	state.IsProcessing = false
	state.RunID = ""
	state.CurrentStep = ""
	return state
}

// runError surfaces the agent's error as an assistant message. The open run
// is closed when the event names it or names no run at all.
func (r *Reducer) runError(state State, e *events.RunErrorEvent) State {
	state = state.Append(Message{
		ID:        r.newID(),
		Role:      RoleAssistant,
		Content:   "Error: " + e.Message,
		Timestamp: r.now(),
	})

	if state.IsProcessing && (e.RunID == "" || e.RunID == state.RunID) {
		state.IsProcessing = false
		state.RunID = ""
		state.CurrentStep = ""
	}
	return state
}

func (r *Reducer) messageStart(state State, e *events.TextMessageStartEvent) State {
	if state.indexOf(e.MessageID) >= 0 {
		r.logger.WithField("message_id", e.MessageID).Warn("ignoring start for a message that already exists")
		return state
	}
	// An entry can only be left over from a state that was discarded.
	r.buffer.Close(e.MessageID)
	r.buffer.Open(e.MessageID)

	return state.Append(Message{
		ID:          e.MessageID,
		Role:        RoleAssistant,
		Timestamp:   r.now(),
		IsStreaming: true,
	})
}

func (r *Reducer) messageContent(state State, e *events.TextMessageContentEvent) State {
	i := state.indexOf(e.MessageID)
	if i < 0 || !state.Messages[i].IsStreaming {
		r.logger.WithField("message_id", e.MessageID).Debug("ignoring content for a message that is not streaming")
		return state
	}

	text, ok := r.buffer.Append(e.MessageID, e.Delta)
	if !ok {
		r.logger.WithField("message_id", e.MessageID).Warn("ignoring content for a message without a buffer entry")
		return state
	}

	state.Messages = slices.Clone(state.Messages)
	state.Messages[i].Content = text
	return state
}

func (r *Reducer) messageEnd(state State, e *events.TextMessageEndEvent) State {
	r.buffer.Close(e.MessageID)

	i := state.indexOf(e.MessageID)
	if i < 0 || !state.Messages[i].IsStreaming {
		r.logger.WithField("message_id", e.MessageID).Debug("ignoring end for a message that is not streaming")
		return state
	}

	state.Messages = slices.Clone(state.Messages)
	state.Messages[i].IsStreaming = false
	return state
}

func (r *Reducer) toolCallStart(state State, e *events.ToolCallStartEvent) State {
	if state.indexOfTool(e.ToolCallID, e.ToolCallID) >= 0 {
		r.logger.WithField("tool_call_id", e.ToolCallID).Warn("ignoring duplicate tool call start")
		return state
	}

	return state.Append(Message{
		ID:         r.unusedID(state, e.ToolCallID),
		Role:       RoleTool,
		Content:    "Calling tool: " + e.ToolCallName,
		Timestamp:  r.now(),
		ToolCallID: e.ToolCallID,
		ToolName:   e.ToolCallName,
	})
}

func (r *Reducer) toolCallResult(state State, e *events.ToolCallResultEvent) State {
	id := ResultMessageID(e.ToolCallID)
	if state.indexOfTool(id, e.ToolCallID) >= 0 {
		r.logger.WithField("tool_call_id", e.ToolCallID).Warn("ignoring duplicate tool call result")
		return state
	}

	return state.Append(Message{
		ID:         r.unusedID(state, id),
		Role:       RoleTool,
		Content:    e.Content,
		Timestamp:  r.now(),
		ToolCallID: e.ToolCallID,
		ToolName:   state.toolName(e.ToolCallID),
	})
}

// unusedID returns id, or a generated id when another message already has it.
func (r *Reducer) unusedID(state State, id string) string {
	if state.indexOf(id) < 0 {
		return id
	}
	generated := r.newID()
	r.logger.WithFields(logrus.Fields{
		"message_id":   id,
		"generated_id": generated,
	}).Debug("message id already taken, using a generated one")
	return generated
}

func (r *Reducer) stateDelta(state State, e *events.StateDeltaEvent) State {
	doc, err := e.PatchDocument()
	if err != nil {
		r.logger.WithError(err).Warn("ignoring state delta that cannot be encoded")
		return state
	}

	patch, err := jsonpatch.DecodePatch(doc)
	if err != nil {
		r.logger.WithError(err).Warn("ignoring malformed state delta")
		return state
	}

	base := state.AgentState
	if len(base) == 0 {
		base = []byte("{}")
	}

	patched, err := patch.Apply(base)
	if err != nil {
		r.logger.WithError(err).Warn("ignoring state delta that does not apply")
		return state
	}

	state.AgentState = patched
	return state
}
