// Package conversation reconstructs a displayable conversation from the
// AG-UI event stream.
//
// State is a plain value: an ordered, append-only list of messages plus
// run, step, agent-state and connection information. Reducer folds one
// event at a time into a State and owns the StreamingBuffer that
// reassembles streamed text messages from their deltas.
//
//	r := conversation.NewReducer()
//	state := conversation.State{}
//	for _, ev := range received {
//		state = r.Apply(state, ev)
//	}
//
// Events that refer to messages or runs the state does not know about are
// ignored rather than reported; the stream is trusted to be mostly well
// formed and a single stray event must not break the conversation.
package conversation
