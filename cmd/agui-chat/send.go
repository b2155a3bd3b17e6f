package main

import (
	"context"
	"fmt"
	"io"

	"github.com/ag-ui/chat-client/pkg/conversation"
	"github.com/ag-ui/chat-client/pkg/core"
)

// submitter is the part of *client.Client the send command drives.
type submitter interface {
	Submit(text string) error
}

// awaitReply submits text on the first connected snapshot and returns the
// messages that follow the echo once the agent's run is over.
//
// Snapshots are latest-wins, so the snapshot of an open run may never be
// seen. Messages after the echo on an idle snapshot count as a finished
// reply too.
func awaitReply(ctx context.Context, c submitter, updates <-chan conversation.State, text string) ([]conversation.Message, error) {
	submitted := false
	started := false
	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for reply: %w", ctx.Err())

		case state, ok := <-updates:
			if !ok {
				return nil, core.ErrClosed
			}

			if !submitted {
				if !state.Status.Connected {
					continue
				}
				if err := c.Submit(text); err != nil {
					return nil, err
				}
				submitted = true
				continue
			}

			if state.IsProcessing {
				started = true
				continue
			}
			reply := afterLastUserMessage(state.Messages)
			if started || len(reply) > 0 {
				return reply, nil
			}
		}
	}
}

func afterLastUserMessage(messages []conversation.Message) []conversation.Message {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == conversation.RoleUser {
			return messages[i+1:]
		}
	}
	return nil
}

func printReply(out io.Writer, messages []conversation.Message) {
	for _, msg := range messages {
		if msg.IsStreaming {
			continue
		}
		switch msg.Role {
		case conversation.RoleTool:
			fmt.Fprintf(out, "[%s] %s\n", msg.ToolName, msg.Content)
		default:
			fmt.Fprintln(out, msg.Content)
		}
	}
}
