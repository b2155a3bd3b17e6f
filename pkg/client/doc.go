// Package client provides a conversation client for AG-UI agent servers.
//
// A Client keeps one WebSocket connection to an agent endpoint, rebuilds the
// conversation from the streamed events and publishes snapshots of it. The
// connection is re-established after a fixed delay whenever it is lost, and
// the conversation history survives reconnects.
//
// Example usage:
//
//	import "github.com/ag-ui/chat-client/pkg/client"
//
//	c, err := client.New(client.DefaultConfig("ws://localhost:8000/ws/chat"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer c.Close()
//
//	if err := c.Connect(); err != nil {
//		log.Fatal(err)
//	}
//
//	updates, cancel := c.Subscribe()
//	defer cancel()
//
//	for state := range updates {
//		if state.Status.Connected && len(state.Messages) == 0 {
//			_ = c.Submit("Hello, agent!")
//		}
//		if last, ok := state.LastMessage(); ok {
//			fmt.Println(last.Role, last.Content)
//		}
//	}
package client
