// Package transport provides the duplex frame channel used by the AG-UI
// chat client.
//
// The client treats the transport as an opaque connection to a fixed
// endpoint that carries one JSON message per frame. Dialer establishes a
// Conn; Conn reads and writes whole frames. The WebSocket implementation is
// built on gorilla/websocket.
//
// Example usage:
//
//	d := transport.NewWebSocketDialer(transport.WebSocketConfig{
//		HandshakeTimeout: 10 * time.Second,
//	})
//
//	conn, err := d.Dial(ctx, "ws://localhost:8000/ws/chat")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer conn.Close()
//
//	frame, err := conn.Read(ctx)
package transport
