package client

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ag-ui/chat-client/internal/testutil"
	"github.com/ag-ui/chat-client/pkg/conversation"
	"github.com/ag-ui/chat-client/pkg/core"
)

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("id-%d", n.Add(1))
	}
}

func newTestClient(t *testing.T, opts ...Option) (*Client, *testutil.Dialer) {
	t.Helper()

	dialer := testutil.NewDialer()
	opts = append([]Option{
		WithDialer(dialer),
		WithLogger(quietLogger()),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(sequentialIDs()),
	}, opts...)

	c, err := New(testConfig(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, dialer
}

func connectedClient(t *testing.T, opts ...Option) (*Client, *testutil.Dialer, *testutil.Conn) {
	t.Helper()

	c, dialer := newTestClient(t, opts...)
	require.NoError(t, c.Connect())

	conn, ok := dialer.WaitConn(waitFor)
	require.True(t, ok, "no connection was dialed")
	require.Eventually(t, func() bool { return c.Status().Connected }, waitFor, tick)

	return c, dialer, conn
}

func TestClient_StreamedReply(t *testing.T) {
	c, _, conn := connectedClient(t)

	conn.Push(`{"type":"RUN_STARTED","threadId":"th","runId":"r1"}`)
	conn.Push(`{"type":"TEXT_MESSAGE_START","messageId":"m1","role":"assistant"}`)
	conn.Push(`{"type":"TEXT_MESSAGE_CONTENT","messageId":"m1","delta":"Hel"}`)
	conn.Push(`{"type":"TEXT_MESSAGE_CONTENT","messageId":"m1","delta":"lo"}`)
	conn.Push(`{"type":"TEXT_MESSAGE_END","messageId":"m1"}`)
	conn.Push(`{"type":"RUN_FINISHED","threadId":"th","runId":"r1"}`)

	require.Eventually(t, func() bool {
		s := c.Snapshot()
		return len(s.Messages) == 1 && !s.Messages[0].IsStreaming && !s.IsProcessing
	}, waitFor, tick)

	s := c.Snapshot()
	msg := s.Messages[0]
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, conversation.RoleAssistant, msg.Role)
	assert.Equal(t, "Hello", msg.Content)
	assert.Empty(t, s.RunID)
	assert.Equal(t, "th", s.ThreadID)
}

func TestClient_SubmitEchoesAndWrites(t *testing.T) {
	c, _, conn := connectedClient(t)

	require.NoError(t, c.Submit("hi"))

	s := c.Snapshot()
	require.Len(t, s.Messages, 1)
	assert.Equal(t, conversation.Message{
		ID:        "id-1",
		Role:      conversation.RoleUser,
		Content:   "hi",
		Timestamp: fixedNow,
	}, s.Messages[0])

	require.Eventually(t, func() bool { return len(conn.Writes()) == 1 }, waitFor, tick)
	assert.JSONEq(t, `{"message":"hi"}`, conn.Writes()[0])
}

func TestClient_SubmitRejections(t *testing.T) {
	t.Run("blank input", func(t *testing.T) {
		c, _, conn := connectedClient(t)

		for _, text := range []string{"", "   ", "\n\t"} {
			assert.ErrorIs(t, c.Submit(text), core.ErrEmptyInput)
		}

		assert.Empty(t, c.Snapshot().Messages)
		assert.False(t, c.Snapshot().IsProcessing)
		assert.Never(t, func() bool { return len(conn.Writes()) > 0 }, 50*time.Millisecond, tick)
	})

	t.Run("not connected", func(t *testing.T) {
		c, dialer := newTestClient(t)

		assert.ErrorIs(t, c.Submit("hi"), core.ErrNotConnected)
		assert.Empty(t, c.Snapshot().Messages)
		assert.Zero(t, dialer.Attempts())
	})

	t.Run("disconnected after losing the connection", func(t *testing.T) {
		c, dialer, conn := connectedClient(t)
		for i := 0; i < 10; i++ {
			dialer.FailNext(errors.New("refused"))
		}

		conn.Hangup(nil)
		require.Eventually(t, func() bool { return !c.Status().Connected }, waitFor, tick)

		assert.ErrorIs(t, c.Submit("hi"), core.ErrNotConnected)
		assert.Empty(t, c.Snapshot().Messages)
		assert.Empty(t, conn.Writes())
	})

	t.Run("run in progress", func(t *testing.T) {
		c, _, conn := connectedClient(t)
		conn.Push(`{"type":"RUN_STARTED","runId":"r1"}`)
		require.Eventually(t, func() bool { return c.Snapshot().IsProcessing }, waitFor, tick)

		assert.ErrorIs(t, c.Submit("hi"), core.ErrRunInProgress)
		assert.Empty(t, c.Snapshot().Messages)
		assert.Never(t, func() bool { return len(conn.Writes()) > 0 }, 50*time.Millisecond, tick)
	})

	t.Run("closed", func(t *testing.T) {
		c, _, _ := connectedClient(t)
		require.NoError(t, c.Close())

		assert.ErrorIs(t, c.Submit("hi"), core.ErrClosed)
	})
}

func TestClient_ToolCall(t *testing.T) {
	c, _, conn := connectedClient(t)

	conn.Push(`{"type":"TOOL_CALL_START","toolCallId":"t1","toolCallName":"search"}`)
	conn.Push(`{"type":"TOOL_CALL_RESULT","toolCallId":"t1","content":"3 results"}`)

	require.Eventually(t, func() bool { return len(c.Snapshot().Messages) == 2 }, waitFor, tick)

	msgs := c.Snapshot().Messages
	assert.Equal(t, conversation.RoleTool, msgs[0].Role)
	assert.Equal(t, "t1", msgs[0].ID)
	assert.Equal(t, conversation.RoleTool, msgs[1].Role)
	assert.Equal(t, "t1-result", msgs[1].ID)
	assert.Equal(t, "3 results", msgs[1].Content)
	assert.Equal(t, "search", msgs[1].ToolName)
}

func TestClient_RunError(t *testing.T) {
	c, _, conn := connectedClient(t)

	conn.Push(`{"type":"RUN_STARTED","runId":"r1"}`)
	conn.Push(`{"type":"RUN_ERROR","message":"model overloaded","runId":"r1"}`)

	require.Eventually(t, func() bool { return len(c.Snapshot().Messages) == 1 }, waitFor, tick)

	s := c.Snapshot()
	assert.False(t, s.IsProcessing)
	assert.Equal(t, conversation.RoleAssistant, s.Messages[0].Role)
	assert.Equal(t, "Error: model overloaded", s.Messages[0].Content)
	assert.Equal(t, "id-1", s.Messages[0].ID)
}

func TestClient_HistorySurvivesReconnect(t *testing.T) {
	c, dialer, conn := connectedClient(t)

	require.NoError(t, c.Submit("first"))
	conn.Hangup(errors.New("server restart"))

	require.Eventually(t, func() bool {
		s := c.Status()
		return !s.Connected && strings.Contains(s.LastError, "server restart")
	}, waitFor, tick)

	second, ok := dialer.WaitConn(waitFor)
	require.True(t, ok)
	require.Eventually(t, func() bool { return c.Status().Connected }, waitFor, tick)

	assert.Empty(t, c.Status().LastError)
	require.Len(t, c.Snapshot().Messages, 1)

	require.NoError(t, c.Submit("second"))
	require.Eventually(t, func() bool { return len(second.Writes()) == 1 }, waitFor, tick)
	assert.JSONEq(t, `{"message":"second"}`, second.Writes()[0])
	assert.Len(t, c.Snapshot().Messages, 2)
}

func TestClient_ReconnectClosesOpenRun(t *testing.T) {
	c, dialer, conn := connectedClient(t)

	conn.Push(`{"type":"RUN_STARTED","threadId":"th","runId":"r1"}`)
	conn.Push(`{"type":"TEXT_MESSAGE_START","messageId":"m1"}`)
	conn.Push(`{"type":"TEXT_MESSAGE_CONTENT","messageId":"m1","delta":"par"}`)
	require.Eventually(t, func() bool {
		s := c.Snapshot()
		return s.IsProcessing && len(s.Messages) == 1 && s.Messages[0].Content == "par"
	}, waitFor, tick)

	conn.Hangup(errors.New("server restart"))
	require.Eventually(t, func() bool { return !c.Status().Connected }, waitFor, tick)

	s := c.Snapshot()
	assert.False(t, s.IsProcessing)
	assert.Empty(t, s.RunID)
	assert.Empty(t, s.CurrentStep)

	second, ok := dialer.WaitConn(waitFor)
	require.True(t, ok, "no reconnect happened")
	require.Eventually(t, func() bool { return c.Status().Connected }, waitFor, tick)

	s = c.Snapshot()
	require.Len(t, s.Messages, 1)
	assert.Equal(t, "m1", s.Messages[0].ID)
	assert.Equal(t, "par", s.Messages[0].Content)
	assert.False(t, s.Messages[0].IsStreaming)
	c.mu.Lock()
	streaming := c.reducer.Streaming()
	c.mu.Unlock()
	assert.Zero(t, streaming)

	require.NoError(t, c.Submit("are you there?"))
	require.Eventually(t, func() bool { return len(second.Writes()) == 1 }, waitFor, tick)
	assert.JSONEq(t, `{"message":"are you there?"}`, second.Writes()[0])
	assert.Len(t, c.Snapshot().Messages, 2)
}

func TestClient_SubscribeDeliversLatestSnapshot(t *testing.T) {
	c, _, conn := connectedClient(t)

	updates, cancel := c.Subscribe()

	initial := <-updates
	assert.True(t, initial.Status.Connected)

	conn.Push(`{"type":"TEXT_MESSAGE_START","messageId":"m1"}`)
	conn.Push(`{"type":"TEXT_MESSAGE_CONTENT","messageId":"m1","delta":"a"}`)
	conn.Push(`{"type":"TEXT_MESSAGE_CONTENT","messageId":"m1","delta":"b"}`)
	conn.Push(`{"type":"TEXT_MESSAGE_END","messageId":"m1"}`)

	require.Eventually(t, func() bool {
		s := c.Snapshot()
		return len(s.Messages) == 1 && !s.Messages[0].IsStreaming
	}, waitFor, tick)

	select {
	case latest := <-updates:
		assert.Equal(t, c.Snapshot(), latest)
	case <-time.After(waitFor):
		t.Fatal("no snapshot was published")
	}

	cancel()
	cancel()
	_, open := <-updates
	assert.False(t, open)
}

func TestClient_SnapshotIsIsolated(t *testing.T) {
	c, _, _ := connectedClient(t)
	require.NoError(t, c.Submit("hi"))

	s := c.Snapshot()
	s.Messages[0].Content = "changed"

	assert.Equal(t, "hi", c.Snapshot().Messages[0].Content)
}

func TestClient_Reset(t *testing.T) {
	c, _, conn := connectedClient(t)

	conn.Push(`{"type":"RUN_STARTED","runId":"r1"}`)
	conn.Push(`{"type":"TEXT_MESSAGE_START","messageId":"m1"}`)
	conn.Push(`{"type":"TEXT_MESSAGE_CONTENT","messageId":"m1","delta":"partial"}`)
	conn.Push(`{"type":"STATE_SNAPSHOT","snapshot":{"step":1}}`)
	require.Eventually(t, func() bool { return len(c.Snapshot().AgentState) > 0 }, waitFor, tick)

	c.Reset()

	s := c.Snapshot()
	assert.Empty(t, s.Messages)
	assert.False(t, s.IsProcessing)
	assert.Empty(t, s.AgentState)
	assert.True(t, s.Status.Connected)

	// The discarded stream no longer accepts content.
	conn.Push(`{"type":"TEXT_MESSAGE_CONTENT","messageId":"m1","delta":" more"}`)
	conn.Push(`{"type":"TOOL_CALL_START","toolCallId":"t1","toolCallName":"search"}`)
	require.Eventually(t, func() bool { return len(c.Snapshot().Messages) == 1 }, waitFor, tick)
	assert.Equal(t, "t1", c.Snapshot().Messages[0].ID)
}

func TestClient_CloseClosesSubscribers(t *testing.T) {
	c, _, conn := connectedClient(t)
	updates, _ := c.Subscribe()

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.True(t, conn.Closed())
	for range updates {
	}

	late, _ := c.Subscribe()
	_, open := <-late
	assert.False(t, open)
}

func TestClient_SendErrorHandler(t *testing.T) {
	reported := make(chan error, 1)
	c, _, conn := connectedClient(t, WithSendErrorHandler(func(err error) {
		reported <- err
	}))
	conn.FailWrites(errors.New("broken pipe"))

	require.NoError(t, c.Submit("hi"))

	select {
	case err := <-reported:
		assert.Contains(t, err.Error(), "broken pipe")
	case <-time.After(waitFor):
		t.Fatal("send failure was not reported")
	}

	// The echo stays.
	require.Len(t, c.Snapshot().Messages, 1)
	assert.Equal(t, "hi", c.Snapshot().Messages[0].Content)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{Endpoint: "http://localhost:8000"})

	var configErr *core.ConfigError
	require.True(t, errors.As(err, &configErr))
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

// agentServer answers every user message with a short streamed run, using the
// snake_case field names a Python agent emits.
func agentServer(t *testing.T) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()

		for run := 1; ; run++ {
			var input struct {
				Message string `json:"message"`
			}
			if err := ws.ReadJSON(&input); err != nil {
				return
			}

			runID := fmt.Sprintf("run-%d", run)
			msgID := fmt.Sprintf("msg-%d", run)
			frames := []string{
				fmt.Sprintf(`{"type":"RUN_STARTED","thread_id":"thread-1","run_id":%q}`, runID),
				fmt.Sprintf(`{"type":"TEXT_MESSAGE_START","message_id":%q,"role":"assistant"}`, msgID),
				fmt.Sprintf(`{"type":"TEXT_MESSAGE_CONTENT","message_id":%q,"delta":"echo: "}`, msgID),
				fmt.Sprintf(`{"type":"TEXT_MESSAGE_CONTENT","message_id":%q,"delta":%q}`, msgID, input.Message),
				fmt.Sprintf(`{"type":"TEXT_MESSAGE_END","message_id":%q}`, msgID),
				fmt.Sprintf(`{"type":"RUN_FINISHED","thread_id":"thread-1","run_id":%q}`, runID),
			}
			for _, frame := range frames {
				if err := ws.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
					return
				}
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_WebSocketRoundTrip(t *testing.T) {
	srv := agentServer(t)

	cfg := DefaultConfig("ws" + strings.TrimPrefix(srv.URL, "http"))
	c, err := New(cfg, WithLogger(quietLogger()))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Connect())
	require.Eventually(t, func() bool { return c.Status().Connected }, waitFor, tick)

	require.NoError(t, c.Submit("ping"))

	require.Eventually(t, func() bool {
		s := c.Snapshot()
		return len(s.Messages) == 2 && !s.IsProcessing && !s.Messages[1].IsStreaming
	}, waitFor, tick)

	s := c.Snapshot()
	assert.Equal(t, conversation.RoleUser, s.Messages[0].Role)
	assert.Equal(t, "ping", s.Messages[0].Content)
	assert.Equal(t, "msg-1", s.Messages[1].ID)
	assert.Equal(t, "echo: ping", s.Messages[1].Content)
	assert.Equal(t, "thread-1", s.ThreadID)
}
