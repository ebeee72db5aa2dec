package agentos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/toolstream/agentdeck/internal/domain/entities"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWSClient_StreamRun(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/runs/ws", r.URL.Path)

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var req map[string]any
		require.NoError(t, json.Unmarshal(data, &req))
		assert.Equal(t, "hi", req["message"])

		frames := []string{
			`{"event": "RunStarted"}`,
			`{"event": "ToolCallStarted", "tool": {"tool_call_id": "call-1", "tool_name": "search"}}`,
			`{"event": "RunCompleted", "content": "done"}`,
		}
		for _, frame := range frames {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
		}
	}))
	defer server.Close()

	client := NewWSClient(zap.NewNop())

	var got []entities.RunEvent
	err := client.StreamRun(context.Background(), server.URL, "hi", func(event entities.RunEvent) {
		got = append(got, event)
	})

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, entities.RunEventStarted, got[0].Event)
	require.NotNil(t, got[1].Tool)
	assert.Equal(t, "call-1", got[1].Tool.ToolCallID)
	assert.Equal(t, "done", got[2].Content)
}

func TestWSURL(t *testing.T) {
	if got := wsURL("http://localhost:7777/"); got != "ws://localhost:7777" {
		t.Errorf("Expected ws scheme, got %s", got)
	}
	if got := wsURL("https://agents.example.com"); got != "wss://agents.example.com" {
		t.Errorf("Expected wss scheme, got %s", got)
	}
}

func TestWSClient_DialFailure(t *testing.T) {
	client := NewWSClient(zap.NewNop())
	err := client.StreamRun(context.Background(), "http://127.0.0.1:1", "hi", func(entities.RunEvent) {})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "dialing"))
}
