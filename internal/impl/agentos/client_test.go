package agentos

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/toolstream/agentdeck/internal/domain/entities"
	"github.com/toolstream/agentdeck/internal/domain/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sseServer(t *testing.T, lines []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/runs", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, true, req["stream"])

		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n", line)
		}
	}))
}

func TestClient_StreamRun(t *testing.T) {
	server := sseServer(t, []string{
		`: keepalive comment`,
		`event: RunStarted`,
		`data: {"event": "RunStarted", "run_id": "run-1"}`,
		``,
		`data: {"event": "RunContent", "content": "Hello"}`,
		``,
		`data: {"event": "ToolCallStarted", "tool": {"tool_call_id": "call-1", "tool_name": "search"}}`,
		``,
		`data: {"event": "ToolCallCompleted", "tool": {"tool_call_id": "call-1", "tool_name": "search", "result": "ok"}}`,
		``,
		`data: not-json`,
		``,
		`data: {"event": "RunCompleted", "content": "Hello"}`,
	})
	defer server.Close()

	client := NewClient(zap.NewNop())

	var got []entities.RunEvent
	err := client.StreamRun(context.Background(), server.URL, "hi", func(event entities.RunEvent) {
		got = append(got, event)
	})

	require.NoError(t, err)
	// The undecodable line is skipped, not fatal.
	require.Len(t, got, 5)
	assert.Equal(t, entities.RunEventStarted, got[0].Event)
	assert.Equal(t, "run-1", got[0].RunID)
	assert.Equal(t, "Hello", got[1].Content)
	require.NotNil(t, got[2].Tool)
	assert.Equal(t, "call-1", got[2].Tool.ToolCallID)
	require.NotNil(t, got[3].Tool)
	assert.Equal(t, "ok", got[3].Tool.Result)
	assert.Equal(t, entities.RunEventCompleted, got[4].Event)
}

func TestClient_StreamRunBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "agent not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(zap.NewNop())
	err := client.StreamRun(context.Background(), server.URL, "hi", func(entities.RunEvent) {
		t.Fatal("no events expected")
	})

	assert.IsType(t, &errs.InternalError{}, err)
}

func TestClient_StreamRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := NewClient(zap.NewNop())
	err := client.StreamRun(ctx, server.URL, "hi", func(entities.RunEvent) {})

	assert.IsType(t, &errs.CanceledError{}, err)
}

func TestDecodeRunEvent(t *testing.T) {
	event, err := DecodeRunEvent([]byte(`{"event": "ToolCallStarted", "tool": {"tool_name": "search", "tool_args": {"q": "weather"}, "created_at": 1700000000}}`))
	require.NoError(t, err)
	assert.Equal(t, entities.RunEventToolCallStarted, event.Event)
	require.NotNil(t, event.Tool)
	assert.Equal(t, "search-1700000000", event.Tool.Key())
	assert.Equal(t, "weather", event.Tool.ToolArgs["q"])

	_, err = DecodeRunEvent([]byte(`{"content": "no event name"}`))
	assert.Error(t, err)

	_, err = DecodeRunEvent([]byte(`{broken`))
	assert.Error(t, err)
}

func TestDecodeRunEvent_Metrics(t *testing.T) {
	event, err := DecodeRunEvent([]byte(`{"event": "ToolCallCompleted", "tool": {"tool_call_id": "c1", "tool_name": "search", "metrics": {"time": 1.5}}}`))
	require.NoError(t, err)
	require.NotNil(t, event.Tool)

	seconds, ok := event.Tool.Metrics.Seconds()
	require.True(t, ok)
	assert.Equal(t, 1.5, seconds)
}
