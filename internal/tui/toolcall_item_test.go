package tui

import (
	"strings"
	"testing"

	"github.com/toolstream/agentdeck/internal/domain/entities"
)

func TestToolCallItem_Toggle(t *testing.T) {
	item := NewToolCallItem(entities.ToolCall{ToolCallID: "call-1", ToolName: "search"})

	if item.Expanded() {
		t.Error("Expected new item to start collapsed")
	}
	item.Toggle()
	if !item.Expanded() {
		t.Error("Expected item expanded after toggle")
	}
	item.Toggle()
	if item.Expanded() {
		t.Error("Expected item collapsed after second toggle")
	}
}

func TestToolCallItem_RenderCollapsed(t *testing.T) {
	item := NewToolCallItem(entities.ToolCall{ToolCallID: "call-1", ToolName: "search", Result: "ok"})

	view := item.Render(60, nil, "", false)

	if !strings.Contains(view, "SEARCH") {
		t.Errorf("Expected uppercased name in header, got %q", view)
	}
	if strings.Contains(view, "Response:") {
		t.Error("Collapsed item must not show details")
	}
}

func TestToolCallItem_ResponseTransitions(t *testing.T) {
	call := entities.ToolCall{ToolCallID: "call-1", ToolName: "search"}
	item := NewToolCallItem(call)
	item.Toggle()

	// In progress: executing placeholder, even with a stale payload.
	stale := call
	stale.Result = "stale"
	item.SetCall(stale)
	view := item.Render(60, map[string]struct{}{"call-1": {}}, "", false)
	if !strings.Contains(view, executingPlaceholder) {
		t.Errorf("Expected executing placeholder, got %q", view)
	}
	if strings.Contains(view, "stale") {
		t.Error("Stale payload must be hidden while in progress")
	}

	// Not in progress, no payload: pending placeholder.
	item.SetCall(call)
	view = item.Render(60, nil, "", false)
	if !strings.Contains(view, pendingPlaceholder) {
		t.Errorf("Expected pending placeholder, got %q", view)
	}

	// Payload arrived: formatted response.
	done := call
	done.Result = `{"hits": 3}`
	item.SetCall(done)
	view = item.Render(60, nil, "", false)
	if !strings.Contains(view, "\"hits\": 3") {
		t.Errorf("Expected formatted response, got %q", view)
	}
}

func TestToolCallItem_RenderExpandedDetails(t *testing.T) {
	seconds := 1.5
	call := entities.ToolCall{
		ToolCallID: "call-1",
		ToolName:   "search",
		ToolArgs:   map[string]any{"query": "weather"},
		Result:     "sunny",
		Metrics:    &entities.ToolCallMetrics{Time: &seconds},
	}
	item := NewToolCallItem(call)
	item.Toggle()

	view := item.Render(60, nil, "", false)

	for _, want := range []string{"ID: call-1", "Arguments:", "\"query\": \"weather\"", "Duration: 1.500s (1500ms)", "Response:", "sunny"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected %q in expanded view, got %q", want, view)
		}
	}
}

func TestToolCallItem_RenderOmitsAbsentDetails(t *testing.T) {
	item := NewToolCallItem(entities.ToolCall{ToolName: "search", CreatedAt: 1})
	item.Toggle()

	view := item.Render(60, nil, "", false)

	if strings.Contains(view, "ID:") {
		t.Error("Expected no ID line without a tool_call_id")
	}
	if strings.Contains(view, "Arguments:") {
		t.Error("Expected no arguments line without args")
	}
	if strings.Contains(view, "Duration:") {
		t.Error("Expected no duration line without metrics")
	}
}
