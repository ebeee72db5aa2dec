package entities

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ToolCallStatus is the derived display status of a tool call.
type ToolCallStatus string

const (
	ToolCallStatusNone    ToolCallStatus = ""
	ToolCallStatusError   ToolCallStatus = "error"
	ToolCallStatusRunning ToolCallStatus = "running"
	ToolCallStatusSuccess ToolCallStatus = "success"
)

// ToolCallMetrics carries timing info reported by the backend. Older
// backends send "time" instead of "duration"; both are seconds.
type ToolCallMetrics struct {
	Duration *float64 `json:"duration,omitempty"`
	Time     *float64 `json:"time,omitempty"`
}

// Seconds returns the reported duration, preferring the duration field
// over the legacy time field.
func (m *ToolCallMetrics) Seconds() (float64, bool) {
	if m == nil {
		return 0, false
	}
	if m.Duration != nil {
		return *m.Duration, true
	}
	if m.Time != nil {
		return *m.Time, true
	}
	return 0, false
}

// ToolCall represents one invocation of an external tool by the agent.
// Fields mirror the backend event payload; Result takes precedence over
// the legacy Content field when both are present.
type ToolCall struct {
	ToolCallID    string           `json:"tool_call_id,omitempty"`
	ToolName      string           `json:"tool_name"`
	ToolArgs      map[string]any   `json:"tool_args,omitempty"`
	Result        any              `json:"result,omitempty"`
	Content       any              `json:"content,omitempty"`
	ToolCallError bool             `json:"tool_call_error,omitempty"`
	Metrics       *ToolCallMetrics `json:"metrics,omitempty"`
	CreatedAt     int64            `json:"created_at,omitempty"`
}

// Key returns the identity used for list keys and in-progress membership.
// When the backend has not assigned a tool_call_id yet, identity falls
// back to name plus creation timestamp. Two calls with the same name
// started within the same timestamp resolution collide; callers must
// tolerate that until the backend assigns a real id.
func (t ToolCall) Key() string {
	if t.ToolCallID != "" {
		return t.ToolCallID
	}
	return fmt.Sprintf("%s-%d", t.ToolName, t.CreatedAt)
}

// DisplayName returns the uppercased tool name for headers and badges.
func (t ToolCall) DisplayName() string {
	return strings.ToUpper(t.ToolName)
}

// HasResponse reports whether a result or legacy content payload arrived.
func (t ToolCall) HasResponse() bool {
	return t.Result != nil || t.Content != nil
}

// Response returns the response payload, preferring result over content.
func (t ToolCall) Response() any {
	if t.Result != nil {
		return t.Result
	}
	return t.Content
}

// Status derives the display status. Precedence: error, then running,
// then success; a call with none of those renders without a badge.
func (t ToolCall) Status(inProgress map[string]struct{}) ToolCallStatus {
	if t.ToolCallError {
		return ToolCallStatusError
	}
	if _, ok := inProgress[t.Key()]; ok {
		return ToolCallStatusRunning
	}
	if t.HasResponse() {
		return ToolCallStatusSuccess
	}
	return ToolCallStatusNone
}

// FormatPayload is the single place payload shape is inspected. Strings
// are parsed as JSON and re-indented when possible and shown raw
// otherwise; structured values are marshaled directly.
func FormatPayload(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		var parsed any
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			return s
		}
		out, err := json.MarshalIndent(parsed, "", "  ")
		if err != nil {
			return s
		}
		return string(out)
	default:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(out)
	}
}

// FormatDuration renders a duration in seconds as both "1.500s" and
// "1500ms" style strings.
func FormatDuration(seconds float64) (string, string) {
	return fmt.Sprintf("%.3fs", seconds), fmt.Sprintf("%.0fms", seconds*1000)
}
