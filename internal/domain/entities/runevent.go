package entities

// Run event names emitted by the backend per streamed turn.
const (
	RunEventStarted           = "RunStarted"
	RunEventContent           = "RunContent"
	RunEventToolCallStarted   = "ToolCallStarted"
	RunEventToolCallCompleted = "ToolCallCompleted"
	RunEventError             = "RunError"
	RunEventCompleted         = "RunCompleted"
)

// RunEvent is one lifecycle signal from the backend run stream. Content
// is set on content/error events; Tool on tool-call events. Unknown
// event names are passed through and ignored by consumers.
type RunEvent struct {
	Event     string    `json:"event"`
	Content   string    `json:"content,omitempty"`
	Tool      *ToolCall `json:"tool,omitempty"`
	RunID     string    `json:"run_id,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	CreatedAt int64     `json:"created_at,omitempty"`
}
