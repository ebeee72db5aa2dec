package entities

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID        string     `json:"id"`
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

func NewMessage(role, content string) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// HasToolCalls reports whether this message carries a tool-call trace
// that can be pinned into the tool call panel.
func (m *Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}
