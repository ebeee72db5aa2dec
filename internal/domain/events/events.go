package events

import (
	"github.com/kelindar/event"
	"github.com/toolstream/agentdeck/internal/domain/entities"
)

// Event types
const (
	ToolCallsEventType   uint32 = 1
	StreamStateEventType uint32 = 2
	TranscriptEventType  uint32 = 3
)

// ToolCallsEventData announces that the live tool-call list changed.
// Carries the latest snapshot; subscribers re-read the store for the
// full picture (in-progress set, streaming flag).
type ToolCallsEventData struct {
	Calls []entities.ToolCall
}

// StreamStateEventData marks the start or end of a streamed response.
type StreamStateEventData struct {
	Streaming bool
}

// TranscriptEventData announces a transcript change.
type TranscriptEventData struct {
	Messages []*entities.Message
}

// Type implements the Event interface
func (t ToolCallsEventData) Type() uint32 {
	return ToolCallsEventType
}

// Type implements the Event interface
func (s StreamStateEventData) Type() uint32 {
	return StreamStateEventType
}

// Type implements the Event interface
func (t TranscriptEventData) Type() uint32 {
	return TranscriptEventType
}

// PublishToolCallsEvent publishes a tool-call list snapshot
func PublishToolCallsEvent(calls []entities.ToolCall) {
	event.Emit(ToolCallsEventData{Calls: calls})
}

// SubscribeToToolCallsEvents subscribes to tool-call list snapshots
func SubscribeToToolCallsEvents(handler func(data ToolCallsEventData)) func() {
	return event.On(handler)
}

// PublishStreamStateEvent publishes a stream start/end transition
func PublishStreamStateEvent(streaming bool) {
	event.Emit(StreamStateEventData{Streaming: streaming})
}

// SubscribeToStreamStateEvents subscribes to stream transitions
func SubscribeToStreamStateEvents(handler func(data StreamStateEventData)) func() {
	return event.On(handler)
}

// PublishTranscriptEvent publishes a transcript change
func PublishTranscriptEvent(messages []*entities.Message) {
	event.Emit(TranscriptEventData{Messages: messages})
}

// SubscribeToTranscriptEvents subscribes to transcript changes
func SubscribeToTranscriptEvents(handler func(data TranscriptEventData)) func() {
	return event.On(handler)
}
