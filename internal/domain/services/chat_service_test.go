package services

import (
	"context"
	"testing"

	"github.com/toolstream/agentdeck/internal/domain/entities"
	"github.com/toolstream/agentdeck/internal/domain/errs"
	"github.com/toolstream/agentdeck/internal/domain/interfaces"
	"github.com/toolstream/agentdeck/internal/store"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// Fake settings repository for testing
type fakeSettingsRepository struct{}

func (f *fakeSettingsRepository) Load(ctx context.Context) (*entities.Settings, error) {
	return &entities.Settings{}, nil
}

func (f *fakeSettingsRepository) Save(ctx context.Context, settings *entities.Settings) error {
	return nil
}

// Fake agent client that replays a scripted event stream. The observe
// hook lets tests capture store state mid-stream.
type fakeAgentClient struct {
	events  []entities.RunEvent
	err     error
	observe func(i int)
}

func (f *fakeAgentClient) StreamRun(ctx context.Context, endpointURL, message string, handler interfaces.RunEventHandler) error {
	for i, event := range f.events {
		handler(event)
		if f.observe != nil {
			f.observe(i)
		}
	}
	return f.err
}

func newTestService(client *fakeAgentClient) (ChatService, *store.Store) {
	st := store.NewStore(&fakeSettingsRepository{}, zap.NewNop())
	st.SetSelectedEndpoint("http://localhost:7777")
	return NewChatService(client, st, zap.NewNop()), st
}

func startedEvent(id, name string) entities.RunEvent {
	return entities.RunEvent{
		Event: entities.RunEventToolCallStarted,
		Tool:  &entities.ToolCall{ToolCallID: id, ToolName: name},
	}
}

func completedEvent(id, name string, result any) entities.RunEvent {
	return entities.RunEvent{
		Event: entities.RunEventToolCallCompleted,
		Tool:  &entities.ToolCall{ToolCallID: id, ToolName: name, Result: result},
	}
}

func TestChatService_SendMessageValidation(t *testing.T) {
	service, st := newTestService(&fakeAgentClient{})

	err := service.SendMessage(context.Background(), "")
	assert.IsType(t, &errs.ValidationError{}, err)

	st.SetSelectedEndpoint("")
	err = service.SendMessage(context.Background(), "hello")
	assert.IsType(t, &errs.ValidationError{}, err)
}

func TestChatService_SendMessageAppendsTranscript(t *testing.T) {
	client := &fakeAgentClient{events: []entities.RunEvent{
		{Event: entities.RunEventStarted},
		{Event: entities.RunEventContent, Content: "Hello"},
		{Event: entities.RunEventContent, Content: " there"},
		{Event: entities.RunEventCompleted},
	}}
	service, st := newTestService(client)

	err := service.SendMessage(context.Background(), "hi")
	assert.NoError(t, err)

	messages := st.Messages()
	if assert.Len(t, messages, 2) {
		assert.Equal(t, "user", messages[0].Role)
		assert.Equal(t, "hi", messages[0].Content)
		assert.Equal(t, "assistant", messages[1].Role)
		assert.Equal(t, "Hello there", messages[1].Content)
	}
	assert.False(t, st.IsStreaming())
}

func TestChatService_ToolCallLifecycle(t *testing.T) {
	client := &fakeAgentClient{events: []entities.RunEvent{
		startedEvent("call-1", "search"),
		completedEvent("call-1", "search", `{"hits": 3}`),
		{Event: entities.RunEventCompleted, Content: "done"},
	}}
	service, st := newTestService(client)

	client.observe = func(i int) {
		switch i {
		case 0:
			// Started: in the live list and in progress.
			calls := st.StreamingToolCalls()
			if assert.Len(t, calls, 1) {
				assert.Equal(t, entities.ToolCallStatusRunning, calls[0].Status(st.InProgressToolCallIDs()))
			}
			assert.Equal(t, 1, st.RunningCount())
		case 1:
			// Completed: entry replaced wholesale, progress cleared.
			calls := st.StreamingToolCalls()
			if assert.Len(t, calls, 1) {
				assert.Equal(t, `{"hits": 3}`, calls[0].Result)
				assert.Equal(t, entities.ToolCallStatusSuccess, calls[0].Status(st.InProgressToolCallIDs()))
			}
			assert.Equal(t, 0, st.RunningCount())
		}
	}

	err := service.SendMessage(context.Background(), "search something")
	assert.NoError(t, err)

	// The trace ends up on the assistant message for later pinning.
	messages := st.Messages()
	if assert.Len(t, messages, 2) {
		assert.Len(t, messages[1].ToolCalls, 1)
		assert.Equal(t, "done", messages[1].Content)
	}
	assert.Equal(t, 0, st.RunningCount())
	assert.False(t, st.IsStreaming())
}

func TestChatService_SecondToolCallAppends(t *testing.T) {
	client := &fakeAgentClient{events: []entities.RunEvent{
		startedEvent("call-1", "search"),
		startedEvent("call-2", "fetch"),
		completedEvent("call-2", "fetch", "ok"),
		completedEvent("call-1", "search", "ok"),
		{Event: entities.RunEventCompleted, Content: "done"},
	}}
	service, st := newTestService(client)

	err := service.SendMessage(context.Background(), "do both")
	assert.NoError(t, err)

	messages := st.Messages()
	if assert.Len(t, messages, 2) && assert.Len(t, messages[1].ToolCalls, 2) {
		// Order of first appearance is preserved across completions.
		assert.Equal(t, "call-1", messages[1].ToolCalls[0].ToolCallID)
		assert.Equal(t, "call-2", messages[1].ToolCalls[1].ToolCallID)
	}
}

func TestChatService_RunErrorFillsAssistantMessage(t *testing.T) {
	client := &fakeAgentClient{err: errs.InternalErrorf("upstream gone")}
	service, st := newTestService(client)

	err := service.SendMessage(context.Background(), "hi")
	assert.Error(t, err)

	messages := st.Messages()
	if assert.Len(t, messages, 2) {
		assert.Contains(t, messages[1].Content, "The run failed")
	}
	assert.False(t, st.IsStreaming())
	assert.Equal(t, 0, st.RunningCount())
}

func TestChatService_CancelledRunMessage(t *testing.T) {
	client := &fakeAgentClient{err: errs.CanceledErrorf("context canceled")}
	service, st := newTestService(client)

	err := service.SendMessage(context.Background(), "hi")
	assert.Error(t, err)

	messages := st.Messages()
	if assert.Len(t, messages, 2) {
		assert.Equal(t, "Request cancelled.", messages[1].Content)
	}
}

func TestChatService_PinToolCalls(t *testing.T) {
	service, st := newTestService(&fakeAgentClient{})

	message := entities.NewMessage("assistant", "done")
	message.ToolCalls = []entities.ToolCall{{ToolCallID: "call-1", ToolName: "search", Result: "ok"}}

	service.PinToolCalls(message)

	assert.True(t, st.ToolCallPanelOpen())
	if calls := st.EffectiveToolCalls(); assert.Len(t, calls, 1) {
		assert.Equal(t, "call-1", calls[0].ToolCallID)
	}

	// Pinning nil is a no-op.
	service.PinToolCalls(nil)
	assert.Len(t, st.EffectiveToolCalls(), 1)
}

func TestChatService_NewTurnClearsLiveList(t *testing.T) {
	client := &fakeAgentClient{events: []entities.RunEvent{
		{Event: entities.RunEventCompleted, Content: "no tools this time"},
	}}
	service, st := newTestService(client)

	st.SetStreamingToolCalls([]entities.ToolCall{{ToolCallID: "stale"}})
	st.SetInProgressToolCallIDs(map[string]struct{}{"stale": {}})

	err := service.SendMessage(context.Background(), "hi")
	assert.NoError(t, err)

	assert.Empty(t, st.StreamingToolCalls())
	assert.Equal(t, 0, st.RunningCount())
}
