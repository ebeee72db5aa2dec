package services

import (
	"context"
	"sync"

	"github.com/toolstream/agentdeck/internal/domain/entities"
	"github.com/toolstream/agentdeck/internal/domain/errs"
	"github.com/toolstream/agentdeck/internal/domain/events"
	"github.com/toolstream/agentdeck/internal/domain/interfaces"
	"github.com/toolstream/agentdeck/internal/store"

	"go.uber.org/zap"
)

type ChatService interface {
	SendMessage(ctx context.Context, content string) error
	PinToolCalls(message *entities.Message)
	CancelRun()
}

// chatService owns a streamed turn: it appends the user message, starts
// the run, and applies each upstream event to the store. Tool-call
// updates replace entries (and the streaming list) wholesale; only the
// in-progress set is touched incrementally.
type chatService struct {
	client interfaces.AgentClient
	store  *store.Store
	logger *zap.Logger

	mu        sync.Mutex
	cancel    context.CancelFunc
	turnCalls []entities.ToolCall
}

func NewChatService(client interfaces.AgentClient, st *store.Store, logger *zap.Logger) ChatService {
	return &chatService{
		client: client,
		store:  st,
		logger: logger,
	}
}

// SendMessage runs one turn against the selected endpoint and blocks
// until the event stream ends. Callers run it off the render loop.
func (s *chatService) SendMessage(ctx context.Context, content string) error {
	if content == "" {
		return errs.ValidationErrorf("message cannot be empty")
	}
	endpoint := s.store.SelectedEndpoint()
	if endpoint == "" {
		return errs.ValidationErrorf("no endpoint selected")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		cancel()
		return errs.ValidationErrorf("a response is already streaming")
	}
	s.cancel = cancel
	s.turnCalls = nil
	s.mu.Unlock()

	s.store.UpdateMessages(func(messages []*entities.Message) []*entities.Message {
		return append(messages, entities.NewMessage("user", content), entities.NewMessage("assistant", ""))
	})
	s.publishTranscript()

	// New turn: the live list starts empty and the panel switches to it
	// as soon as the first tool call arrives.
	s.store.SetStreamingToolCalls(nil)
	s.store.SetInProgressToolCallIDs(map[string]struct{}{})
	s.store.SetIsStreaming(true)
	events.PublishStreamStateEvent(true)
	events.PublishToolCallsEvent(nil)

	err := s.client.StreamRun(runCtx, endpoint, content, s.handleRunEvent)

	s.mu.Lock()
	s.cancel = nil
	turnCalls := make([]entities.ToolCall, len(s.turnCalls))
	copy(turnCalls, s.turnCalls)
	s.mu.Unlock()

	// Attach the turn's trace to the assistant message so it can be
	// pinned later, then end the streaming turn.
	s.store.UpdateMessages(func(messages []*entities.Message) []*entities.Message {
		if i := lastAssistantIndex(messages); i >= 0 {
			updated := *messages[i]
			updated.ToolCalls = turnCalls
			if err != nil && updated.Content == "" {
				updated.Content = runErrorText(err)
			}
			messages[i] = &updated
		}
		return messages
	})

	s.store.SetIsStreaming(false)
	s.store.UpdateInProgressToolCallIDs(func(ids map[string]struct{}) map[string]struct{} {
		return map[string]struct{}{}
	})
	events.PublishStreamStateEvent(false)
	s.publishTranscript()

	if err != nil {
		s.logger.Warn("Run ended with error", zap.Error(err))
	}
	return err
}

// PinToolCalls replaces the pinned list with a past message's trace and
// opens the panel.
func (s *chatService) PinToolCalls(message *entities.Message) {
	if message == nil {
		return
	}
	s.store.SetSelectedToolCalls(message.ToolCalls)
	s.store.SetToolCallPanelOpen(true)
	events.PublishToolCallsEvent(message.ToolCalls)
}

// CancelRun aborts the in-flight run, if any. The stream teardown in
// SendMessage handles the state transitions.
func (s *chatService) CancelRun() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (s *chatService) handleRunEvent(event entities.RunEvent) {
	switch event.Event {
	case entities.RunEventStarted:
		// isStreaming is already set before the run begins.

	case entities.RunEventContent:
		s.appendAssistantContent(event.Content)

	case entities.RunEventToolCallStarted:
		if event.Tool == nil {
			return
		}
		calls := s.upsertTurnCall(*event.Tool)
		s.store.SetStreamingToolCalls(calls)
		key := event.Tool.Key()
		s.store.UpdateInProgressToolCallIDs(func(ids map[string]struct{}) map[string]struct{} {
			ids[key] = struct{}{}
			return ids
		})
		events.PublishToolCallsEvent(calls)

	case entities.RunEventToolCallCompleted:
		if event.Tool == nil {
			return
		}
		calls := s.upsertTurnCall(*event.Tool)
		s.store.SetStreamingToolCalls(calls)
		key := event.Tool.Key()
		s.store.UpdateInProgressToolCallIDs(func(ids map[string]struct{}) map[string]struct{} {
			delete(ids, key)
			return ids
		})
		events.PublishToolCallsEvent(calls)

	case entities.RunEventError:
		if event.Content != "" {
			s.setAssistantContent(event.Content)
		}

	case entities.RunEventCompleted:
		if event.Content != "" {
			s.setAssistantContent(event.Content)
		}

	default:
		s.logger.Debug("Ignoring unknown run event", zap.String("event", event.Event))
	}
}

// upsertTurnCall replaces the turn entry with the same key, or appends.
// Entries are never mutated field by field; each update is a full
// replacement of the entry.
func (s *chatService) upsertTurnCall(call entities.ToolCall) []entities.ToolCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	for i, existing := range s.turnCalls {
		if existing.Key() == call.Key() {
			s.turnCalls[i] = call
			replaced = true
			break
		}
	}
	if !replaced {
		s.turnCalls = append(s.turnCalls, call)
	}

	calls := make([]entities.ToolCall, len(s.turnCalls))
	copy(calls, s.turnCalls)
	return calls
}

func (s *chatService) appendAssistantContent(delta string) {
	s.store.UpdateMessages(func(messages []*entities.Message) []*entities.Message {
		if i := lastAssistantIndex(messages); i >= 0 {
			updated := *messages[i]
			updated.Content += delta
			messages[i] = &updated
		}
		return messages
	})
	s.publishTranscript()
}

func (s *chatService) setAssistantContent(content string) {
	s.store.UpdateMessages(func(messages []*entities.Message) []*entities.Message {
		if i := lastAssistantIndex(messages); i >= 0 {
			updated := *messages[i]
			updated.Content = content
			messages[i] = &updated
		}
		return messages
	})
	s.publishTranscript()
}

func (s *chatService) publishTranscript() {
	events.PublishTranscriptEvent(s.store.Messages())
}

func lastAssistantIndex(messages []*entities.Message) int {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "assistant" {
			return i
		}
	}
	return -1
}

func runErrorText(err error) string {
	if _, ok := err.(*errs.CanceledError); ok {
		return "Request cancelled."
	}
	return "The run failed: " + err.Error()
}
