package store

import (
	"context"
	"sync"

	"github.com/toolstream/agentdeck/internal/domain/entities"
	"github.com/toolstream/agentdeck/internal/domain/interfaces"

	"go.uber.org/zap"
)

// Store is the single source of truth for transient chat/streaming UI
// state plus the one durable setting (selected endpoint). Setters are
// total: they never fail and never validate; malformed upstream payloads
// are stored as-is and surface at render time.
//
// List-valued fields are replaced wholesale so a render pass is a pure
// function of the latest snapshot. The in-progress set is the one field
// updated incrementally, through UpdateInProgressToolCallIDs, because
// membership changes are idempotent.
type Store struct {
	mu       sync.RWMutex
	settings interfaces.SettingsRepository
	logger   *zap.Logger

	toolCallPanelOpen     bool
	selectedToolCalls     []entities.ToolCall
	streamingToolCalls    []entities.ToolCall
	inProgressToolCallIDs map[string]struct{}
	isStreaming           bool
	messages              []*entities.Message
	selectedEndpoint      string
	hydrated              bool
}

func NewStore(settings interfaces.SettingsRepository, logger *zap.Logger) *Store {
	return &Store{
		settings:              settings,
		logger:                logger,
		inProgressToolCallIDs: make(map[string]struct{}),
	}
}

// Hydrate loads the persisted endpoint back into memory and marks the
// store hydrated. Consumers must not trust SelectedEndpoint before
// Hydrated reports true, so a default is never shown and then replaced.
// A load failure hydrates with defaults rather than blocking startup.
func (s *Store) Hydrate(ctx context.Context) {
	settings, err := s.settings.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.logger.Warn("Failed to load persisted settings, starting with defaults", zap.Error(err))
	} else if settings != nil && settings.SelectedEndpoint != "" {
		s.selectedEndpoint = settings.SelectedEndpoint
	}
	s.hydrated = true
}

func (s *Store) Hydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

func (s *Store) SetToolCallPanelOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toolCallPanelOpen = open
}

func (s *Store) ToolCallPanelOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.toolCallPanelOpen
}

// SetSelectedToolCalls replaces the pinned/historical list wholesale,
// used when the user inspects a past message's tool calls.
func (s *Store) SetSelectedToolCalls(calls []entities.ToolCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedToolCalls = copyCalls(calls)
}

func (s *Store) SelectedToolCalls() []entities.ToolCall {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyCalls(s.selectedToolCalls)
}

// SetStreamingToolCalls replaces the live list wholesale, once per
// update batch from the upstream event consumer.
func (s *Store) SetStreamingToolCalls(calls []entities.ToolCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streamingToolCalls = copyCalls(calls)
}

func (s *Store) StreamingToolCalls() []entities.ToolCall {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyCalls(s.streamingToolCalls)
}

// SetInProgressToolCallIDs replaces the in-progress set wholesale.
func (s *Store) SetInProgressToolCallIDs(ids map[string]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inProgressToolCallIDs = copySet(ids)
}

// UpdateInProgressToolCallIDs applies a functional update to the
// in-progress set so callers can add or remove one id without
// recomputing the whole set. The update receives a copy; whatever it
// returns becomes the new set.
func (s *Store) UpdateInProgressToolCallIDs(update func(ids map[string]struct{}) map[string]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := update(copySet(s.inProgressToolCallIDs))
	if next == nil {
		next = make(map[string]struct{})
	}
	s.inProgressToolCallIDs = next
}

func (s *Store) InProgressToolCallIDs() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySet(s.inProgressToolCallIDs)
}

func (s *Store) SetIsStreaming(streaming bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isStreaming = streaming
}

func (s *Store) IsStreaming() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isStreaming
}

func (s *Store) SetMessages(messages []*entities.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = copyMessages(messages)
}

// UpdateMessages applies a functional update to the transcript.
func (s *Store) UpdateMessages(update func(messages []*entities.Message) []*entities.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = update(copyMessages(s.messages))
}

func (s *Store) Messages() []*entities.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMessages(s.messages)
}

// SetSelectedEndpoint updates the selection and writes it through to
// durable storage. Persistence failures are logged, not surfaced: the
// in-memory selection always wins for the current session.
func (s *Store) SetSelectedEndpoint(url string) {
	s.mu.Lock()
	s.selectedEndpoint = url
	s.mu.Unlock()

	if err := s.settings.Save(context.Background(), &entities.Settings{SelectedEndpoint: url}); err != nil {
		s.logger.Warn("Failed to persist selected endpoint", zap.String("endpoint", url), zap.Error(err))
	}
}

func (s *Store) SelectedEndpoint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedEndpoint
}

// EffectiveToolCalls applies the display selection rule: the streaming
// list when a response is streaming and that list is non-empty,
// otherwise the pinned list. Evaluated fresh on every call; nothing is
// cached.
func (s *Store) EffectiveToolCalls() []entities.ToolCall {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.isStreaming && len(s.streamingToolCalls) > 0 {
		return copyCalls(s.streamingToolCalls)
	}
	return copyCalls(s.selectedToolCalls)
}

// RunningCount returns the size of the in-progress set.
func (s *Store) RunningCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.inProgressToolCallIDs)
}

func copyCalls(calls []entities.ToolCall) []entities.ToolCall {
	if calls == nil {
		return nil
	}
	out := make([]entities.ToolCall, len(calls))
	copy(out, calls)
	return out
}

func copySet(ids map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func copyMessages(messages []*entities.Message) []*entities.Message {
	if messages == nil {
		return nil
	}
	out := make([]*entities.Message, len(messages))
	copy(out, messages)
	return out
}
