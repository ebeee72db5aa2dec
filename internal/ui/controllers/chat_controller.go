package uicontrollers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/toolstream/agentdeck/internal/domain/entities"
	"github.com/toolstream/agentdeck/internal/domain/errs"
	"github.com/toolstream/agentdeck/internal/domain/services"
	"github.com/toolstream/agentdeck/internal/store"
	"go.uber.org/zap"
)

type ChatController struct {
	logger      *zap.Logger
	chatService services.ChatService
	store       *store.Store
}

func NewChatController(logger *zap.Logger, chatService services.ChatService, st *store.Store) *ChatController {
	return &ChatController{
		logger:      logger,
		chatService: chatService,
		store:       st,
	}
}

func (c *ChatController) RegisterRoutes(e *echo.Echo) {
	e.POST("/messages", c.SendMessageHandler)
	e.POST("/cancel", c.CancelHandler)
	e.PUT("/endpoint", c.SelectEndpointHandler)
	e.PUT("/panel", c.PanelHandler)
	e.POST("/pin/:messageID", c.PinHandler)
	e.GET("/state", c.StateHandler)
}

// SendMessageHandler kicks off a streamed run. The response returns
// immediately; progress arrives over the /ws refresh channel.
func (c *ChatController) SendMessageHandler(eCtx echo.Context) error {
	var req struct {
		Message string `json:"message"`
	}
	if err := eCtx.Bind(&req); err != nil {
		return eCtx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	go func() {
		if err := c.chatService.SendMessage(context.Background(), req.Message); err != nil {
			if _, canceled := err.(*errs.CanceledError); !canceled {
				c.logger.Error("Run failed", zap.Error(err))
			}
		}
	}()

	return eCtx.JSON(http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (c *ChatController) CancelHandler(eCtx echo.Context) error {
	c.chatService.CancelRun()
	return eCtx.JSON(http.StatusOK, map[string]string{"status": "cancelled"})
}

func (c *ChatController) SelectEndpointHandler(eCtx echo.Context) error {
	var req struct {
		URL string `json:"url"`
	}
	if err := eCtx.Bind(&req); err != nil || req.URL == "" {
		return eCtx.JSON(http.StatusBadRequest, map[string]string{"error": "url is required"})
	}
	c.store.SetSelectedEndpoint(req.URL)
	return eCtx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (c *ChatController) PanelHandler(eCtx echo.Context) error {
	var req struct {
		Open bool `json:"open"`
	}
	if err := eCtx.Bind(&req); err != nil {
		return eCtx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	c.store.SetToolCallPanelOpen(req.Open)
	return eCtx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// PinHandler selects a past message's tool calls for the panel.
func (c *ChatController) PinHandler(eCtx echo.Context) error {
	messageID := eCtx.Param("messageID")
	for _, message := range c.store.Messages() {
		if message.ID == messageID {
			c.chatService.PinToolCalls(message)
			return eCtx.JSON(http.StatusOK, map[string]string{"status": "ok"})
		}
	}
	return eCtx.JSON(http.StatusNotFound, map[string]string{"error": "message not found"})
}

type toolCallState struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	ID       string `json:"id,omitempty"`
	Args     string `json:"args,omitempty"`
	Duration string `json:"duration,omitempty"`
	Response string `json:"response"`
}

type messageState struct {
	ID            string `json:"id"`
	Role          string `json:"role"`
	Content       string `json:"content"`
	ToolCallCount int    `json:"tool_call_count"`
}

type stateResponse struct {
	Streaming bool            `json:"streaming"`
	PanelOpen bool            `json:"panel_open"`
	Running   int             `json:"running"`
	ToolCalls []toolCallState `json:"tool_calls"`
	Messages  []messageState  `json:"messages"`
}

// StateHandler returns the page view model: the transcript plus the
// effective tool-call list with display-ready status and payload text.
func (c *ChatController) StateHandler(eCtx echo.Context) error {
	inProgress := c.store.InProgressToolCallIDs()

	calls := c.store.EffectiveToolCalls()
	toolCalls := make([]toolCallState, len(calls))
	for i, call := range calls {
		toolCalls[i] = toolCallState{
			Key:      call.Key(),
			Name:     call.DisplayName(),
			Status:   statusLabel(call.Status(inProgress)),
			ID:       call.ToolCallID,
			Response: responseText(call, inProgress),
		}
		if len(call.ToolArgs) > 0 {
			toolCalls[i].Args = entities.FormatPayload(call.ToolArgs)
		}
		if seconds, ok := call.Metrics.Seconds(); ok {
			secText, msText := entities.FormatDuration(seconds)
			toolCalls[i].Duration = secText + " (" + msText + ")"
		}
	}

	transcript := c.store.Messages()
	messages := make([]messageState, len(transcript))
	for i, message := range transcript {
		messages[i] = messageState{
			ID:            message.ID,
			Role:          message.Role,
			Content:       message.Content,
			ToolCallCount: len(message.ToolCalls),
		}
	}

	return eCtx.JSON(http.StatusOK, stateResponse{
		Streaming: c.store.IsStreaming(),
		PanelOpen: c.store.ToolCallPanelOpen(),
		Running:   c.store.RunningCount(),
		ToolCalls: toolCalls,
		Messages:  messages,
	})
}

func statusLabel(status entities.ToolCallStatus) string {
	switch status {
	case entities.ToolCallStatusError:
		return "error"
	case entities.ToolCallStatusRunning:
		return "running"
	case entities.ToolCallStatusSuccess:
		return "success"
	default:
		return "none"
	}
}

// responseText mirrors the terminal panel: a running call shows the
// executing placeholder even when a stale payload is present.
func responseText(call entities.ToolCall, inProgress map[string]struct{}) string {
	if _, running := inProgress[call.Key()]; running {
		return "Executing tool..."
	}
	if !call.HasResponse() {
		return "Pending response..."
	}
	return entities.FormatPayload(call.Response())
}
