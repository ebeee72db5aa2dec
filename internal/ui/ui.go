package ui

import (
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/toolstream/agentdeck/internal/domain/entities"
	"github.com/toolstream/agentdeck/internal/domain/events"
	"github.com/toolstream/agentdeck/internal/domain/services"
	"github.com/toolstream/agentdeck/internal/store"
	uicontrollers "github.com/toolstream/agentdeck/internal/ui/controllers"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"go.uber.org/zap"
)

//go:embed static/* templates/*
var embeddedFiles embed.FS

type UI struct {
	chatService    services.ChatService
	store          *store.Store
	endpoints      []*entities.Endpoint
	logger         *zap.Logger
	wsUpgrader     websocket.Upgrader
	wsClients      map[*websocket.Conn]bool
	wsClientsMutex sync.RWMutex
}

func NewUI(chatService services.ChatService, st *store.Store, endpoints []*entities.Endpoint, logger *zap.Logger) *UI {
	ui := &UI{
		chatService: chatService,
		store:       st,
		endpoints:   endpoints,
		logger:      logger,
		wsUpgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow connections from any origin for development
			},
		},
		wsClients: make(map[*websocket.Conn]bool),
	}

	// Start WebSocket event broadcaster
	go ui.startWebSocketBroadcaster()

	return ui
}

// startWebSocketBroadcaster relays store change events to connected
// WebSocket clients so the page knows when to refetch state.
func (u *UI) startWebSocketBroadcaster() {
	transcriptCancel := events.SubscribeToTranscriptEvents(func(events.TranscriptEventData) {
		u.broadcastRefresh("transcript")
	})
	toolCallsCancel := events.SubscribeToToolCallsEvents(func(events.ToolCallsEventData) {
		u.broadcastRefresh("tool_calls")
	})
	streamStateCancel := events.SubscribeToStreamStateEvents(func(events.StreamStateEventData) {
		u.broadcastRefresh("stream_state")
	})

	defer func() {
		transcriptCancel()
		toolCallsCancel()
		streamStateCancel()
	}()

	// Keep the broadcaster running
	select {}
}

func (u *UI) broadcastRefresh(kind string) {
	u.wsClientsMutex.RLock()
	clients := make(map[*websocket.Conn]bool)
	for client := range u.wsClients {
		clients[client] = true
	}
	u.wsClientsMutex.RUnlock()

	message, err := json.Marshal(map[string]any{"type": kind})
	if err != nil {
		u.logger.Error("Failed to marshal WebSocket message", zap.Error(err))
		return
	}

	// Send to clients outside of the lock to avoid holding it during network operations
	for client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
			u.logger.Warn("Failed to send WebSocket message to client, removing from clients", zap.Error(err))
			u.wsClientsMutex.Lock()
			delete(u.wsClients, client)
			u.wsClientsMutex.Unlock()
			client.Close()
		}
	}
}

// handleWebSocket handles WebSocket connections
func (u *UI) handleWebSocket(c echo.Context) error {
	ws, err := u.wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		u.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return err
	}
	defer ws.Close()

	u.wsClientsMutex.Lock()
	u.wsClients[ws] = true
	u.wsClientsMutex.Unlock()

	u.logger.Info("WebSocket client connected")

	defer func() {
		u.wsClientsMutex.Lock()
		delete(u.wsClients, ws)
		u.wsClientsMutex.Unlock()
		u.logger.Info("WebSocket client disconnected")
	}()

	for {
		_, _, err := ws.ReadMessage()
		if err != nil {
			break
		}
	}

	return nil
}

func (u *UI) Run(port string) error {
	funcMap := template.FuncMap{
		"renderMarkdown": renderMarkdown,
		"formatWhen":     formatWhen,
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		u.logger.Fatal("Failed to parse templates", zap.Error(err))
	}

	homeController := uicontrollers.NewHomeController(u.logger, tmpl, u.store, u.endpoints)
	chatController := uicontrollers.NewChatController(u.logger, u.chatService, u.store)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("logger", u.logger)
			return next(c)
		}
	})

	// serve static files from embedded
	e.GET("/static/*", func(c echo.Context) error {
		path := c.Param("*")
		filePath := "static/" + path
		file, err := embeddedFiles.Open(filePath)
		if err != nil {
			u.logger.Error("Failed to open static file", zap.String("path", filePath), zap.Error(err))
			return echo.NewHTTPError(http.StatusNotFound, "File not found")
		}
		defer file.Close()

		ext := filepath.Ext(path)
		mimeType := mime.TypeByExtension(ext)
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		content, err := io.ReadAll(file)
		if err != nil {
			u.logger.Error("Failed to read static file", zap.String("path", filePath), zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read file")
		}

		return c.Blob(http.StatusOK, mimeType, content)
	})

	homeController.RegisterRoutes(e)
	chatController.RegisterRoutes(e)

	// WebSocket endpoint for real-time updates
	e.GET("/ws", u.handleWebSocket)

	u.logger.Info("Starting HTTP server", zap.String("port", port))
	return e.Start(":" + port)
}
