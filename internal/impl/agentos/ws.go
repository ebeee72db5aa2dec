package agentos

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/toolstream/agentdeck/internal/domain/entities"
	"github.com/toolstream/agentdeck/internal/domain/errs"
	"github.com/toolstream/agentdeck/internal/domain/interfaces"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSClient is an alternative transport for backends deployed behind
// proxies that buffer server-sent events. The run is started with one
// JSON message on the socket and the same run events arrive as text
// frames.
type WSClient struct {
	logger *zap.Logger
}

func NewWSClient(logger *zap.Logger) *WSClient {
	return &WSClient{logger: logger}
}

func (c *WSClient) StreamRun(ctx context.Context, endpointURL, message string, handler interfaces.RunEventHandler) error {
	url := wsURL(endpointURL) + "/runs/ws"

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return errs.InternalErrorf("error dialing run websocket: %v", err)
	}
	defer conn.Close()

	// Close the socket when the context ends so the read loop unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	request, err := json.Marshal(map[string]any{"message": message})
	if err != nil {
		return errs.InternalErrorf("failed to marshal run request: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, request); err != nil {
		return errs.InternalErrorf("error starting run: %v", err)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == context.Canceled {
				return errs.CanceledErrorf("run canceled")
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return errs.InternalErrorf("error reading run stream: %v", err)
		}

		event, err := DecodeRunEvent(data)
		if err != nil {
			c.logger.Warn("Skipping undecodable run event", zap.Error(err))
			continue
		}
		handler(event)

		if event.Event == entities.RunEventCompleted || event.Event == entities.RunEventError {
			return nil
		}
	}
}

func wsURL(endpointURL string) string {
	url := strings.TrimRight(endpointURL, "/")
	if after, found := strings.CutPrefix(url, "https://"); found {
		return "wss://" + after
	}
	if after, found := strings.CutPrefix(url, "http://"); found {
		return "ws://" + after
	}
	return url
}

var _ interfaces.AgentClient = (*WSClient)(nil)
