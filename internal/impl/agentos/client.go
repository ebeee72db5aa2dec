package agentos

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/toolstream/agentdeck/internal/domain/entities"
	"github.com/toolstream/agentdeck/internal/domain/errs"
	"github.com/toolstream/agentdeck/internal/domain/interfaces"

	"go.uber.org/zap"
)

// Client consumes an AgentOS-style run API over HTTP. A run is started
// with a POST and its lifecycle arrives as a server-sent event stream;
// each data line is one JSON run event.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(logger *zap.Logger) *Client {
	return &Client{
		// No client-side timeout: the stream stays open for the whole
		// run and cancellation comes from the request context.
		httpClient: &http.Client{},
		logger:     logger,
	}
}

func (c *Client) StreamRun(ctx context.Context, endpointURL, message string, handler interfaces.RunEventHandler) error {
	payload, err := json.Marshal(map[string]any{
		"message": message,
		"stream":  true,
	})
	if err != nil {
		return errs.InternalErrorf("failed to marshal run request: %v", err)
	}

	url := strings.TrimRight(endpointURL, "/") + "/runs"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errs.InternalErrorf("failed to create run request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.Canceled {
			return errs.CanceledErrorf("run canceled")
		}
		return errs.InternalErrorf("error starting run: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("Unexpected status code from run endpoint",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return errs.InternalErrorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		data, found := strings.CutPrefix(line, "data:")
		if !found {
			// Ignore event:/id: framing lines; the payload carries its
			// own event name.
			continue
		}

		event, err := DecodeRunEvent([]byte(strings.TrimSpace(data)))
		if err != nil {
			c.logger.Warn("Skipping undecodable run event", zap.Error(err))
			continue
		}
		handler(event)
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() == context.Canceled {
			return errs.CanceledErrorf("run canceled")
		}
		return errs.InternalErrorf("error reading run stream: %v", err)
	}

	return nil
}

// DecodeRunEvent parses one run event payload.
func DecodeRunEvent(data []byte) (entities.RunEvent, error) {
	var event entities.RunEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return entities.RunEvent{}, fmt.Errorf("error decoding run event: %w", err)
	}
	if event.Event == "" {
		return entities.RunEvent{}, fmt.Errorf("run event missing event name")
	}
	return event, nil
}

var _ interfaces.AgentClient = (*Client)(nil)
