package interfaces

import (
	"context"

	"github.com/toolstream/agentdeck/internal/domain/entities"
)

// RunEventHandler receives backend run events in arrival order.
type RunEventHandler func(event entities.RunEvent)

// AgentClient talks to an agent orchestration backend. StreamRun blocks
// until the run's event stream ends or ctx is canceled; the handler is
// invoked on the client's reader goroutine.
type AgentClient interface {
	StreamRun(ctx context.Context, endpointURL, message string, handler RunEventHandler) error
}
