package tui

import (
	"github.com/toolstream/agentdeck/internal/domain/entities"
)

type (
	transcriptMsg  []*entities.Message
	toolCallsMsg   struct{}
	streamStateMsg bool
	runFinishedMsg struct{ err error }
)

type (
	startEndpointsMsg     struct{}
	endpointSelectedMsg   struct{ url string }
	endpointsCancelledMsg struct{}
)

type (
	startHelpMsg     struct{}
	helpCancelledMsg struct{}
)

type errMsg error
