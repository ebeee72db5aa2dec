package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/toolstream/agentdeck/internal/domain/entities"
	"github.com/toolstream/agentdeck/internal/domain/events"
	"github.com/toolstream/agentdeck/internal/domain/services"
	"github.com/toolstream/agentdeck/internal/store"
)

type TUI struct {
	chatService services.ChatService
	store       *store.Store
	endpoints   []*entities.Endpoint

	chatView     ChatView
	endpointView EndpointView
	helpView     HelpView

	state string
	err   error
}

func NewTUI(chatService services.ChatService, st *store.Store, endpoints []*entities.Endpoint) TUI {
	return TUI{
		chatService: chatService,
		store:       st,
		endpoints:   endpoints,

		chatView:     NewChatView(chatService, st),
		endpointView: NewEndpointView(endpoints, st.SelectedEndpoint()),
		helpView:     NewHelpView(),

		state: "chat/view",
	}
}

func (t TUI) Init() tea.Cmd {
	return tea.Batch(
		t.chatView.Init(),
		t.endpointView.Init(),
		t.helpView.Init(),
	)
}

func (t TUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case startEndpointsMsg:
		t.state = "endpoints/list"
		t.endpointView = NewEndpointView(t.endpoints, t.store.SelectedEndpoint())
		t.endpointView.width = t.chatView.width
		t.endpointView.height = t.chatView.height
		t.endpointView.list.SetSize(t.chatView.width-6, t.chatView.height-6)
		return t, t.endpointView.Init()

	case endpointSelectedMsg:
		t.store.SetSelectedEndpoint(msg.url)
		t.state = "chat/view"
		return t, nil

	case endpointsCancelledMsg:
		t.state = "chat/view"
		return t, nil

	case startHelpMsg:
		t.state = "chat/help"
		return t, t.helpView.Init()

	case helpCancelledMsg:
		t.state = "chat/view"
		return t, nil

	case errMsg:
		t.err = msg
		return t, nil

	case tea.WindowSizeMsg:
		var (
			cmd  tea.Cmd
			cmds []tea.Cmd
		)

		t.chatView, cmd = t.chatView.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}

		t.endpointView, cmd = t.endpointView.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}

		t.helpView, cmd = t.helpView.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}

		return t, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	switch t.state {
	case "chat/view":
		t.chatView, cmd = t.chatView.Update(msg)
	case "endpoints/list":
		t.endpointView, cmd = t.endpointView.Update(msg)
	case "chat/help":
		t.helpView, cmd = t.helpView.Update(msg)
	}
	return t, cmd
}

func (t TUI) View() string {
	switch t.state {
	case "endpoints/list":
		return t.endpointView.View()
	case "chat/help":
		return t.helpView.View()
	default:
		return t.chatView.View()
	}
}

// Subscribe forwards store change events from the bus into the running
// program so views re-read the store on their own update cycle. The
// returned function cancels all subscriptions.
func Subscribe(p *tea.Program) func() {
	cancelTranscript := events.SubscribeToTranscriptEvents(func(data events.TranscriptEventData) {
		p.Send(transcriptMsg(data.Messages))
	})
	cancelToolCalls := events.SubscribeToToolCallsEvents(func(events.ToolCallsEventData) {
		p.Send(toolCallsMsg{})
	})
	cancelStreamState := events.SubscribeToStreamStateEvents(func(data events.StreamStateEventData) {
		p.Send(streamStateMsg(data.Streaming))
	})

	return func() {
		cancelTranscript()
		cancelToolCalls()
		cancelStreamState()
	}
}
