package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/toolstream/agentdeck/internal/domain/errs"
	"github.com/toolstream/agentdeck/internal/domain/services"
	"github.com/toolstream/agentdeck/internal/store"
)

type ChatView struct {
	chatService services.ChatService
	store       *store.Store
	viewport    viewport.Model
	textarea    textarea.Model
	spinner     spinner.Model
	panel       ToolCallPanel
	renderer    *glamour.TermRenderer
	userStyle   lipgloss.Style
	asstStyle   lipgloss.Style
	traceStyle  lipgloss.Style
	err         error
	focused     string // "textarea", "viewport" or "panel"
	width       int
	height      int
	startTime   time.Time
	pinIndex    int // transcript index of the currently pinned trace, -1 when none
}

func NewChatView(chatService services.ChatService, st *store.Store) ChatView {
	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.Focus()
	ta.Prompt = "┃ "
	ta.SetWidth(30)
	ta.SetHeight(3)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	vp := viewport.New(30, 5)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ChatView{
		chatService: chatService,
		store:       st,
		textarea:    ta,
		viewport:    vp,
		spinner:     s,
		panel:       NewToolCallPanel(st),
		userStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		asstStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		traceStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		focused:     "textarea",
		width:       30,
		height:      5,
		pinIndex:    -1,
	}
}

func (c ChatView) Init() tea.Cmd {
	return textarea.Blink
}

func (c ChatView) Update(msg tea.Msg) (ChatView, tea.Cmd) {
	var cmds []tea.Cmd

	switch m := msg.(type) {
	case tea.KeyMsg:
		if c.store.IsStreaming() {
			if m.Type == tea.KeyEsc {
				c.chatService.CancelRun()
				return c, nil
			}
			if m.String() == "ctrl+c" {
				return c, tea.Quit
			}
			return c, nil
		}

		switch m.String() {
		case "ctrl+c":
			return c, tea.Quit
		case "ctrl+t":
			c.togglePanel()
			return c, nil
		case "ctrl+e":
			return c, func() tea.Msg { return startEndpointsMsg{} }
		case "ctrl+g":
			return c, func() tea.Msg { return startHelpMsg{} }
		case "enter":
			if c.focused == "textarea" {
				input := c.textarea.Value()
				if input == "" {
					c.err = fmt.Errorf("message cannot be empty")
					return c, nil
				}
				if c.store.SelectedEndpoint() == "" {
					c.err = fmt.Errorf("no endpoint selected, press Ctrl+E")
					return c, nil
				}
				c.textarea.Reset()
				c.err = nil
				c.startTime = time.Now()
				c.pinIndex = -1
				return c, tea.Batch(sendMessageCmd(c.chatService, input), c.spinner.Tick)
			}
		case "p":
			if c.focused != "textarea" {
				c.pinPreviousTrace()
				var cmd tea.Cmd
				c.panel, cmd = c.panel.Update(toolCallsMsg{})
				return c, cmd
			}
		case "tab", "shift+tab":
			c.cycleFocus()
			if c.focused == "textarea" {
				cmds = append(cmds, textarea.Blink)
			}
			return c, tea.Batch(cmds...)
		}

		switch c.focused {
		case "textarea":
			var cmd tea.Cmd
			c.textarea, cmd = c.textarea.Update(m)
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
		case "viewport":
			switch m.String() {
			case "j", "down":
				c.viewport.ScrollDown(1)
			case "k", "up":
				c.viewport.ScrollUp(1)
			}
		case "panel":
			var cmd tea.Cmd
			c.panel, cmd = c.panel.Update(m)
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return c, tea.Batch(cmds...)

	case spinner.TickMsg:
		if c.store.IsStreaming() {
			var cmd tea.Cmd
			c.spinner, cmd = c.spinner.Update(m)
			cmds = append(cmds, cmd)
		}
		var cmd tea.Cmd
		c.panel, cmd = c.panel.Update(m)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return c, tea.Batch(cmds...)

	case transcriptMsg:
		c.updateViewportContent()
		c.viewport.GotoBottom()
		return c, nil

	case toolCallsMsg, streamStateMsg:
		var cmd tea.Cmd
		c.panel, cmd = c.panel.Update(msg)
		c.updateViewportContent()
		return c, cmd

	case runFinishedMsg:
		if m.err != nil {
			if _, canceled := m.err.(*errs.CanceledError); !canceled {
				c.err = m.err
			}
		}
		c.updateViewportContent()
		c.viewport.GotoBottom()
		return c, nil

	case tea.WindowSizeMsg:
		c.width = m.Width
		c.height = m.Height
		c.layout()
		c.updateViewportContent()
		c.viewport.GotoBottom()
		return c, nil
	}

	return c, tea.Batch(cmds...)
}

// togglePanel flips panel visibility and rebalances the layout.
func (c *ChatView) togglePanel() {
	open := !c.store.ToolCallPanelOpen()
	c.store.SetToolCallPanelOpen(open)
	if !open && c.focused == "panel" {
		c.focused = "textarea"
		c.textarea.Focus()
	}
	c.layout()
	c.updateViewportContent()
}

func (c *ChatView) cycleFocus() {
	order := []string{"textarea", "viewport"}
	if c.store.ToolCallPanelOpen() {
		order = append(order, "panel")
	}
	next := order[0]
	for i, f := range order {
		if f == c.focused {
			next = order[(i+1)%len(order)]
			break
		}
	}
	c.focused = next

	if c.focused == "textarea" {
		c.textarea.Focus()
	} else {
		c.textarea.Blur()
	}
	c.panel.SetFocused(c.focused == "panel")
}

// pinPreviousTrace walks backwards through the transcript from the
// current pin and selects the previous message carrying tool calls.
func (c *ChatView) pinPreviousTrace() {
	messages := c.store.Messages()
	if len(messages) == 0 {
		return
	}

	start := c.pinIndex - 1
	if c.pinIndex < 0 {
		start = len(messages) - 1
	}
	for i := start; i >= 0; i-- {
		if messages[i].HasToolCalls() {
			c.pinIndex = i
			c.chatService.PinToolCalls(messages[i])
			return
		}
	}
	// Wrapped past the beginning: start over from the end next time.
	c.pinIndex = -1
}

func (c *ChatView) layout() {
	panelWidth := 0
	if c.store.ToolCallPanelOpen() {
		panelWidth = c.width / 3
		if panelWidth < 32 {
			panelWidth = 32
		}
		if panelWidth > c.width-20 {
			panelWidth = c.width - 20
		}
	}

	innerWidth := c.width - panelWidth - 4
	innerHeight := c.height - 4

	c.viewport.Width = innerWidth
	c.viewport.Height = innerHeight - 3 - 1 - 1 - 2
	c.textarea.SetWidth(innerWidth)
	c.panel.UpdateSize(panelWidth, c.height-4)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(innerWidth-2, 10)),
	)
	if err == nil {
		c.renderer = renderer
	}
}

func (c *ChatView) updateViewportContent() {
	var sb strings.Builder
	for _, message := range c.store.Messages() {
		switch message.Role {
		case "user":
			sb.WriteString(c.userStyle.Render("You: ") + message.Content + "\n")
		case "assistant":
			sb.WriteString(c.asstStyle.Render("Agent: ") + c.renderMarkdown(message.Content) + "\n")
			if message.HasToolCalls() {
				sb.WriteString(c.traceStyle.Render(fmt.Sprintf("  ⚙ %d tool call(s), press p to inspect", len(message.ToolCalls))) + "\n")
			}
		default:
			sb.WriteString(styleDim.Render("System: "+message.Content) + "\n")
		}
	}
	c.viewport.SetContent(lipgloss.NewStyle().Width(c.viewport.Width).Render(sb.String()))
}

func (c *ChatView) renderMarkdown(content string) string {
	if content == "" {
		return ""
	}
	if c.renderer == nil {
		return content
	}
	rendered, err := c.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

func (c ChatView) View() string {
	outerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.ThickBorder()).
		BorderForeground(lipgloss.Color("4")).
		Width(c.width - 2).
		Height(c.height - 2)

	var chat strings.Builder

	vpStyle := styleUnfocusedBorder.Width(c.viewport.Width).Height(c.viewport.Height)
	if c.focused == "viewport" {
		vpStyle = styleFocusedBorder.Width(c.viewport.Width).Height(c.viewport.Height)
	}

	if len(c.store.Messages()) == 0 {
		c.viewport.SetContent(lipgloss.NewStyle().Width(c.viewport.Width).Render("How can I help you today?"))
	}
	chat.WriteString(vpStyle.Render(c.viewport.View()))

	taStyle := styleUnfocusedBorder.Width(c.viewport.Width).Height(c.textarea.Height())
	if c.focused == "textarea" {
		taStyle = styleFocusedBorder.Width(c.viewport.Width).Height(c.textarea.Height())
	}
	chat.WriteString("\n" + taStyle.Render(c.textarea.View()))

	if c.store.IsStreaming() {
		elapsed := time.Since(c.startTime).Round(time.Second)
		chat.WriteString("\n" + c.spinner.View() + fmt.Sprintf(" Thinking... (%ds, Esc to cancel)", int(elapsed.Seconds())))
	} else {
		instructions := "Ctrl+T tool calls, Ctrl+E endpoints, Ctrl+G help, Tab focus, Ctrl+C exit."
		chat.WriteString("\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render(instructions))
	}

	if c.err != nil {
		chat.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Render(fmt.Sprintf("\n%s", c.err.Error())))
	}

	content := chat.String()
	if c.store.ToolCallPanelOpen() {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, c.panel.View())
	}

	return outerStyle.Render(content)
}

func sendMessageCmd(cs services.ChatService, input string) tea.Cmd {
	return func() tea.Msg {
		err := cs.SendMessage(context.Background(), input)
		return runFinishedMsg{err: err}
	}
}
