package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/toolstream/agentdeck/internal/store"
)

const panelEmptyPlaceholder = "No tool calls yet.\nThey will appear here once the agent starts using tools."

// ToolCallPanel shows the effective tool-call list: the live streaming
// list while a response with tool calls is in flight, otherwise the
// list pinned from a past message. The choice is made fresh on every
// render from current store values.
type ToolCallPanel struct {
	store        *store.Store
	items        []*ToolCallItem
	cursor       int
	scrollOffset int
	focused      bool
	width        int
	height       int
	spinner      spinner.Model
}

func NewToolCallPanel(st *store.Store) ToolCallPanel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	return ToolCallPanel{
		store:   st,
		spinner: s,
	}
}

func (p ToolCallPanel) Update(msg tea.Msg) (ToolCallPanel, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		return p.handleKey(m), nil

	case toolCallsMsg, streamStateMsg:
		p.refresh()
		if p.running() {
			return p, p.spinner.Tick
		}
		return p, nil

	case spinner.TickMsg:
		if p.running() {
			var cmd tea.Cmd
			p.spinner, cmd = p.spinner.Update(m)
			return p, cmd
		}
		return p, nil
	}

	return p, nil
}

func (p ToolCallPanel) handleKey(msg tea.KeyMsg) ToolCallPanel {
	maxIndex := len(p.items) - 1
	if maxIndex < 0 {
		return p
	}

	switch msg.String() {
	case "j", "down":
		if p.cursor < maxIndex {
			p.cursor++
		}
	case "k", "up":
		if p.cursor > 0 {
			p.cursor--
		}
	case "g":
		p.cursor = 0
	case "G":
		p.cursor = maxIndex
	case "enter", " ":
		p.items[p.cursor].Toggle()
	}
	p.adjustScroll()
	return p
}

// refresh rebuilds items from the effective list. Expansion state is
// carried over by call identity, the TUI analog of keyed re-rendering:
// an entry replaced wholesale keeps its disclosure, a new key mounts
// collapsed.
func (p *ToolCallPanel) refresh() {
	expanded := make(map[string]bool, len(p.items))
	for _, item := range p.items {
		if item.Expanded() {
			expanded[item.Key()] = true
		}
	}

	calls := p.store.EffectiveToolCalls()
	items := make([]*ToolCallItem, len(calls))
	for i, call := range calls {
		item := NewToolCallItem(call)
		if expanded[call.Key()] {
			item.Toggle()
		}
		items[i] = item
	}
	p.items = items

	if p.cursor > len(p.items)-1 {
		p.cursor = len(p.items) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
	p.adjustScroll()
}

func (p *ToolCallPanel) adjustScroll() {
	if p.cursor < p.scrollOffset {
		p.scrollOffset = p.cursor
	}
	visible := p.height - 4
	if visible < 1 {
		visible = 1
	}
	if p.cursor >= p.scrollOffset+visible {
		p.scrollOffset = p.cursor - visible + 1
	}
}

func (p *ToolCallPanel) running() bool {
	return p.store.IsStreaming() && p.store.RunningCount() > 0
}

// View renders the panel, or nothing at all when it is closed.
func (p ToolCallPanel) View() string {
	if !p.store.ToolCallPanelOpen() {
		return ""
	}
	if p.width < 10 || p.height < 4 {
		return ""
	}

	border := styleUnfocusedBorder
	if p.focused {
		border = styleFocusedBorder
	}

	innerWidth := p.width - 2

	var sb strings.Builder
	sb.WriteString(p.headerLine(innerWidth))

	calls := p.store.EffectiveToolCalls()
	if len(calls) == 0 {
		sb.WriteString("\n" + styleDim.Width(innerWidth).Render(panelEmptyPlaceholder))
	} else {
		inProgress := p.store.InProgressToolCallIDs()
		for idx, item := range p.items {
			if idx < p.scrollOffset {
				continue
			}
			sb.WriteString("\n" + item.Render(innerWidth, inProgress, p.spinner.View(), p.focused && idx == p.cursor))
		}
	}

	return border.Width(p.width).Height(p.height).Render(sb.String())
}

func (p ToolCallPanel) headerLine(width int) string {
	header := stylePanelHeader.Render(fmt.Sprintf("Tool Calls (%d)", len(p.store.EffectiveToolCalls())))
	if p.running() {
		header += "  " + styleStatusRunning.Render("● Running")
	}
	return lipgloss.NewStyle().Width(width).Render(header)
}

func (p *ToolCallPanel) SetFocused(focused bool) {
	p.focused = focused
}

func (p ToolCallPanel) IsFocused() bool {
	return p.focused
}

func (p *ToolCallPanel) UpdateSize(width, height int) {
	p.width = width
	p.height = height
	p.adjustScroll()
}
