package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/toolstream/agentdeck/internal/domain/entities"
)

type EndpointView struct {
	endpoints []*entities.Endpoint
	selected  string
	list      list.Model
	width     int
	height    int
}

func NewEndpointView(endpoints []*entities.Endpoint, selected string) EndpointView {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(lipgloss.Color("6")).Bold(true)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(lipgloss.Color("7"))
	delegate.SetHeight(2)

	items := make([]list.Item, len(endpoints))
	for i, endpoint := range endpoints {
		items[i] = *endpoint
	}

	l := list.New(items, delegate, 100, 10)
	l.Title = "Agent Endpoints"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowPagination(true)

	for i, endpoint := range endpoints {
		if endpoint.URL == selected {
			l.Select(i)
			break
		}
	}

	return EndpointView{
		endpoints: endpoints,
		selected:  selected,
		list:      l,
	}
}

func (v EndpointView) Init() tea.Cmd {
	return nil
}

func (v EndpointView) Update(msg tea.Msg) (EndpointView, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = m.Width
		v.height = m.Height
		v.list.SetSize(m.Width-6, m.Height-6)
		return v, nil

	case tea.KeyMsg:
		switch m.String() {
		case "esc":
			return v, func() tea.Msg { return endpointsCancelledMsg{} }
		case "enter":
			if endpoint, ok := v.list.SelectedItem().(entities.Endpoint); ok {
				return v, func() tea.Msg { return endpointSelectedMsg{url: endpoint.URL} }
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v EndpointView) View() string {
	if v.width == 0 || v.height == 0 {
		return ""
	}

	outerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.ThickBorder()).
		BorderForeground(lipgloss.Color("4")).
		Width(v.width - 2).
		Height(v.height - 2)

	innerBorder := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("6")).
		Width(v.list.Width()).
		Height(v.list.Height())

	var sb strings.Builder
	instructions := "Use arrows or j/k to navigate, Enter to select, Esc to return to chat"
	sb.WriteString(innerBorder.Render(v.list.View()) + "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render(instructions))

	return outerStyle.Render(sb.String())
}
