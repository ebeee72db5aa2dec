package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/toolstream/agentdeck/internal/domain/entities"
)

const (
	executingPlaceholder = "Executing tool..."
	pendingPlaceholder   = "Pending response..."
)

// ToolCallItem renders one tool call with a status badge and an
// expand/collapse disclosure. Expansion is purely local state, toggled
// only by the user; it survives list updates because the panel rebuilds
// items keyed by call identity.
type ToolCallItem struct {
	call     entities.ToolCall
	expanded bool
}

func NewToolCallItem(call entities.ToolCall) *ToolCallItem {
	return &ToolCallItem{call: call}
}

// SetCall replaces the rendered call wholesale, keeping local state.
func (i *ToolCallItem) SetCall(call entities.ToolCall) {
	i.call = call
}

func (i *ToolCallItem) Key() string {
	return i.call.Key()
}

func (i *ToolCallItem) Toggle() {
	i.expanded = !i.expanded
}

func (i *ToolCallItem) Expanded() bool {
	return i.expanded
}

// Render returns the item view. spinnerView is the shared running
// indicator frame; selected marks panel cursor position.
func (i *ToolCallItem) Render(width int, inProgress map[string]struct{}, spinnerView string, selected bool) string {
	var sb strings.Builder
	sb.WriteString(i.headerLine(inProgress, spinnerView))

	if i.expanded {
		for _, line := range i.detailLines(inProgress) {
			sb.WriteString("\n" + styleItemDetail.Render(line))
		}
	}

	view := lipgloss.NewStyle().Width(width).Render(sb.String())
	if selected {
		return styleItemSelected.Width(width).Render(sb.String())
	}
	return view
}

func (i *ToolCallItem) headerLine(inProgress map[string]struct{}, spinnerView string) string {
	disclosure := "▸"
	if i.expanded {
		disclosure = "▾"
	}

	name := i.call.DisplayName()
	switch i.call.Status(inProgress) {
	case entities.ToolCallStatusError:
		return fmt.Sprintf("%s %s %s", disclosure, styleStatusError.Render("✗"), name)
	case entities.ToolCallStatusRunning:
		return fmt.Sprintf("%s %s %s %s", disclosure, styleStatusRunning.Render("⚙"), name, spinnerView)
	case entities.ToolCallStatusSuccess:
		return fmt.Sprintf("%s %s %s", disclosure, styleStatusSuccess.Render("✓"), name)
	default:
		return fmt.Sprintf("%s %s %s", disclosure, styleDim.Render("·"), name)
	}
}

// detailLines builds the expanded section: identity, arguments, timing
// and response, each omitted when absent.
func (i *ToolCallItem) detailLines(inProgress map[string]struct{}) []string {
	var lines []string

	if i.call.ToolCallID != "" {
		lines = append(lines, "ID: "+i.call.ToolCallID)
	}

	if len(i.call.ToolArgs) > 0 {
		lines = append(lines, "Arguments:")
		lines = append(lines, strings.Split(entities.FormatPayload(i.call.ToolArgs), "\n")...)
	}

	if seconds, ok := i.call.Metrics.Seconds(); ok {
		secText, msText := entities.FormatDuration(seconds)
		lines = append(lines, fmt.Sprintf("Duration: %s (%s)", secText, msText))
	}

	lines = append(lines, "Response:")
	lines = append(lines, strings.Split(i.responseText(inProgress), "\n")...)
	return lines
}

// responseText applies the response precedence: an in-progress call
// shows the executing placeholder even if a stale payload is present; a
// call with no payload and no known progress shows the pending
// placeholder; otherwise result wins over legacy content.
func (i *ToolCallItem) responseText(inProgress map[string]struct{}) string {
	if _, running := inProgress[i.call.Key()]; running {
		return executingPlaceholder
	}
	if !i.call.HasResponse() {
		return pendingPlaceholder
	}
	return entities.FormatPayload(i.call.Response())
}
