// Package filter is a dialog for editing the filter text of one column.
package filter

import (
	"context"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	nt "shgrid/entity"
	"shgrid/message"
	"shgrid/style"
)

const dialogWidth = 60

// FilterPanel displays a modal dialog for editing a column filter
type FilterPanel struct {
	column nt.Column
	value  []rune

	cursorPos int // Cursor position in value

	width  int
	height int

	ctx    context.Context
	logger nt.Logger
}

func NewFilterPanel(ctx context.Context, lgr nt.Logger) FilterPanel {
	return FilterPanel{
		ctx:    ctx,
		logger: lgr,
	}
}

func (pnl FilterPanel) Update(msg tea.Msg) (FilterPanel, tea.Cmd) {
	switch msg := msg.(type) {

	case message.OpenFilterMsg:
		pnl.column = msg.Column
		pnl.value = []rune(msg.Column.Filter)
		pnl.cursorPos = len(pnl.value)

	case SizeMsg:
		pnl.width = msg.Width
		pnl.height = msg.Height

	case tea.KeyPressMsg:
		return pnl.handleKey(msg)
	}

	return pnl, nil
}

// Value returns the text entered so far
func (pnl FilterPanel) Value() string {
	return string(pnl.value)
}

// Render renders the dialog centered in the panel
func (pnl FilterPanel) Render() string {

	label := pnl.column.Label
	if label == "" {
		label = pnl.column.ID
	}

	before := string(pnl.value[:pnl.cursorPos])
	after := string(pnl.value[pnl.cursorPos:])
	input := before + style.HlCellStyle.Render("▏") + after

	var content strings.Builder
	content.WriteString("Filter " + label + " containing:\n\n")
	content.WriteString(style.FilterStyle.Render(input) + "\n")
	content.WriteString("\n" + style.MutedStyle.Render("Enter: apply  Esc: cancel  ctrl+u: clear"))

	dialog := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(1, 2).
		Width(dialogWidth).
		Render(content.String())

	if pnl.width > 0 && pnl.height > 0 {
		return lipgloss.Place(pnl.width, pnl.height, lipgloss.Center, lipgloss.Center, dialog)
	}
	return dialog
}

// unexported

func (pnl FilterPanel) handleKey(msg tea.KeyPressMsg) (FilterPanel, tea.Cmd) {

	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(string(pnl.value))
		return pnl, pnl.applyCmd(&text)

	case "esc":
		return pnl, pnl.applyCmd(nil)

	case "left":
		if pnl.cursorPos > 0 {
			pnl.cursorPos--
		}

	case "right":
		if pnl.cursorPos < len(pnl.value) {
			pnl.cursorPos++
		}

	case "home", "ctrl+a":
		pnl.cursorPos = 0

	case "end", "ctrl+e":
		pnl.cursorPos = len(pnl.value)

	case "backspace":
		if pnl.cursorPos > 0 {
			pnl.value = slices.Delete(slices.Clone(pnl.value), pnl.cursorPos-1, pnl.cursorPos)
			pnl.cursorPos--
		}

	case "delete":
		if pnl.cursorPos < len(pnl.value) {
			pnl.value = slices.Delete(slices.Clone(pnl.value), pnl.cursorPos, pnl.cursorPos+1)
		}

	case "ctrl+u":
		pnl.value = nil
		pnl.cursorPos = 0

	default:
		if msg.Text != "" {
			typed := []rune(msg.Text)
			pnl.value = slices.Insert(slices.Clone(pnl.value), pnl.cursorPos, typed...)
			pnl.cursorPos += len(typed)
		}
	}

	return pnl, nil
}

func (pnl FilterPanel) applyCmd(text *string) tea.Cmd {

	msg := message.ApplyFilterMsg{
		ColumnID: pnl.column.ID,
		Text:     text,
	}

	return func() tea.Msg {
		return msg
	}
}
