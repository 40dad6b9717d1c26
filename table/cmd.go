package table

import (
	tea "charm.land/bubbletea/v2"

	"shgrid/message"
)

func (pnl TablePanel) selectedCmd() tea.Cmd {

	row, err := pnl.selectedRow()
	if err != nil {
		return message.ErrorCmd(err)
	}

	msg := message.SelectedMsg{
		Row:  pnl.grid.Paginator().Offset + pnl.selected + 1,
		Link: pnl.grid.RowLink(row),
	}

	return func() tea.Msg {
		return msg
	}
}

func (pnl TablePanel) filterCmd() tea.Cmd {

	columns := pnl.visible()
	if pnl.column >= len(columns) {
		return nil
	}

	msg := message.OpenFilterMsg{Column: columns[pnl.column]}
	return func() tea.Msg {
		return msg
	}
}

// gridCmd reports a failed grid call, if any
func gridCmd(err error) tea.Cmd {
	if err != nil {
		return message.ErrorCmd(err)
	}
	return nil
}
