// Package message holds bubbletea messages passed between panels.
package message

import nt "shgrid/entity"

// ChangedMsg signals that grid state changed and the view should re-read it
type ChangedMsg struct{}

// ErrorMsg contains an error
type ErrorMsg struct {
	Err error
}

// RowMsg contains a full row fetched from its link
type RowMsg struct {
	Link string
	Row  nt.Record
}

// OpenFilterMsg signals to edit the filter of a column
type OpenFilterMsg struct {
	Column nt.Column
}

// ApplyFilterMsg carries filter text entered for a column, nil when editing was cancelled
type ApplyFilterMsg struct {
	ColumnID string
	Text     *string
}

// SelectedMsg signals the row under the cursor
type SelectedMsg struct {
	Row  int
	Link string
}
