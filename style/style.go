// Package style holds the colors and table styling shared by panels.
package style

import (
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	nt "shgrid/entity"
)

var (
	BackgroundColor  = lipgloss.Color("234")                                 // Dark warm grey
	TableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")) // Subtle warm grey border
	HlRowStyle       = lipgloss.NewStyle().Background(lipgloss.Color("235")) // Very subtle warm grey row
	HlCellStyle      = lipgloss.NewStyle().Background(lipgloss.Color("237")) // Slightly warmer cell
	MutedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("246")) // Warm muted grey text
	ErrorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	FilterStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("180"))
	UnStyle          = lipgloss.NewStyle()
)

// CellStyler returns a StyleFunc that highlights the selected row and, within it, the selected column
// Header row is -1 in lipgloss tables and never highlighted
func CellStyler(selectedRow, selectedCol int) func(row, col int) lipgloss.Style {
	return func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return UnStyle
		case row == selectedRow && col == selectedCol:
			return HlCellStyle
		case row == selectedRow:
			return HlRowStyle
		}
		return UnStyle
	}
}

// SortMark returns an arrow for a sorted column with its position when sorting on several columns
func SortMark(sorters []nt.Sorter, columnID string) string {

	for i, srt := range sorters {
		if srt.Column != columnID {
			continue
		}

		mark := "↓"
		if srt.Asc {
			mark = "↑"
		}
		if len(sorters) > 1 {
			mark += string(rune('1' + i))
		}
		return mark
	}
	return ""
}

// StyleTable applies consistent table styling for borders and separators
func StyleTable(tbl *table.Table) {
	tbl.Border(lipgloss.Border{
		Top:         "─", // Horizontal parts of separator
		Middle:      "─", // Between columns in separator
		MiddleLeft:  "─", // Left edge of separator
		MiddleRight: "─", // Right edge of separator
	}).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderStyle(TableBorderStyle)
}
