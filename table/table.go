// Package table renders a page of grid rows and maps keys to grid operations.
package table

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/pkg/errors"

	nt "shgrid/entity"
	"shgrid/grid"
	"shgrid/message"
	"shgrid/style"
)

// Grid is what the table needs from a grid controller.
type Grid interface {
	State() grid.State[nt.Record]
	Columns() []nt.Column
	Sorters() []nt.Sorter
	Paginator() nt.Paginator
	PageCount() int
	RowLink(row nt.Record) string
	SetPage(n int) error
	SetLimit(limit int) error
	ToggleSort(columnID string) error
}

// TablePanel handles the table display and navigation state
type TablePanel struct {
	grid     Grid
	selected int // Row within the current page
	column   int // Index into visible columns

	width  int
	height int

	table *table.Table

	ctx    context.Context
	logger nt.Logger
}

func NewTablePanel(ctx context.Context, grd Grid, lgr nt.Logger) TablePanel {

	lgt := table.New()
	style.StyleTable(lgt)

	return TablePanel{
		grid:   grd,
		table:  lgt,
		ctx:    ctx,
		logger: lgr,
	}
}

func (pnl TablePanel) Update(msg tea.Msg) (TablePanel, tea.Cmd) {
	switch msg := msg.(type) {

	case SizeMsg:
		pnl.width = msg.Width
		pnl.height = msg.Height

	case message.ChangedMsg:
		pnl.selected = clamp(pnl.selected, len(pnl.grid.State().Data))

	case tea.KeyPressMsg:
		return pnl.keyPress(msg)
	}

	return pnl, nil
}

// Render renders the current page of the grid
func (pnl TablePanel) Render() string {

	state := pnl.grid.State()
	if state.Loading && len(state.Data) == 0 {
		return style.MutedStyle.Render("Loading...")
	}

	columns := pnl.visible()
	sorters := pnl.grid.Sorters()

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = header(col, sorters)
	}

	pnl.table.Headers(headers...)
	pnl.table.StyleFunc(style.CellStyler(pnl.selected, pnl.column))
	pnl.table.ClearRows()
	for _, rec := range state.Data {
		pnl.table.Row(row(rec, columns)...)
	}

	if pnl.width > 0 {
		pnl.table.Width(pnl.width)
	}

	return pnl.table.Render()
}

// Selected returns the row under the cursor
func (pnl TablePanel) Selected() (nt.Record, error) {
	return pnl.selectedRow()
}

// unexported

func (pnl TablePanel) keyPress(msg tea.KeyPressMsg) (TablePanel, tea.Cmd) {

	rows := len(pnl.grid.State().Data)
	page := pnl.grid.Paginator().Page()
	pages := pnl.grid.PageCount()

	switch msg.String() {
	case "up", "k":
		if pnl.selected > 0 {
			pnl.selected--
		}

	case "down", "j":
		if pnl.selected < rows-1 {
			pnl.selected++
		}

	case "left", "h":
		if pnl.column > 0 {
			pnl.column--
		}

	case "right", "l":
		if pnl.column < len(pnl.visible())-1 {
			pnl.column++
		}

	case "pgdown", "n":
		if page+1 < pages {
			pnl.selected = 0
			return pnl, gridCmd(pnl.grid.SetPage(page + 1))
		}

	case "pgup", "p":
		if page > 0 {
			pnl.selected = 0
			return pnl, gridCmd(pnl.grid.SetPage(page - 1))
		}

	case "g":
		pnl.selected = 0
		return pnl, gridCmd(pnl.grid.SetPage(0))

	case "G":
		if pages > 0 {
			pnl.selected = 0
			return pnl, gridCmd(pnl.grid.SetPage(pages - 1))
		}

	case "s":
		columns := pnl.visible()
		if pnl.column < len(columns) {
			return pnl, gridCmd(pnl.grid.ToggleSort(columns[pnl.column].ID))
		}

	case "+", "-":
		limit, ok := nextLimit(pnl.grid.Paginator(), msg.String() == "+")
		if ok {
			return pnl, gridCmd(pnl.grid.SetLimit(limit))
		}

	case "/", "f":
		return pnl, pnl.filterCmd()

	case "enter":
		return pnl, pnl.selectedCmd()
	}

	return pnl, nil
}

func (pnl TablePanel) visible() []nt.Column {
	return nt.Visible(pnl.grid.Columns())
}

func (pnl TablePanel) selectedRow() (rec nt.Record, err error) {

	data := pnl.grid.State().Data
	if pnl.selected >= len(data) {
		err = errors.Errorf("index %d is out of bounds of %d rows", pnl.selected, len(data))
		return
	}

	rec = data[pnl.selected]
	return
}

// help

func header(col nt.Column, sorters []nt.Sorter) string {

	label := col.Label
	if label == "" {
		label = col.ID
	}
	label += style.SortMark(sorters, col.ID)

	if col.Filter != "" {
		label += " " + style.FilterStyle.Render("~"+col.Filter)
	}

	return fmt.Sprintf("%-*s", col.Width+1, label)
}

func row(rec nt.Record, columns []nt.Column) []string {

	cells := make([]string, len(columns))
	for i, col := range columns {
		cells[i] = truncate(nt.FormatValue(rec[col.ID]), col.Width)
	}
	return cells
}

// nextLimit steps through limit options, doubling or halving when there are none
func nextLimit(pgn nt.Paginator, up bool) (limit int, ok bool) {

	if len(pgn.LimitOptions) == 0 {
		if up {
			return pgn.Limit * 2, true
		}
		return pgn.Limit / 2, pgn.Limit > 1
	}

	options := slices.Clone(pgn.LimitOptions)
	slices.Sort(options)

	idx := slices.Index(options, pgn.Limit)
	switch {
	case idx < 0:
		return options[0], true
	case up && idx < len(options)-1:
		return options[idx+1], true
	case !up && idx > 0:
		return options[idx-1], true
	}
	return 0, false
}

func clamp(selected, rows int) int {
	if selected >= rows {
		selected = rows - 1
	}
	if selected < 0 {
		selected = 0
	}
	return selected
}

func truncate(in string, width int) string {

	in = strings.ReplaceAll(in, "\n", " ")

	runes := []rune(in)
	if width <= 0 || len(runes) <= width {
		return in
	}

	return string(runes[:width-1]) + style.MutedStyle.Render("…")
}
