// Package grid holds the state controllers behind a data grid view.
//
// A controller owns pagination, sort and filter state, produces rows for the current page and
// signals a single listener whenever its state changes. The view reads State and re-renders;
// nothing is pushed to it.
package grid

import (
	"slices"

	"github.com/pkg/errors"

	nt "shgrid/entity"
)

// DataSource is what a view needs from a grid controller.
type DataSource[T any] interface {
	// State returns a snapshot of rows, total count, loading flag and error.
	State() State[T]
	// BuildData requests a rebuild of the current page.
	BuildData()
	// SetPage moves to page n and requests a rebuild.
	SetPage(n int) error
	// OnChange replaces the listener called after each state transition.
	OnChange(listener func())
}

// Page is a window of rows along with the total number of rows available.
type Page[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

// State is a consistent snapshot of a grid.
// A rebuild ends with either fresh Data or a non-nil Err, never both.
type State[T any] struct {
	Data    []T
	Count   int
	Loading bool
	Err     *nt.GridError
}

var ErrUnknownColumn = errors.New("unknown column")

// unexported

func checkColumns(columns []nt.Column) (err error) {

	seen := map[string]bool{}
	for _, col := range columns {
		if col.ID == "" {
			err = errors.Errorf("column %q has no id", col.Label)
			return
		}
		if seen[col.ID] {
			err = errors.Errorf("duplicate column id %q", col.ID)
			return
		}
		seen[col.ID] = true
	}
	return
}

func columnIndex(columns []nt.Column, id string) (idx int, err error) {

	idx = slices.IndexFunc(columns, func(col nt.Column) bool {
		return col.ID == id
	})
	if idx < 0 {
		err = errors.Wrapf(ErrUnknownColumn, "%q", id)
	}
	return
}

// toggleSorter cycles a column through ascending, descending and unsorted.
func toggleSorter(sorters []nt.Sorter, id string) []nt.Sorter {

	idx := slices.IndexFunc(sorters, func(srt nt.Sorter) bool {
		return srt.Column == id
	})

	switch {
	case idx < 0:
		return append(slices.Clone(sorters), nt.Sorter{Column: id, Asc: true})
	case sorters[idx].Asc:
		toggled := slices.Clone(sorters)
		toggled[idx].Asc = false
		return toggled
	default:
		return slices.Delete(slices.Clone(sorters), idx, idx+1)
	}
}
