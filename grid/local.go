package grid

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"github.com/pkg/errors"

	nt "shgrid/entity"
)

// LocalConfig specifies a LocalGrid.
type LocalConfig[T any] struct {
	Columns      []nt.Column
	Rows         []T
	Cell         func(row T, columnID string) string
	Sorters      []nt.Sorter
	Limit        int
	Offset       int
	LimitOptions []int
	RowLink      func(row T) string
	Listener     func()
}

// LocalGrid filters, sorts and paginates rows held in memory.
// Rebuilds are synchronous.
type LocalGrid[T any] struct {
	mu sync.Mutex

	columns   []nt.Column
	sorters   []nt.Sorter
	paginator nt.Paginator
	rows      []T
	cell      func(row T, columnID string) string
	rowLink   func(row T) string

	data     []T
	count    int
	loading  bool
	listener func()
}

// New creates a LocalGrid with its first page built.
func (cfg *LocalConfig[T]) New() (lg *LocalGrid[T], err error) {

	if cfg.Cell == nil {
		err = errors.New("local grid needs a cell accessor")
		return
	}

	err = checkColumns(cfg.Columns)
	if err != nil {
		return
	}

	pgn, err := nt.NewPaginator(cfg.Limit, cfg.Offset, cfg.LimitOptions)
	if err != nil {
		return
	}

	lg = &LocalGrid[T]{
		columns:   slices.Clone(cfg.Columns),
		sorters:   append([]nt.Sorter{}, cfg.Sorters...),
		paginator: pgn,
		rows:      slices.Clone(cfg.Rows),
		cell:      cfg.Cell,
		rowLink:   cfg.RowLink,
		data:      []T{},
		listener:  cfg.Listener,
	}

	lg.BuildData()
	return
}

// State returns a snapshot of the grid.
func (lg *LocalGrid[T]) State() State[T] {

	lg.mu.Lock()
	defer lg.mu.Unlock()

	return State[T]{
		Data:    slices.Clone(lg.data),
		Count:   lg.count,
		Loading: lg.loading,
	}
}

// OnChange replaces the listener.
func (lg *LocalGrid[T]) OnChange(listener func()) {

	lg.mu.Lock()
	defer lg.mu.Unlock()

	lg.listener = listener
}

// BuildData rebuilds the current page and notifies once.
func (lg *LocalGrid[T]) BuildData() {

	lg.mu.Lock()
	lg.loading = true

	matched := lg.filtered()
	lg.sort(matched)

	lg.count = len(matched)
	lg.data = window(matched, lg.paginator.Offset, lg.paginator.Limit)
	lg.loading = false

	listener := lg.listener
	lg.mu.Unlock()

	if listener != nil {
		listener()
	}
}

// SetPage moves to page n and rebuilds.
func (lg *LocalGrid[T]) SetPage(n int) (err error) {

	lg.mu.Lock()
	err = lg.paginator.SetPage(n)
	lg.mu.Unlock()

	if err != nil {
		return
	}

	lg.BuildData()
	return
}

// SetLimit changes the page size and rebuilds.
func (lg *LocalGrid[T]) SetLimit(limit int) (err error) {

	lg.mu.Lock()
	err = lg.paginator.SetLimit(limit)
	lg.mu.Unlock()

	if err != nil {
		return
	}

	lg.BuildData()
	return
}

// SetFilter sets the filter text of a column and rebuilds.
func (lg *LocalGrid[T]) SetFilter(columnID, text string) (err error) {

	lg.mu.Lock()
	idx, err := columnIndex(lg.columns, columnID)
	if err == nil {
		lg.columns[idx].Filter = text
	}
	lg.mu.Unlock()

	if err != nil {
		return
	}

	lg.BuildData()
	return
}

// ToggleSort cycles a column through ascending, descending and unsorted, then rebuilds.
func (lg *LocalGrid[T]) ToggleSort(columnID string) (err error) {

	lg.mu.Lock()
	_, err = columnIndex(lg.columns, columnID)
	if err == nil {
		lg.sorters = toggleSorter(lg.sorters, columnID)
	}
	lg.mu.Unlock()

	if err != nil {
		return
	}

	lg.BuildData()
	return
}

// BuildDataOnLoad is false, the first page is built at construction.
func (lg *LocalGrid[T]) BuildDataOnLoad() bool {
	return false
}

// SetRows replaces the full row set and rebuilds.
func (lg *LocalGrid[T]) SetRows(rows []T) {

	lg.mu.Lock()
	lg.rows = slices.Clone(rows)
	lg.mu.Unlock()

	lg.BuildData()
}

// Paginator returns a copy of the pagination state.
func (lg *LocalGrid[T]) Paginator() nt.Paginator {

	lg.mu.Lock()
	defer lg.mu.Unlock()

	pgn := lg.paginator
	pgn.LimitOptions = slices.Clone(pgn.LimitOptions)
	return pgn
}

// PageCount returns the number of pages of filtered rows.
func (lg *LocalGrid[T]) PageCount() int {

	lg.mu.Lock()
	defer lg.mu.Unlock()

	return lg.paginator.PageCount(lg.count)
}

// Columns returns a copy of the columns, filters included.
func (lg *LocalGrid[T]) Columns() []nt.Column {

	lg.mu.Lock()
	defer lg.mu.Unlock()

	return slices.Clone(lg.columns)
}

// Sorters returns a copy of the sort order.
func (lg *LocalGrid[T]) Sorters() []nt.Sorter {

	lg.mu.Lock()
	defer lg.mu.Unlock()

	return slices.Clone(lg.sorters)
}

// RowLink returns the link for a row, empty when none is configured.
func (lg *LocalGrid[T]) RowLink(row T) string {

	if lg.rowLink == nil {
		return ""
	}
	return lg.rowLink(row)
}

// unexported

func (lg *LocalGrid[T]) filtered() []T {

	pairs := nt.FilterPairs(lg.columns)
	if len(pairs) == 0 {
		return slices.Clone(lg.rows)
	}

	matched := []T{}
	for _, row := range lg.rows {
		if lg.matches(row, pairs) {
			matched = append(matched, row)
		}
	}
	return matched
}

func (lg *LocalGrid[T]) matches(row T, pairs []nt.FilterPair) bool {

	for _, pair := range pairs {
		text := strings.ToLower(lg.cell(row, pair.Column))
		if !strings.Contains(text, strings.ToLower(pair.Text)) {
			return false
		}
	}
	return true
}

func (lg *LocalGrid[T]) sort(rows []T) {

	if len(lg.sorters) == 0 {
		return
	}

	slices.SortStableFunc(rows, func(a, b T) int {
		for _, srt := range lg.sorters {
			res := cmp.Compare(lg.cell(a, srt.Column), lg.cell(b, srt.Column))
			if !srt.Asc {
				res = -res
			}
			if res != 0 {
				return res
			}
		}
		return 0
	})
}

func window[T any](rows []T, offset, limit int) []T {

	if offset >= len(rows) {
		return []T{}
	}

	end := min(offset+limit, len(rows))
	return slices.Clone(rows[offset:end])
}
