package entity

import (
	"math"
	"slices"

	"github.com/pkg/errors"
)

// DefaultLimit is the page size used when none is configured.
const DefaultLimit = 5

var (
	ErrNegativePage   = errors.New("page must not be negative")
	ErrPageTooLarge   = errors.New("page offset overflows")
	ErrBadLimit       = errors.New("limit must be greater than zero")
	ErrLimitNotOption = errors.New("limit is not one of the limit options")
)

// Paginator tracks the window of rows requested from a source.
// Offset stays a multiple of Limit when driven by SetPage.
type Paginator struct {
	Limit        int   `yaml:"limit"`
	Offset       int   `yaml:"offset"`
	LimitOptions []int `yaml:"limit_options,omitempty"`
}

// NewPaginator applies defaults and validates the initial window.
func NewPaginator(limit, offset int, options []int) (pgn Paginator, err error) {

	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 0 {
		err = errors.Wrapf(ErrBadLimit, "got %d", limit)
		return
	}
	if offset < 0 {
		err = errors.Errorf("offset must not be negative, got %d", offset)
		return
	}

	pgn = Paginator{
		Limit:        limit,
		Offset:       offset,
		LimitOptions: slices.Clone(options),
	}
	return
}

// Page returns the zero-based page number.
func (pgn Paginator) Page() int {
	return pgn.Offset / pgn.Limit
}

// SetPage moves the window to page n.
func (pgn *Paginator) SetPage(n int) (err error) {

	if n < 0 {
		err = errors.Wrapf(ErrNegativePage, "got %d", n)
		return
	}
	if n > math.MaxInt/pgn.Limit {
		err = errors.Wrapf(ErrPageTooLarge, "page %d at limit %d", n, pgn.Limit)
		return
	}

	pgn.Offset = pgn.Limit * n
	return
}

// SetLimit changes the page size, keeping the page that holds the first visible row.
func (pgn *Paginator) SetLimit(limit int) (err error) {

	if limit <= 0 {
		err = errors.Wrapf(ErrBadLimit, "got %d", limit)
		return
	}
	if pgn.LimitOptions != nil && !slices.Contains(pgn.LimitOptions, limit) {
		err = errors.Wrapf(ErrLimitNotOption, "%d not in %v", limit, pgn.LimitOptions)
		return
	}

	pgn.Offset = (pgn.Offset / limit) * limit
	pgn.Limit = limit
	return
}

// PageCount returns the number of pages needed for count rows.
func (pgn Paginator) PageCount(count int) int {
	if count <= 0 {
		return 0
	}
	return (count + pgn.Limit - 1) / pgn.Limit
}
