// Package query turns grid state into url query parameters.
//
// There is no common standard for filtering and sorting a REST listing, so each of the four
// encoders can be swapped independently to match a backend's conventions.
package query

import (
	"encoding/json"
	"net/url"
	"strconv"

	nt "shgrid/entity"
)

// Input is the grid state that ends up on the wire.
type Input struct {
	Filters []nt.FilterPair
	Sorters []nt.Sorter
	Offset  int
	Limit   int
}

type (
	SortersFunc func(params url.Values, sorters []nt.Sorter)
	FiltersFunc func(params url.Values, filters []nt.FilterPair)
	OffsetFunc  func(params url.Values, offset int)
	LimitFunc   func(params url.Values, limit int)
)

// Builders holds one encoder per piece of state.
// A nil field uses the default encoder.
type Builders struct {
	Sorters SortersFunc
	Filters FiltersFunc
	Offset  OffsetFunc
	Limit   LimitFunc
}

// Build appends the encoded input to a copy of base and returns the result.
// Parameters already on base are kept unless an encoder sets the same key.
func (bld Builders) Build(base *url.URL, in Input) string {

	u := *base
	params := u.Query()

	bld.withDefaults().apply(params, in)

	// Encode sorts by key, keeping the output stable for a given input
	u.RawQuery = params.Encode()
	return u.String()
}

// Params returns just the encoded parameters for in.
func (bld Builders) Params(in Input) url.Values {

	params := url.Values{}
	bld.withDefaults().apply(params, in)
	return params
}

// Default encoders

// JsonSorters sets sort to the json encoded sorter list.
func JsonSorters(params url.Values, sorters []nt.Sorter) {
	if sorters == nil {
		sorters = []nt.Sorter{}
	}
	params.Set(SortKey, mustJson(sorters))
}

// JsonFilters sets filters to the json encoded list of [column, text] pairs.
func JsonFilters(params url.Values, filters []nt.FilterPair) {
	if filters == nil {
		filters = []nt.FilterPair{}
	}
	params.Set(FiltersKey, mustJson(filters))
}

// DecimalOffset sets offset as a decimal string.
func DecimalOffset(params url.Values, offset int) {
	params.Set(OffsetKey, strconv.Itoa(offset))
}

// DecimalLimit sets limit as a decimal string.
func DecimalLimit(params url.Values, limit int) {
	params.Set(LimitKey, strconv.Itoa(limit))
}

// Parameter names used by the default encoders.
const (
	SortKey    = "sort"
	FiltersKey = "filters"
	OffsetKey  = "offset"
	LimitKey   = "limit"
)

// unexported

func (bld Builders) withDefaults() Builders {

	if bld.Sorters == nil {
		bld.Sorters = JsonSorters
	}
	if bld.Filters == nil {
		bld.Filters = JsonFilters
	}
	if bld.Offset == nil {
		bld.Offset = DecimalOffset
	}
	if bld.Limit == nil {
		bld.Limit = DecimalLimit
	}
	return bld
}

func (bld Builders) apply(params url.Values, in Input) {
	bld.Sorters(params, in.Sorters)
	bld.Filters(params, in.Filters)
	bld.Offset(params, in.Offset)
	bld.Limit(params, in.Limit)
}

func mustJson(val any) string {

	// slices of plain structs and string pairs cannot fail to marshal
	data, err := json.Marshal(val)
	if err != nil {
		panic(err)
	}
	return string(data)
}
