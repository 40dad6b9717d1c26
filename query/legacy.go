package query

import (
	"net/url"
	"strconv"

	nt "shgrid/entity"
)

// Encoders for backends using the json-server style of listing parameters.

// SortByParam sets sort to the primary sorter's column and order to asc or desc.
// Secondary sorters are dropped.
func SortByParam(params url.Values, sorters []nt.Sorter) {
	if len(sorters) == 0 {
		return
	}

	order := "desc"
	if sorters[0].Asc {
		order = "asc"
	}
	params.Set(SortKey, sorters[0].Column)
	params.Set("order", order)
}

// FiltersAsParams sets one parameter per filter, named for the column.
func FiltersAsParams(params url.Values, filters []nt.FilterPair) {
	for _, pair := range filters {
		params.Set(pair.Column, pair.Text)
	}
}

// PageParam returns an offset encoder sending a page number instead of an offset.
func PageParam(limit int) OffsetFunc {
	return func(params url.Values, offset int) {
		if limit <= 0 {
			return
		}
		params.Set("page", strconv.Itoa(offset/limit))
	}
}
