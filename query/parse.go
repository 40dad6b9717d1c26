package query

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	nt "shgrid/entity"
)

// Parse decodes parameters written by the default encoders.
// Missing parameters leave the zero value, limit included.
func Parse(params url.Values) (in Input, err error) {

	in.Sorters = []nt.Sorter{}
	if raw := params.Get(SortKey); raw != "" {
		err = json.Unmarshal([]byte(raw), &in.Sorters)
		if err != nil {
			err = errors.Wrapf(err, "failed to parse %s", SortKey)
			return
		}
	}

	in.Filters = []nt.FilterPair{}
	if raw := params.Get(FiltersKey); raw != "" {
		err = json.Unmarshal([]byte(raw), &in.Filters)
		if err != nil {
			err = errors.Wrapf(err, "failed to parse %s", FiltersKey)
			return
		}
	}

	in.Offset, err = parseCount(params, OffsetKey)
	if err != nil {
		return
	}

	in.Limit, err = parseCount(params, LimitKey)
	return
}

func parseCount(params url.Values, key string) (count int, err error) {

	raw := params.Get(key)
	if raw == "" {
		return
	}

	count, err = strconv.Atoi(raw)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse %s", key)
		return
	}
	if count < 0 {
		err = errors.Errorf("%s must not be negative, got %d", key, count)
	}
	return
}
