package grid

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
)

// TotalCountHeader carries the total row count for backends that page via headers.
const TotalCountHeader = "X-Total-Count"

// Payload is a successful response body, already checked to be valid json, and its headers.
type Payload struct {
	Body   json.RawMessage
	Header http.Header
}

// Mapper adapts a backend's response to a Page.
type Mapper[T any] func(payload Payload) (Page[T], error)

// EnvelopeMapper decodes {"data": [...], "count": n}.
// Count falls back to the X-Total-Count header, then to the number of rows.
func EnvelopeMapper[T any](payload Payload) (page Page[T], err error) {

	var envelope struct {
		Data  []T  `json:"data"`
		Count *int `json:"count"`
	}

	err = json.Unmarshal(payload.Body, &envelope)
	if err != nil {
		err = errors.Wrapf(err, "failed to decode response envelope")
		return
	}

	page.Data = envelope.Data
	if page.Data == nil {
		page.Data = []T{}
	}

	total, ok := totalCount(payload.Header)
	switch {
	case envelope.Count != nil:
		if *envelope.Count < 0 {
			err = errors.Errorf("negative count %d in response envelope", *envelope.Count)
			return
		}
		page.Count = *envelope.Count
	case ok:
		page.Count = total
	default:
		page.Count = len(page.Data)
	}
	return
}

// ArrayMapper decodes a bare json array of rows, counting via X-Total-Count.
func ArrayMapper[T any](payload Payload) (page Page[T], err error) {

	page.Data = []T{}
	err = json.Unmarshal(payload.Body, &page.Data)
	if err != nil {
		err = errors.Wrapf(err, "failed to decode response rows")
		return
	}

	total, ok := totalCount(payload.Header)
	if !ok {
		total = len(page.Data)
	}
	page.Count = total
	return
}

func totalCount(header http.Header) (total int, ok bool) {

	raw := header.Get(TotalCountHeader)
	if raw == "" {
		return
	}

	total, err := strconv.Atoi(raw)
	if err != nil || total < 0 {
		return 0, false
	}
	return total, true
}
