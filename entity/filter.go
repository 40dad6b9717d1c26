package entity

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// FilterPair is a column id with the filter text applied to it.
// On the wire it is a two element array: ["first_name", "bob"].
type FilterPair struct {
	Column string
	Text   string
}

// MarshalJSON encodes the pair as a two element array.
func (fp FilterPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{fp.Column, fp.Text})
}

// UnmarshalJSON decodes a two element array.
func (fp *FilterPair) UnmarshalJSON(data []byte) (err error) {

	var pair []string
	err = json.Unmarshal(data, &pair)
	if err != nil {
		err = errors.Wrapf(err, "failed to unmarshal filter pair")
		return
	}
	if len(pair) != 2 {
		err = errors.Errorf("filter pair needs 2 elements, got %d", len(pair))
		return
	}

	fp.Column = pair[0]
	fp.Text = pair[1]
	return
}

// Sorter is a sort directive for a column.
// Sorters are applied in order: primary, secondary and so on.
type Sorter struct {
	Column string `json:"columnId" yaml:"column"`
	Asc    bool   `json:"isAsc" yaml:"asc"`
}
