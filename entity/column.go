package entity

// Column describes one field of the grid.
// Filter holds text entered by the user, empty means no filter for the column.
type Column struct {
	ID     string `yaml:"id"`
	Label  string `yaml:"label"`
	Hidden bool   `yaml:"hidden,omitempty"`
	Filter string `yaml:"filter,omitempty"`
	Width  int    `yaml:"width,omitempty"`
	// Json marks string values holding escaped json, expanded in the detail view.
	Json bool `yaml:"json,omitempty"`
}

// FilterPairs returns a pair for each column with a non-empty filter, in column order.
func FilterPairs(columns []Column) (pairs []FilterPair) {

	pairs = []FilterPair{}
	for _, col := range columns {
		if col.Filter == "" {
			continue
		}
		pairs = append(pairs, FilterPair{Column: col.ID, Text: col.Filter})
	}
	return
}

// Visible returns the columns not marked hidden.
func Visible(columns []Column) (visible []Column) {

	for _, col := range columns {
		if col.Hidden {
			continue
		}
		visible = append(visible, col)
	}
	return
}
