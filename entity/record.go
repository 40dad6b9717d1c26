package entity

import (
	"fmt"
	"strconv"
)

// Record is a row decoded from json.
type Record = map[string]any

// RecordId renders the value of a record's id column, empty when absent.
func RecordId(rec Record, column string) string {

	val, ok := rec[column]
	if !ok || val == nil {
		return ""
	}

	return FormatValue(val)
}

// FormatValue renders a decoded json value for display.
func FormatValue(val any) string {

	switch val := val.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
