package entity

import "fmt"

// GridError is the displayable failure of a rebuild.
// Code is the http status, or 500 for transport and decode failures.
type GridError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (ge *GridError) Error() string {
	return fmt.Sprintf("%d: %s", ge.Code, ge.Message)
}
