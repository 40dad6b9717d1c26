package grid

import (
	"net/http"
	"strconv"
	"strings"
)

// Result is the outcome of fetching one page: Ok, HTTPError or TransportError.
type Result[T any] interface {
	isResult()
}

// Ok carries a mapped page from a 2xx response.
type Ok[T any] struct {
	Page   Page[T]
	Header http.Header
}

// HTTPError is a response outside the 2xx range.
type HTTPError struct {
	Code    int
	Message string
}

// TransportError covers network failures, unreadable or malformed bodies and mapper failures.
type TransportError struct {
	Err error
}

func (Ok[T]) isResult()          {}
func (HTTPError) isResult()      {}
func (TransportError) isResult() {}

// Message returns the error text, or a fallback when there is none.
func (te TransportError) Message() string {
	if te.Err == nil || te.Err.Error() == "" {
		return "failed to fetch data"
	}
	return te.Err.Error()
}

// newHTTPError takes the reason phrase from the status line, as fetch's statusText does.
func newHTTPError(resp *http.Response) HTTPError {

	code := resp.StatusCode
	msg := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(code)))
	if msg == "" {
		msg = http.StatusText(code)
	}

	return HTTPError{Code: code, Message: msg}
}
