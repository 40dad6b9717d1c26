// Package fetch performs the network call for a grid.
package fetch

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	nt "shgrid/entity"
)

// RequestIdHeader is set on each request unless the caller already did.
const RequestIdHeader = "X-Request-Id"

// Gateway wraps an http client with options applied to every request.
type Gateway struct {
	Client *http.Client
	Base   Options
	Logger nt.Logger
}

// New creates a Gateway, defaulting the client and logger when nil.
func New(client *http.Client, base Options, lgr nt.Logger) *Gateway {

	if client == nil {
		client = http.DefaultClient
	}
	if lgr == nil {
		lgr = nt.NopLogger{}
	}

	return &Gateway{
		Client: client,
		Base:   base,
		Logger: lgr,
	}
}

// Query sends a request for url with opts merged over the gateway's base options.
// The response body is left unread; transport failures are returned as errors.
func (gw *Gateway) Query(ctx context.Context, url string, opts Options) (resp *http.Response, err error) {

	merged := gw.Base.Merge(opts)

	method := merged.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		err = errors.Wrapf(err, "failed to create request")
		return
	}

	if merged.Header != nil {
		req.Header = merged.Header
	}
	if req.Header.Get(RequestIdHeader) == "" {
		req.Header.Set(RequestIdHeader, uuid.NewString())
	}
	if merged.BasicAuth != nil {
		req.SetBasicAuth(merged.BasicAuth.Username, merged.BasicAuth.Password)
	}
	for _, cookie := range merged.Cookies {
		req.AddCookie(cookie)
	}

	requestId := req.Header.Get(RequestIdHeader)
	gw.Logger.Info(ctx, "sending request", "method", method, "url", url, "request_id", requestId)

	resp, err = gw.Client.Do(req)
	if err != nil {
		gw.Logger.Error(ctx, "request failed", err, "request_id", requestId)
		err = errors.Wrapf(err, "failed to %s %s", method, url)
		return
	}

	gw.Logger.Info(ctx, "received response", "status", resp.StatusCode, "request_id", requestId)
	return
}
