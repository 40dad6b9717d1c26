package fetch

import (
	"net/http"
	"slices"
)

// BasicAuth credentials sent with each request.
type BasicAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Options are the request settings merged into each call.
type Options struct {
	Method    string         `yaml:"method,omitempty"`
	Header    http.Header    `yaml:"header,omitempty"`
	BasicAuth *BasicAuth     `yaml:"basic_auth,omitempty"`
	Cookies   []*http.Cookie `yaml:"-"`
}

// Merge returns base overlaid with call.
// The merge is shallow: a call field that is set replaces the base field outright,
// so a call supplying Header must supply the complete set.
func (base Options) Merge(call Options) (merged Options) {

	merged = base.clone()

	if call.Method != "" {
		merged.Method = call.Method
	}
	if call.Header != nil {
		merged.Header = call.Header.Clone()
	}
	if call.BasicAuth != nil {
		auth := *call.BasicAuth
		merged.BasicAuth = &auth
	}
	if call.Cookies != nil {
		merged.Cookies = slices.Clone(call.Cookies)
	}

	return
}

func (opts Options) clone() Options {

	cloned := Options{
		Method:  opts.Method,
		Header:  opts.Header.Clone(),
		Cookies: slices.Clone(opts.Cookies),
	}
	if opts.BasicAuth != nil {
		auth := *opts.BasicAuth
		cloned.BasicAuth = &auth
	}
	return cloned
}

// CanonicalHeader rekeys header with canonical names, as needed for headers read from config files.
func CanonicalHeader(header http.Header) (canonical http.Header) {

	if header == nil {
		return
	}

	canonical = http.Header{}
	for key, vals := range header {
		for _, val := range vals {
			canonical.Add(key, val)
		}
	}
	return
}
