package fieldselector

import (
	"net/http"
	"net/url"
)

// Selection sources, as reported by Metrics. SourceDefault means neither
// the query parameter nor the header carried a value.
const (
	SourceQuery   = "query"
	SourceHeader  = "header"
	SourceDefault = "default"
)

// Request carries the slices of an incoming request the selector reads:
// parsed query parameters and headers. Either map may be nil, which simply
// means that source is absent. Multi-valued entries contribute only their
// first value.
//
// Header keys must be in the canonical form produced by net/http; when
// assembling a Request by hand, populate Header with http.Header.Set rather
// than direct map writes. Percent-decoding of query values and header key
// canonicalization are the host's responsibility, as is everything else
// about real request parsing.
type Request struct {
	Query  url.Values
	Header http.Header
}

// rawSelection extracts the raw selection string from req, trying the query
// parameter first and the header second. A key present with at least one
// value wins even if that value is empty; a missing key or an empty value
// list falls through to the next source.
func (s *Selector) rawSelection(req Request) (raw, source string) {
	if vs, ok := req.Query[s.queryParam]; ok && len(vs) > 0 {
		return vs[0], SourceQuery
	}
	if vs, ok := req.Header[s.headerName]; ok && len(vs) > 0 {
		return vs[0], SourceHeader
	}
	return "", SourceDefault
}
