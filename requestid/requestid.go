// Package requestid extracts the inbound request id propagated by routers
// and load balancers, so it can be attached to logs and trace spans.
package requestid

import "net/http"

// headers are checked in order; the first non-empty value wins.
var headers = []string{
	"Request-ID", "X-Request-ID",
}

// Get reads the Request-ID or X-Request-ID HTTP header from an
// *http.Request. If neither header is set, an empty string is returned.
func Get(r *http.Request) string {
	for _, h := range headers {
		if id := r.Header.Get(h); id != "" {
			return id
		}
	}
	return ""
}
