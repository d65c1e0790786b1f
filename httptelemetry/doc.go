// Package httptelemetry provides middleware which instruments inbound HTTP
// requests with metrics and trace spans following the OpenTelemetry semantic
// conventions for HTTP servers.
//
// For every request the middleware records:
//
//	http.server.request.total - counter of completed requests
//	http.server.request.duration - histogram of request durations in seconds
//	http.server.request.body.size - histogram of request body sizes in bytes
//	http.server.response.body.size - histogram of response body sizes in bytes
//	http.server.active_requests - gauge of requests currently in flight
//
// and, when a trace.TracerProvider is configured, a server span continuing
// any trace context carried by the request headers. A configurable set of
// request headers can be attached to the span as
// http.request.header.<name> attributes.
//
// Counters and histograms are annotated with http.request.method, http.route,
// http.response.status_code, url.scheme, server.address, server.port and
// error.type. The http.route value comes from a caller-supplied RouteFunc so
// the package does not force a particular router; when no route can be
// determined a fixed fallback label is used instead of the raw request path,
// which keeps metric cardinality bounded.
//
// Each request is finalized exactly once, whether the handler returns
// normally, panics, or the request context is canceled before a response is
// written.
package httptelemetry
