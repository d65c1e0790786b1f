package httptelemetry

import (
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.25.0"
)

// resolve maps the captured request facts and the termination outcome into
// the semantic attribute set shared by the metric instruments and the span.
// It reads only the record and outcome, never raises, and degrades any
// individual attribute it cannot compute to its fallback rather than
// failing as a whole.
//
// Body sizes are deliberately not part of the returned set; they are
// histogram observations and span-only attributes, not labels.
func (t *Telemetry) resolve(r *http.Request, rec *Record, out outcome) []attribute.KeyValue {
	status := out.status
	if status == 0 {
		// No response was produced; synthesize a server-error
		// equivalent so the status dimension stays total.
		status = http.StatusInternalServerError
	}

	rec.route = t.routeLabel(r)

	attrs := make([]attribute.KeyValue, 0, 8)
	attrs = append(attrs,
		semconv.HTTPRequestMethodKey.String(rec.method),
		semconv.HTTPRoute(rec.route),
		semconv.HTTPResponseStatusCode(status),
		semconv.URLScheme(rec.scheme),
	)

	if host, port := rec.serverAddress(); host != "" {
		attrs = append(attrs, semconv.ServerAddress(host), semconv.ServerPort(port))
	}

	if et, ok := t.errorType(r, out, status); ok {
		attrs = append(attrs, semconv.ErrorTypeKey.String(et))
	}

	return attrs
}

// routeLabel resolves the low-cardinality route template for the request.
// The configured RouteFunc is consulted at most once, at finalization, so
// routing information bound after dispatch is visible to it. Absence,
// refusal, or a panic inside the callback all degrade to the fallback
// label; the raw request path is never used.
func (t *Telemetry) routeLabel(r *http.Request) (label string) {
	label = t.fallbackRoute

	if t.route == nil {
		return label
	}

	defer func() {
		if p := recover(); p != nil {
			label = t.fallbackRoute
			if t.logger != nil {
				t.logger.WithField("panic", p).Warn("route callback panicked")
			}
		}
	}()

	if v, ok := t.route(r); ok && v != "" {
		label = v
	}
	return label
}

// errorType determines the error.type attribute. The configured callback
// wins; otherwise failed and canceled requests report a fixed kind, and
// responses with server-error statuses report the status code, mirroring
// the semantic-convention default.
func (t *Telemetry) errorType(r *http.Request, out outcome, status int) (string, bool) {
	if t.errType != nil {
		if et, ok := safeErrorType(t.errType, r); ok {
			return et, true
		}
	}

	switch out.kind {
	case outcomeCancelled:
		return "cancelled", true
	case outcomeError:
		return "panic", true
	default:
		if status >= 500 {
			return strconv.Itoa(status), true
		}
		return "", false
	}
}

func safeErrorType(fn ErrorTypeFunc, r *http.Request) (et string, ok bool) {
	defer func() {
		if recover() != nil {
			et, ok = "", false
		}
	}()
	return fn(r)
}

// labelPairs flattens an attribute set into the alternating key/value
// strings the go-kit instruments expect.
func labelPairs(attrs []attribute.KeyValue) []string {
	pairs := make([]string, 0, len(attrs)*2)
	for _, a := range attrs {
		pairs = append(pairs, string(a.Key), a.Value.Emit())
	}
	return pairs
}
