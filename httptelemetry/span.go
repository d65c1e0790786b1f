package httptelemetry

import (
	"context"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.25.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/lumenkit/telemetry/requestid"
)

// spanManager opens, annotates and closes the per-request server span.
// It does not defend against double-close; the guard owns that.
type spanManager struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	enabled    bool

	// headers is the set of request headers captured as span attributes.
	headers []string

	// fallbackRoute is the label used when no route was resolved; spans
	// keep their method-only name in that case.
	fallbackRoute string
}

// start opens a server span named after the request method, continuing any
// trace context carried in the request headers. The returned context holds
// the span and must be threaded through the handler chain.
func (s *spanManager) start(r *http.Request, rec *Record) (context.Context, trace.Span) {
	if !s.enabled {
		return r.Context(), nil
	}

	ctx := s.propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	attrs := make([]attribute.KeyValue, 0, 12)
	attrs = append(attrs,
		semconv.HTTPRequestMethodKey.String(rec.method),
		semconv.URLPath(rec.path),
		semconv.URLScheme(rec.scheme),
		semconv.NetworkProtocolName("http"),
		semconv.NetworkProtocolVersion(rec.proto),
	)
	if rec.query != "" {
		attrs = append(attrs, semconv.URLQuery(rec.query))
	}
	if rec.userAgent != "" {
		attrs = append(attrs, semconv.UserAgentOriginal(rec.userAgent))
	}
	if host, port := rec.serverAddress(); host != "" {
		attrs = append(attrs, semconv.ServerAddress(host), semconv.ServerPort(port))
	}
	if id := requestid.Get(r); id != "" {
		attrs = append(attrs, attribute.String("http.request.id", id))
	}

	ctx, span := s.tracer.Start(ctx, rec.method,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
	)
	return ctx, span
}

// annotate adds attributes to an open span. Safe to call repeatedly as
// facts become known.
func (s *spanManager) annotate(span trace.Span, attrs ...attribute.KeyValue) {
	if span == nil || len(attrs) == 0 {
		return
	}
	span.SetAttributes(attrs...)
}

// headerAttributes captures the configured request headers as
// http.request.header.<name> span attributes. Repeated headers keep all
// of their values; headers absent from the request produce nothing.
func (s *spanManager) headerAttributes(r *http.Request) []attribute.KeyValue {
	if len(s.headers) == 0 {
		return nil
	}

	attrs := make([]attribute.KeyValue, 0, len(s.headers))
	for _, name := range s.headers {
		if vs := r.Header.Values(name); len(vs) > 0 {
			k := "http.request.header." + strings.ToLower(name)
			attrs = append(attrs, attribute.StringSlice(k, vs))
		}
	}
	return attrs
}

// end closes the span with the resolved attribute set and a terminal
// status. Callers must not end the same span twice; the finalization
// guard guarantees that for the middleware path.
func (s *spanManager) end(span trace.Span, rec *Record, out outcome, attrs []attribute.KeyValue) {
	if span == nil {
		return
	}

	span.SetAttributes(attrs...)

	if rec.requestLen > 0 {
		span.SetAttributes(semconv.HTTPRequestBodySize(int(rec.requestLen)))
	}
	if out.kind == outcomeResponse {
		span.SetAttributes(semconv.HTTPResponseBodySize(int(out.responseLen)))
	}

	// Low-cardinality span name per the http-spans conventions:
	// "{method} {route}" once the route is known, "{method}" otherwise.
	if rec.route != "" && rec.route != s.fallbackRoute {
		span.SetName(rec.method + " " + rec.route)
	}

	switch out.kind {
	case outcomeResponse:
		if out.status >= 500 {
			span.SetStatus(codes.Error, "")
		} else {
			span.SetStatus(codes.Ok, "")
		}
	case outcomeCancelled:
		span.SetStatus(codes.Error, "request canceled")
		if out.err != nil {
			span.RecordError(out.err)
		}
	case outcomeError:
		span.SetStatus(codes.Error, "handler failed")
		if out.err != nil {
			span.RecordError(out.err)
		}
	}

	span.End()
}
