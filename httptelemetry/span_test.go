package httptelemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newRecordedTelemetry(opts ...Option) (*tracetest.SpanRecorder, func(http.Handler) http.Handler) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	return sr, New(append([]Option{WithTracerProvider(tp)}, opts...)...)
}

func endedSpan(t *testing.T, sr *tracetest.SpanRecorder) sdktrace.ReadOnlySpan {
	t.Helper()

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("len(spans) = %d, want 1", len(spans))
	}
	return spans[0]
}

func checkAttr(t *testing.T, span sdktrace.ReadOnlySpan, want attribute.KeyValue) {
	t.Helper()

	for _, a := range span.Attributes() {
		if a.Key == want.Key {
			if a.Value != want.Value {
				t.Fatalf("%s = %v, want %v", want.Key, a.Value.Emit(), want.Value.Emit())
			}
			return
		}
	}
	t.Fatalf("span has no %s attribute", want.Key)
}

func TestSpanOkOutcome(t *testing.T) {
	sr, mw := newRecordedTelemetry(
		WithRoute(func(*http.Request) (string, bool) { return "/some/:path", true }),
	)

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
	})

	r := httptest.NewRequest("GET", "http://example.org/some/42", nil)
	mw(next).ServeHTTP(httptest.NewRecorder(), r)

	span := endedSpan(t, sr)

	if got, want := span.Name(), "GET /some/:path"; got != want {
		t.Fatalf("name = %q, want %q", got, want)
	}
	if span.SpanKind() != trace.SpanKindServer {
		t.Fatalf("kind = %v, want server", span.SpanKind())
	}
	if span.Status().Code != codes.Ok {
		t.Fatalf("status = %v, want Ok", span.Status().Code)
	}
	checkAttr(t, span, attribute.Int("http.response.status_code", 200))
	checkAttr(t, span, attribute.String("http.route", "/some/:path"))
	checkAttr(t, span, attribute.String("url.path", "/some/42"))
}

func TestSpanEntryProtocolAndQuery(t *testing.T) {
	sr, mw := newRecordedTelemetry()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
	})

	r := httptest.NewRequest("GET", "http://example.org/search?q=dynos", nil)
	mw(next).ServeHTTP(httptest.NewRecorder(), r)

	span := endedSpan(t, sr)
	checkAttr(t, span, attribute.String("url.query", "q=dynos"))
	checkAttr(t, span, attribute.String("network.protocol.name", "http"))
	checkAttr(t, span, attribute.String("network.protocol.version", "1.1"))
}

func TestSpanCapturedHeaders(t *testing.T) {
	sr, mw := newRecordedTelemetry(
		WithHeaders("X-Request-Start", "Accept", "X-Absent"),
	)

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
	})

	r := httptest.NewRequest("GET", "http://example.org/", nil)
	r.Header.Set("X-Request-Start", "1717243200")
	r.Header.Add("Accept", "text/html")
	r.Header.Add("Accept", "application/json")
	r.Header.Set("X-Secret", "hunter2")
	mw(next).ServeHTTP(httptest.NewRecorder(), r)

	span := endedSpan(t, sr)
	checkAttr(t, span, attribute.StringSlice("http.request.header.x-request-start", []string{"1717243200"}))
	checkAttr(t, span, attribute.StringSlice("http.request.header.accept", []string{"text/html", "application/json"}))

	for _, a := range span.Attributes() {
		switch a.Key {
		case "http.request.header.x-absent":
			t.Fatal("captured a header the request did not carry")
		case "http.request.header.x-secret":
			t.Fatal("captured a header that was not configured")
		}
	}
}

func TestSpanNameWithoutRoute(t *testing.T) {
	sr, mw := newRecordedTelemetry()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
	})

	mw(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "http://example.org/x", nil))

	if got, want := endedSpan(t, sr).Name(), "GET"; got != want {
		t.Fatalf("name = %q, want %q", got, want)
	}
}

func TestSpanErrorOutcome(t *testing.T) {
	sr, mw := newRecordedTelemetry()

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	func() {
		defer func() { _ = recover() }()
		mw(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "http://example.org/", nil))
	}()

	span := endedSpan(t, sr)

	if span.Status().Code != codes.Error {
		t.Fatalf("status = %v, want Error", span.Status().Code)
	}
	checkAttr(t, span, attribute.String("error.type", "panic"))
	checkAttr(t, span, attribute.Int("http.response.status_code", 500))

	var sawException bool
	for _, e := range span.Events() {
		if e.Name == "exception" {
			sawException = true
		}
	}
	if !sawException {
		t.Fatal("span has no exception event")
	}
}

func TestSpanServerErrorStatus(t *testing.T) {
	sr, mw := newRecordedTelemetry()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(503)
	})

	mw(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "http://example.org/", nil))

	span := endedSpan(t, sr)
	if span.Status().Code != codes.Error {
		t.Fatalf("status = %v, want Error", span.Status().Code)
	}
	checkAttr(t, span, attribute.String("error.type", "503"))
}

func TestSpanContinuesRemoteTrace(t *testing.T) {
	sr, mw := newRecordedTelemetry()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
	})

	r := httptest.NewRequest("GET", "http://example.org/", nil)
	r.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	mw(next).ServeHTTP(httptest.NewRecorder(), r)

	span := endedSpan(t, sr)

	if got, want := span.SpanContext().TraceID().String(), "4bf92f3577b34da6a3ce929d0e0e4736"; got != want {
		t.Fatalf("trace id = %s, want %s", got, want)
	}
	if got, want := span.Parent().SpanID().String(), "00f067aa0ba902b7"; got != want {
		t.Fatalf("parent span id = %s, want %s", got, want)
	}
}

func TestSpanSeesHandlerContext(t *testing.T) {
	sr, mw := newRecordedTelemetry()

	var inHandler bool
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		inHandler = trace.SpanFromContext(r.Context()).SpanContext().IsValid()
	})

	mw(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "http://example.org/", nil))

	if !inHandler {
		t.Fatal("handler context carries no span")
	}
	endedSpan(t, sr)
}
