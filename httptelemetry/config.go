package httptelemetry

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/lumenkit/telemetry/clock"
	xmetrics "github.com/lumenkit/telemetry/metrics"
	"github.com/lumenkit/telemetry/metrics/provider/discard"
	"github.com/lumenkit/telemetry/metricsregistry"
)

const (
	// DefaultFallbackRoute is the http.route label used when no route
	// can be resolved for a request. It is a fixed token rather than the
	// raw request path so that unroutable requests cannot blow up metric
	// cardinality.
	DefaultFallbackRoute = "unmatched"

	defaultScopeName = "github.com/lumenkit/telemetry/httptelemetry"
)

// RouteFunc reports the low-cardinality route template matched by a
// request, e.g. "/users/{id}". It is invoked once per request, at
// finalization, so routing information resolved after dispatch is
// available. Returning false means no route was matched.
type RouteFunc func(r *http.Request) (string, bool)

// ErrorTypeFunc reports an application-specific low-cardinality value for
// the error.type attribute. Implementations typically inspect request
// state deposited by the handler chain.
type ErrorTypeFunc func(r *http.Request) (string, bool)

// ServerAddressFunc reports the logical server address and port a request
// was received on, overriding the values derived from the Host header.
// Returning false keeps the derived values.
type ServerAddressFunc func(r *http.Request) (string, int, bool)

// Telemetry is a configured request-instrumentation engine. Construct one
// implicitly through New; the zero value is not usable.
type Telemetry struct {
	provider       xmetrics.Provider
	tracerProvider trace.TracerProvider
	propagator     propagation.TextMapPropagator
	serviceName    string
	route          RouteFunc
	errType        ErrorTypeFunc
	serverAddr     ServerAddressFunc
	headers        []string
	fallbackRoute  string
	clock          clock.Clock
	logger         logrus.FieldLogger

	inst  *instruments
	spans *spanManager
}

// Option configures the middleware returned by New.
type Option func(*Telemetry)

// WithProvider routes metrics into p. Without this option metrics are
// discarded.
func WithProvider(p xmetrics.Provider) Option {
	return func(t *Telemetry) {
		t.provider = p
	}
}

// WithTracerProvider enables tracing through tp. Without this option no
// spans are created.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(t *Telemetry) {
		t.tracerProvider = tp
	}
}

// WithPropagator sets the propagator used to continue trace context from
// incoming request headers. The default handles W3C Trace Context and
// Baggage.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(t *Telemetry) {
		t.propagator = p
	}
}

// WithServiceName scopes emitted telemetry under name instead of this
// package's import path.
func WithServiceName(name string) Option {
	return func(t *Telemetry) {
		t.serviceName = name
	}
}

// WithRoute provides a route specification to the middleware.
//
// In order to avoid forcing anyone to use a particular router, this is
// provided as a configuration hook. For chi routers, see ChiRoute.
func WithRoute(fn RouteFunc) Option {
	return func(t *Telemetry) {
		t.route = fn
	}
}

// WithFallbackRoute overrides DefaultFallbackRoute.
func WithFallbackRoute(label string) Option {
	return func(t *Telemetry) {
		t.fallbackRoute = label
	}
}

// WithErrorType provides an optional low-cardinality error type
// specification, consulted before the built-in defaults.
func WithErrorType(fn ErrorTypeFunc) Option {
	return func(t *Telemetry) {
		t.errType = fn
	}
}

// WithHeaders specifies request headers to capture as span attributes,
// named http.request.header.<name>. Headers absent from a request are
// not recorded. Has no effect on metrics.
func WithHeaders(names ...string) Option {
	return func(t *Telemetry) {
		t.headers = append(t.headers, names...)
	}
}

// WithServerAddress overrides how the server.address and server.port
// attributes are derived, e.g. behind a proxy that rewrites Host.
func WithServerAddress(fn ServerAddressFunc) Option {
	return func(t *Telemetry) {
		t.serverAddr = fn
	}
}

// WithClock substitutes the clock used for duration measurement. Intended
// for tests.
func WithClock(c clock.Clock) Option {
	return func(t *Telemetry) {
		t.clock = c
	}
}

// WithLogger enables internal diagnostics, e.g. when a request is
// finalized twice or a route callback panics. Instrumentation stays
// silent without it.
func WithLogger(l logrus.FieldLogger) Option {
	return func(t *Telemetry) {
		t.logger = l
	}
}

func newTelemetry(opts ...Option) *Telemetry {
	t := &Telemetry{
		fallbackRoute: DefaultFallbackRoute,
		serviceName:   defaultScopeName,
		clock:         clock.Default,
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.provider == nil {
		t.provider = discard.New()
	}
	if t.propagator == nil {
		t.propagator = propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{}, propagation.Baggage{},
		)
	}

	t.inst = newInstruments(metricsregistry.New(t.provider))

	tracingEnabled := t.tracerProvider != nil
	if !tracingEnabled {
		t.tracerProvider = noop.NewTracerProvider()
	}
	t.spans = &spanManager{
		tracer:        t.tracerProvider.Tracer(t.serviceName),
		propagator:    t.propagator,
		enabled:       tracingEnabled,
		headers:       t.headers,
		fallbackRoute: t.fallbackRoute,
	}

	return t
}
