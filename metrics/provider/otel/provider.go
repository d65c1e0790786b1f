package otel

import (
	"context"
	"math"
	"sync"
	"sync/atomic"

	kitmetrics "github.com/go-kit/kit/metrics"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.25.0"

	xmetrics "github.com/lumenkit/telemetry/metrics"
)

var (
	_ kitmetrics.Counter   = (*Counter)(nil)
	_ kitmetrics.Gauge     = (*Gauge)(nil)
	_ kitmetrics.Histogram = (*Histogram)(nil)
)

// Provider implements metrics.Provider on top of an OpenTelemetry Meter.
// Instruments are deduplicated by name and label set, so repeated
// NewCounter / With calls hand back the same accumulator.
type Provider struct {
	ctx   context.Context
	meter metric.Meter

	// non-nil only when the provider owns the SDK meter provider and is
	// responsible for shutting it down.
	sdk *sdkmetric.MeterProvider

	cfg config

	mu         sync.Mutex
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
}

// New returns a Provider backed by a dedicated OTel SDK meter provider
// pushing OTLP over gRPC. The serviceName scopes the emitted telemetry via
// the service.name resource attribute.
func New(ctx context.Context, serviceName string, opts ...Option) (xmetrics.Provider, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, errors.Wrap(err, "failed to apply options")
		}
	}

	expOpts := []otlpmetricgrpc.Option{}
	if cfg.endpoint != "" {
		expOpts = append(expOpts, otlpmetricgrpc.WithEndpoint(cfg.endpoint))
	}
	if cfg.insecure {
		expOpts = append(expOpts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, expOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create otlp exporter")
	}

	attrs := append([]attribute.KeyValue{semconv.ServiceName(serviceName)}, cfg.attributes...)
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(attrs...))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build resource")
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(cfg.collectPeriod))),
	)

	p := newProvider(ctx, mp.Meter(serviceName), cfg)
	p.sdk = mp
	return p, nil
}

// NewFromMeter returns a Provider recording through an existing Meter.
// The caller retains ownership of the underlying meter provider; Stop is
// a no-op.
func NewFromMeter(meter metric.Meter) xmetrics.Provider {
	return newProvider(context.Background(), meter, defaultConfig())
}

func newProvider(ctx context.Context, meter metric.Meter, cfg config) *Provider {
	return &Provider{
		ctx:        ctx,
		meter:      meter,
		cfg:        cfg,
		counters:   make(map[string]*Counter),
		gauges:     make(map[string]*Gauge),
		histograms: make(map[string]*Histogram),
	}
}

// Stop flushes outstanding telemetry and shuts down the owned meter
// provider, if any.
func (p *Provider) Stop() {
	if p.sdk == nil {
		return
	}
	if err := p.sdk.Shutdown(p.ctx); err != nil && p.cfg.errorHandler != nil {
		p.cfg.errorHandler(err)
	}
}

// NewCounter creates a monotonic float64 counter.
func (p *Provider) NewCounter(name string) kitmetrics.Counter {
	return p.newCounter(name)
}

func (p *Provider) newCounter(name string, labelValues ...string) *Counter {
	p.mu.Lock()
	defer p.mu.Unlock()

	k := keyFor(name, labelValues)
	if c, ok := p.counters[k]; ok {
		return c
	}

	inst, err := p.meter.Float64Counter(name)
	if err != nil {
		p.handleErr(err)
	}
	c := &Counter{
		p:     p,
		name:  name,
		inst:  inst,
		attrs: pairsToAttributes(labelValues),
	}
	p.counters[k] = c
	return c
}

// NewGauge creates a gauge backed by an observable instrument; the last
// value written by Set/Add is observed at each collection.
func (p *Provider) NewGauge(name string) kitmetrics.Gauge {
	return p.newGauge(name)
}

func (p *Provider) newGauge(name string, labelValues ...string) *Gauge {
	p.mu.Lock()
	defer p.mu.Unlock()

	k := keyFor(name, labelValues)
	if g, ok := p.gauges[k]; ok {
		return g
	}

	g := &Gauge{
		p:     p,
		name:  name,
		attrs: pairsToAttributes(labelValues),
	}

	_, err := p.meter.Float64ObservableGauge(name,
		metric.WithFloat64Callback(func(_ context.Context, o metric.Float64Observer) error {
			o.Observe(g.value(), metric.WithAttributes(g.attrs...))
			return nil
		}),
	)
	if err != nil {
		p.handleErr(err)
	}
	p.gauges[k] = g
	return g
}

// NewHistogram creates a float64 histogram. The buckets argument is
// ignored; aggregation boundaries belong to the SDK's views.
func (p *Provider) NewHistogram(name string, _ int) kitmetrics.Histogram {
	return p.newHistogram(name)
}

func (p *Provider) newHistogram(name string, labelValues ...string) *Histogram {
	p.mu.Lock()
	defer p.mu.Unlock()

	k := keyFor(name, labelValues)
	if h, ok := p.histograms[k]; ok {
		return h
	}

	inst, err := p.meter.Float64Histogram(name)
	if err != nil {
		p.handleErr(err)
	}
	h := &Histogram{
		p:     p,
		name:  name,
		inst:  inst,
		attrs: pairsToAttributes(labelValues),
	}
	p.histograms[k] = h
	return h
}

func (p *Provider) handleErr(err error) {
	if err != nil && p.cfg.errorHandler != nil {
		p.cfg.errorHandler(err)
	}
}

// Counter is a monotonic accumulator.
type Counter struct {
	p     *Provider
	name  string
	inst  metric.Float64Counter
	attrs []attribute.KeyValue
}

// With returns a counter with the given label values appended.
func (c *Counter) With(labelValues ...string) kitmetrics.Counter {
	return c.p.newCounter(c.name, append(attributesToPairs(c.attrs), labelValues...)...)
}

// Add increments the counter.
func (c *Counter) Add(delta float64) {
	if c.inst == nil {
		return
	}
	c.inst.Add(c.p.ctx, delta, metric.WithAttributes(c.attrs...))
}

// Gauge holds a value which is reported at each SDK collection.
type Gauge struct {
	p     *Provider
	name  string
	attrs []attribute.KeyValue
	bits  atomic.Uint64
}

// With returns a gauge with the given label values appended.
func (g *Gauge) With(labelValues ...string) kitmetrics.Gauge {
	return g.p.newGauge(g.name, append(attributesToPairs(g.attrs), labelValues...)...)
}

// Set stores the value.
func (g *Gauge) Set(v float64) {
	g.bits.Store(math.Float64bits(v))
}

// Add adjusts the value by delta. The loop resolves racing writers
// without a mutex on the hot path.
func (g *Gauge) Add(delta float64) {
	for {
		old := g.bits.Load()
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if g.bits.CompareAndSwap(old, next) {
			return
		}
	}
}

func (g *Gauge) value() float64 {
	return math.Float64frombits(g.bits.Load())
}

// Histogram records observations into an OTel histogram.
type Histogram struct {
	p     *Provider
	name  string
	inst  metric.Float64Histogram
	attrs []attribute.KeyValue
}

// With returns a histogram with the given label values appended.
func (h *Histogram) With(labelValues ...string) kitmetrics.Histogram {
	return h.p.newHistogram(h.name, append(attributesToPairs(h.attrs), labelValues...)...)
}

// Observe records a single observation.
func (h *Histogram) Observe(v float64) {
	if h.inst == nil {
		return
	}
	h.inst.Record(h.p.ctx, v, metric.WithAttributes(h.attrs...))
}

func keyFor(name string, labelValues []string) string {
	k := name
	for _, lv := range labelValues {
		k += ":" + lv
	}
	return k
}

func pairsToAttributes(labelValues []string) []attribute.KeyValue {
	if len(labelValues)%2 != 0 {
		labelValues = append(labelValues, "unknown")
	}
	attrs := make([]attribute.KeyValue, 0, len(labelValues)/2)
	for i := 0; i < len(labelValues); i += 2 {
		attrs = append(attrs, attribute.String(labelValues[i], labelValues[i+1]))
	}
	return attrs
}

func attributesToPairs(attrs []attribute.KeyValue) []string {
	pairs := make([]string, 0, len(attrs)*2)
	for _, a := range attrs {
		pairs = append(pairs, string(a.Key), a.Value.Emit())
	}
	return pairs
}
