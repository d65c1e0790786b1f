// Package metrics is largely a wrapper around the standard go-kit
// Provider type. It is duplicated here rather than imported for 2 reasons:
//
//  1. A little copying never hurt anyone (and in copying, we avoid the
//     need to import and vendor all of go-kit's supported providers)
//  2. It provides us an extension mechanism for our own custom metric
//     types that we can implement without go-kit's approval.
//
// Implementations of Provider are the injection point for a telemetry
// backend: the instrumentation packages in this repo only ever talk to
// these interfaces, which makes them testable against the fake provider
// in the testmetrics package and inert against the discard provider.
package metrics

import (
	"github.com/go-kit/kit/metrics"
)

// Provider represents the different types of metrics that a provider
// can expose.
type Provider interface {
	NewCounter(name string) metrics.Counter
	NewGauge(name string) metrics.Gauge
	NewHistogram(name string, buckets int) metrics.Histogram
	Stop()
}
