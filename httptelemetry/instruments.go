package httptelemetry

import (
	kitmetrics "github.com/go-kit/kit/metrics"

	"github.com/lumenkit/telemetry/metricsregistry"
)

const (
	// metric names
	requestTotal     = "http.server.request.total"
	requestDuration  = "http.server.request.duration"  // seconds
	requestBodySize  = "http.server.request.body.size" // bytes
	responseBodySize = "http.server.response.body.size"
	activeRequests   = "http.server.active_requests"

	durationBuckets = 50
	sizeBuckets     = 50
)

// instruments is the set of shared accumulators every request reports into.
// It is built once per middleware and read-only afterwards; the individual
// instruments are safe for concurrent recording.
type instruments struct {
	requests     kitmetrics.Counter
	duration     kitmetrics.Histogram
	requestSize  kitmetrics.Histogram
	responseSize kitmetrics.Histogram
	active       kitmetrics.Gauge
}

// newInstruments registers the instrument set through a registry, so
// middlewares sharing a provider also share instruments.
func newInstruments(reg metricsregistry.Registry) *instruments {
	return &instruments{
		requests:     reg.GetOrRegisterCounter(requestTotal),
		duration:     reg.GetOrRegisterHistogram(requestDuration, durationBuckets),
		requestSize:  reg.GetOrRegisterHistogram(requestBodySize, sizeBuckets),
		responseSize: reg.GetOrRegisterHistogram(responseBodySize, sizeBuckets),
		active:       reg.GetOrRegisterGauge(activeRequests),
	}
}
