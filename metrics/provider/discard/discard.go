// Package discard provides a metrics provider whose instruments accept
// and drop every value. Instrumented code runs unchanged against it, which
// makes it the backend of choice when telemetry is disabled.
package discard

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"

	xmetrics "github.com/lumenkit/telemetry/metrics"
)

type discardProvider struct{}

var _ xmetrics.Provider = &discardProvider{}

// New returns a provider that produces no-op metrics via the
// discarding backend.
func New() xmetrics.Provider { return discardProvider{} }

// NewCounter implements Provider.
func (discardProvider) NewCounter(string) metrics.Counter { return discard.NewCounter() }

// NewGauge implements Provider.
func (discardProvider) NewGauge(string) metrics.Gauge { return discard.NewGauge() }

// NewHistogram implements Provider.
func (discardProvider) NewHistogram(string, int) metrics.Histogram { return discard.NewHistogram() }

// Stop implements Provider.
func (discardProvider) Stop() {}
