package metrics

import (
	"time"

	kitmetrics "github.com/go-kit/kit/metrics"
)

// MeasureSince takes a Histogram and an initial time and observes the
// elapsed duration, in seconds, since that time. It's intended to be
// called via defer, e.g. defer MeasureSince(h, time.Now()).
func MeasureSince(h kitmetrics.Histogram, t0 time.Time) {
	ObserveSeconds(h, t0, time.Now())
}

// ObserveSeconds observes t1 - t0 into h as fractional seconds.
// Negative intervals, which can occur when the wall clock steps backwards
// between the two samples, are clamped to zero.
func ObserveSeconds(h kitmetrics.Histogram, t0, t1 time.Time) {
	d := t1.Sub(t0)
	if d < 0 {
		d = 0
	}
	h.Observe(d.Seconds())
}
