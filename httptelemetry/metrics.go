package httptelemetry

import (
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/lumenkit/telemetry/metrics"
)

// record writes one request's sample into the instrument set, tagged with
// the resolved attributes. Each write goes to an independent instrument,
// so concurrent requests never serialize on each other here. Errors from
// the backend are not a concept: a no-op provider simply swallows the
// values.
func (t *Telemetry) record(rec *Record, out outcome, attrs []attribute.KeyValue, now time.Time) {
	lvs := labelPairs(attrs)

	t.inst.requests.With(lvs...).Add(1)
	metrics.ObserveSeconds(t.inst.duration.With(lvs...), rec.start, now)

	if rec.requestLen > 0 {
		t.inst.requestSize.With(lvs...).Observe(float64(rec.requestLen))
	}
	if out.kind == outcomeResponse {
		t.inst.responseSize.With(lvs...).Observe(float64(out.responseLen))
	}

	// Mirrors the Add(1) at request entry. The gauge is unlabeled so the
	// two writes always hit the same accumulator and the net value over
	// any quiesced window is zero.
	t.inst.active.Add(-1)
}
