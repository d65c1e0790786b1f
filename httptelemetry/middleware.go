package httptelemetry

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
)

// New returns an HTTP middleware which instruments every request passing
// through it. With no options it records metrics into a discarding backend
// and opens no spans; see the Option constructors for wiring real sinks.
func New(opts ...Option) func(http.Handler) http.Handler {
	t := newTelemetry(opts...)
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			t.handle(w, r, next)
		}
		return http.HandlerFunc(fn)
	}
}

// handle runs one request through capture, the handler chain, and
// finalization.
func (t *Telemetry) handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	rec := t.begin(r)

	ctx, span := t.spans.start(r, rec)
	t.spans.annotate(span, t.spans.headerAttributes(r)...)
	r = r.WithContext(ctx)

	ww, ok := w.(middleware.WrapResponseWriter)
	if !ok {
		ww = middleware.NewWrapResponseWriter(w, r.ProtoMajor)
	}

	g := &guard{
		fn: func(out outcome) {
			attrs := t.resolve(r, rec, out)
			t.record(rec, out, attrs, t.clock.Now())
			t.spans.end(span, rec, out, attrs)
		},
		onDuplicate: func() {
			if t.logger != nil {
				t.logger.Warn("request finalized more than once")
			}
		},
	}

	defer func() {
		if p := recover(); p != nil {
			g.finish(outcome{
				kind:   outcomeError,
				status: ww.Status(),
				err:    errors.Errorf("handler panic: %v", p),
			})
			panic(p)
		}

		if ww.Status() == 0 && ww.BytesWritten() == 0 && r.Context().Err() != nil {
			g.finish(outcome{kind: outcomeCancelled, err: r.Context().Err()})
			return
		}

		st := ww.Status()
		if st == 0 {
			// Assume no Write or WriteHeader means OK.
			st = http.StatusOK
		}
		g.finish(outcome{
			kind:        outcomeResponse,
			status:      st,
			responseLen: int64(ww.BytesWritten()),
		})
	}()

	next.ServeHTTP(ww, r)
}

// begin captures the entry-time request facts and marks the request in
// flight. It allocates the record, stamps the start time, and bumps the
// active-requests gauge; nothing here blocks.
func (t *Telemetry) begin(r *http.Request) *Record {
	rec := newRecord(t.clock.Now(), r)
	if t.serverAddr != nil {
		if host, port, ok := t.serverAddr(r); ok {
			rec.srvHost, rec.srvPort, rec.srvSet = host, port, true
		}
	}
	t.inst.active.Add(1)
	return rec
}
