package httptelemetry

import "sync/atomic"

// guard serializes the finalization of a single request. However a request
// terminates - response written, handler panic, context canceled, or any
// race between those - the first finish call wins and runs the recording
// sequence; every later call is a no-op.
//
// A request moves through created -> in flight -> finalized. Finalized is
// terminal: once the swap succeeds nothing else may write through the
// record.
type guard struct {
	finalized atomic.Bool

	// fn runs the finalization sequence. onDuplicate, if set, is invoked
	// for every suppressed finish call.
	fn          func(outcome)
	onDuplicate func()
}

func (g *guard) finish(out outcome) {
	if !g.finalized.CompareAndSwap(false, true) {
		if g.onDuplicate != nil {
			g.onDuplicate()
		}
		return
	}
	g.fn(out)
}
