package drift

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// DebugTracer streams one-line diagnostics for a coordinator: every state
// transition, fault-counter changes, dispatch-queue pressure, and slow-frame
// counts. Intended for development builds; attach once, then call Scan once
// per frame from the real-time loop.
type DebugTracer struct {
	w io.Writer

	lastFaults FaultStats
	lastSlow   int
	warnedFill bool
}

// NewDebugTracer returns a tracer writing to w. A nil w means os.Stderr.
func NewDebugTracer(w io.Writer) *DebugTracer {
	if w == nil {
		w = os.Stderr
	}
	return &DebugTracer{w: w}
}

// Attach hooks the machine's transition callback. Lines are written on the
// goroutine that commits the transition.
func (d *DebugTracer) Attach(c *Coordinator) {
	c.Machine.OnTransition = func(from, to GestureState, ev TransitionEvent) {
		_, _ = fmt.Fprintf(d.w, "[drift] %s -> %s | t=%.1fms | pointers=%d\n",
			from, to, ev.TimeMs, ev.PointerCount)
	}
}

// Scan emits lines for anything that changed since the previous call: fault
// counters, dispatch-queue pressure, and slow frames from clock when one is
// given.
func (d *DebugTracer) Scan(c *Coordinator, clock *FrameClock) {
	if f := c.Faults(); f != d.lastFaults {
		_, _ = fmt.Fprintf(d.w, "[drift] faults: illegal=%d parse=%d stale=%d dropped=%d\n",
			f.IllegalTransitions, f.ParseRecoveries, f.StaleReferences, f.DroppedDispatches)
		d.lastFaults = f
	}
	d.checkQueue(c.Chan)
	if clock != nil {
		if slow := clock.SlowFrames(); slow > d.lastSlow {
			_, _ = fmt.Fprintf(d.w, "[drift] warning: %d slow frames (avg %.1f fps)\n",
				slow, clock.AverageFPS())
			d.lastSlow = slow
		}
	}
}

// debugQueueWarnFraction is the dispatch-queue fill ratio above which Scan
// warns. One warning per episode of pressure; draining re-arms it.
const debugQueueWarnFraction = 0.8

func (d *DebugTracer) checkQueue(ch *Channel) {
	fill, capacity := ch.Len(), ch.Cap()
	over := float64(fill) >= debugQueueWarnFraction*float64(capacity)
	if over && !d.warnedFill {
		_, _ = fmt.Fprintf(d.w, "[drift] warning: dispatch queue %d/%d\n", fill, capacity)
	}
	d.warnedFill = over
}

// DumpHistory writes the machine's recent transition history on one line,
// oldest first. Denied requests are marked with a trailing "!".
func (d *DebugTracer) DumpHistory(c *Coordinator) {
	recs := c.Machine.History(nil)
	if len(recs) == 0 {
		return
	}
	var b strings.Builder
	for i, r := range recs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(formatRecord(r))
	}
	_, _ = fmt.Fprintf(d.w, "[drift] history (%d, %d denied): %s\n",
		len(recs), countDenied(recs), b.String())
}

// countDenied counts rejected requests in a history slice.
func countDenied(recs []TransitionRecord) int {
	n := 0
	for _, r := range recs {
		if !r.Allowed {
			n++
		}
	}
	return n
}

func formatRecord(r TransitionRecord) string {
	if r.Allowed {
		return fmt.Sprintf("%s->%s", r.From, r.To)
	}
	return fmt.Sprintf("%s->%s!", r.From, r.To)
}
