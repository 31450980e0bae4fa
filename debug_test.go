package drift

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestDebugTracer_Transitions(t *testing.T) {
	c := newTestCoordinator()
	var buf bytes.Buffer
	NewDebugTracer(&buf).Attach(c)

	c.Begin(GestureEvent{Kind: KindPan, Time: 0, Position: Vec2{X: 400, Y: 300}, PointerCount: 1})
	c.End(GestureEvent{Kind: KindPan, Time: 16, Position: Vec2{X: 400, Y: 300}})

	out := buf.String()
	if !strings.Contains(out, "idle -> panning | t=0.0ms | pointers=1") {
		t.Errorf("missing begin line in:\n%s", out)
	}
	if !strings.Contains(out, "panning -> idle") {
		t.Errorf("missing end line in:\n%s", out)
	}
}

func TestDebugTracer_FaultLine(t *testing.T) {
	c := newTestCoordinator()
	var buf bytes.Buffer
	tracer := NewDebugTracer(&buf)

	tracer.Scan(c, nil)
	if buf.Len() != 0 {
		t.Fatalf("clean coordinator produced output: %q", buf.String())
	}

	// A tap beginning mid-pan is an illegal transition.
	c.Begin(GestureEvent{Kind: KindPan, Time: 0, Position: Vec2{X: 400, Y: 300}, PointerCount: 1})
	c.Begin(GestureEvent{Kind: KindTap, Time: 10, Position: Vec2{X: 100, Y: 100}, PointerCount: 1})

	tracer.Scan(c, nil)
	out := buf.String()
	if !strings.Contains(out, "faults: illegal=1 parse=0 stale=0 dropped=0") {
		t.Errorf("missing fault line in:\n%s", out)
	}

	// Unchanged counters stay quiet.
	before := buf.Len()
	tracer.Scan(c, nil)
	if buf.Len() != before {
		t.Errorf("unchanged faults produced output: %q", buf.String()[before:])
	}
}

func TestDebugTracer_QueueWarning(t *testing.T) {
	c := newTestCoordinator()
	var buf bytes.Buffer
	tracer := NewDebugTracer(&buf)

	fill := int(debugQueueWarnFraction*float64(c.Chan.Cap())) + 1
	for i := 0; i < fill; i++ {
		c.Chan.Dispatch(func() {})
	}

	tracer.Scan(c, nil)
	if n := strings.Count(buf.String(), "dispatch queue"); n != 1 {
		t.Fatalf("expected 1 queue warning, got %d:\n%s", n, buf.String())
	}

	// Latched while the pressure lasts.
	tracer.Scan(c, nil)
	if n := strings.Count(buf.String(), "dispatch queue"); n != 1 {
		t.Errorf("warning repeated while latched: %d", n)
	}

	// Draining re-arms it.
	c.Chan.Drain(0)
	tracer.Scan(c, nil)
	for i := 0; i < fill; i++ {
		c.Chan.Dispatch(func() {})
	}
	tracer.Scan(c, nil)
	if n := strings.Count(buf.String(), "dispatch queue"); n != 2 {
		t.Errorf("expected 2 queue warnings after refill, got %d", n)
	}
}

func TestDebugTracer_SlowFrames(t *testing.T) {
	c := newTestCoordinator()
	var buf bytes.Buffer
	tracer := NewDebugTracer(&buf)

	var clock FrameClock
	clock.note(25)
	clock.note(25)

	tracer.Scan(c, &clock)
	out := buf.String()
	if !strings.Contains(out, "2 slow frames") {
		t.Errorf("missing slow-frame line in:\n%s", out)
	}
	if !strings.Contains(out, "avg 40.0 fps") {
		t.Errorf("missing fps in:\n%s", out)
	}

	before := buf.Len()
	tracer.Scan(c, &clock)
	if buf.Len() != before {
		t.Errorf("unchanged slow count produced output: %q", buf.String()[before:])
	}
}

func TestDebugTracer_DumpHistory(t *testing.T) {
	c := newTestCoordinator()
	var buf bytes.Buffer
	tracer := NewDebugTracer(&buf)

	tracer.DumpHistory(c)
	if buf.Len() != 0 {
		t.Fatalf("empty history produced output: %q", buf.String())
	}

	c.Begin(GestureEvent{Kind: KindPan, Time: 0, Position: Vec2{X: 400, Y: 300}, PointerCount: 1})
	c.Begin(GestureEvent{Kind: KindTap, Time: 10, Position: Vec2{X: 400, Y: 300}, PointerCount: 1})
	c.End(GestureEvent{Kind: KindPan, Time: 16, Position: Vec2{X: 400, Y: 300}})

	tracer.DumpHistory(c)
	out := buf.String()
	if !strings.Contains(out, "history (3, 1 denied)") {
		t.Errorf("wrong history header in:\n%s", out)
	}
	if !strings.Contains(out, "idle->panning, panning->tapping!, panning->idle") {
		t.Errorf("wrong history body in:\n%s", out)
	}
}

func TestDebugTracer_NilWriterDefaultsToStderr(t *testing.T) {
	tracer := NewDebugTracer(nil)
	if tracer.w != os.Stderr {
		t.Error("nil writer should default to stderr")
	}
}
