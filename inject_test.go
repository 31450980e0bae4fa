package drift

import "testing"

func TestInjectTap(t *testing.T) {
	installStub(t)
	c := newTestCoordinator()
	c.Tree.Insert(Entity{ID: 3, Bounds: Rect{100, 100, 50, 50}})
	a := NewInputAdapter(c)

	var selected []Selection
	c.OnSelect = func(s Selection) { selected = append(selected, s) }

	a.InjectTap(110, 110)
	if a.InjectPending() != 2 {
		t.Fatalf("InjectPending = %d, want 2", a.InjectPending())
	}

	// Frame 1: press.
	a.Poll(16)
	if a.InjectPending() != 1 {
		t.Fatalf("InjectPending after frame 1 = %d, want 1", a.InjectPending())
	}
	if c.Machine.State() != GestureTapping {
		t.Fatal("press frame did not start a tap")
	}

	// Frame 2: release resolves the tap.
	a.Poll(16)
	if a.InjectPending() != 0 {
		t.Fatalf("InjectPending after frame 2 = %d, want 0", a.InjectPending())
	}
	c.Chan.Drain(0)
	if len(selected) != 1 || selected[0].Entity != 3 {
		t.Errorf("selections = %+v, want entity 3", selected)
	}
}

func TestInjectDrag(t *testing.T) {
	installStub(t)
	c := newTestCoordinator()
	a := NewInputAdapter(c)

	// Drag from (400,300) to (300,300) over 5 frames:
	// frame 1: press at (400,300)
	// frames 2-4: moves at x = 375, 350, 325
	// frame 5: release at (300,300)
	a.InjectDrag(400, 300, 300, 300, 5)
	if a.InjectPending() != 5 {
		t.Fatalf("InjectPending = %d, want 5", a.InjectPending())
	}
	for i := 0; i < 5; i++ {
		a.Poll(16)
	}
	if a.InjectPending() != 0 {
		t.Fatalf("InjectPending after drain = %d, want 0", a.InjectPending())
	}
	if got := c.Camera.X; got != -100 {
		t.Errorf("camera X = %v, want -100", got)
	}
}

func TestInjectDragMinFrames(t *testing.T) {
	installStub(t)
	a := NewInputAdapter(newTestCoordinator())
	a.InjectDrag(0, 0, 100, 100, 1) // clamps to press + release
	if a.InjectPending() != 2 {
		t.Errorf("InjectPending = %d, want 2 (clamped)", a.InjectPending())
	}
}

func TestInjectQueueOrder(t *testing.T) {
	a := NewInputAdapter(newTestCoordinator())

	a.InjectPress(10, 20)
	a.InjectMove(30, 40)
	a.InjectRelease(50, 60)

	if len(a.injectQueue) != 3 {
		t.Fatalf("queued frames = %d, want 3", len(a.injectQueue))
	}
	if p := a.injectQueue[0][0]; !p.pressed || p.pos != (Vec2{10, 20}) {
		t.Errorf("frame 0 = %+v, want press at (10,20)", p)
	}
	if p := a.injectQueue[1][0]; !p.pressed || p.pos != (Vec2{30, 40}) {
		t.Errorf("frame 1 = %+v, want move at (30,40)", p)
	}
	if p := a.injectQueue[2][0]; p.pressed || p.pos != (Vec2{50, 60}) {
		t.Errorf("frame 2 = %+v, want release at (50,60)", p)
	}
}

func TestInjectPinch(t *testing.T) {
	installStub(t)
	c := newTestCoordinator()
	a := NewInputAdapter(c)

	// Both fingers land on one frame, spread together, and lift together.
	a.InjectPinch(400, 300, 200, 400, 6)
	if a.InjectPending() != 6 {
		t.Fatalf("InjectPending = %d, want 6", a.InjectPending())
	}
	a.Poll(16)
	if c.Machine.State() != GesturePinching {
		t.Fatalf("state after landing frame = %v, want pinching", c.Machine.State())
	}
	for i := 0; i < 5; i++ {
		a.Poll(16)
	}

	// The release frame carries lifted fingers, so the last applied spread
	// is the final move's: fromDist + (toDist-fromDist)*4/5.
	wantScale := (200 + (400-200)*4.0/5.0) / 200
	if got := c.Camera.Scale; !approxEqual(got, wantScale, 1e-9) {
		t.Errorf("scale = %v, want %v", got, wantScale)
	}
	sx, sy := c.Camera.WorldToScreen(400, 300)
	if !approxEqual(sx, 400, 1e-9) || !approxEqual(sy, 300, 1e-9) {
		t.Errorf("pinch center drifted to (%v, %v)", sx, sy)
	}
	if c.Machine.State() != GestureIdle {
		t.Errorf("state after pinch lift = %v, want idle", c.Machine.State())
	}
}

func TestInjectTouchSlots(t *testing.T) {
	installStub(t)
	c := newTestCoordinator()
	a := NewInputAdapter(c)

	a.InjectTouchPress(1, 200, 200)
	a.Poll(16)
	if a.downCount() != 1 {
		t.Fatalf("downCount = %d, want 1", a.downCount())
	}
	a.InjectTouchRelease(1, 200, 200)
	a.Poll(16)
	if a.downCount() != 0 {
		t.Errorf("downCount = %d, want 0 after release", a.downCount())
	}
}

func TestInjectSkipsPlatformInput(t *testing.T) {
	s := installStub(t)
	a := NewInputAdapter(newTestCoordinator())

	// Real input says (50,50) pressed; the injected frame wins.
	s.cx, s.cy, s.pressed = 50, 50, true
	a.InjectPress(400, 300)
	a.Poll(16)

	if got := a.pointers[0].last; got != (Vec2{400, 300}) {
		t.Errorf("pointer 0 at %v, want injected (400,300)", got)
	}
}

func TestProcessInjectedEmptyQueue(t *testing.T) {
	a := NewInputAdapter(newTestCoordinator())
	if a.processInjected() {
		t.Error("processInjected consumed from an empty queue")
	}
}
