package drift

// syntheticPointer is a single injected pointer sample. Samples are queued
// in frame batches so multi-touch gestures stay in lockstep; each Poll
// consumes one batch in place of real platform input.
type syntheticPointer struct {
	slot    int
	pos     Vec2
	pressed bool
}

// InjectPress queues a pointer press at the given screen coordinates
// (pointer 0). The event is consumed on the next Poll.
func (a *InputAdapter) InjectPress(x, y float64) {
	a.injectFrame(syntheticPointer{slot: 0, pos: Vec2{x, y}, pressed: true})
}

// InjectMove queues a pointer move with the button held down. Use between
// InjectPress and InjectRelease to simulate a drag.
func (a *InputAdapter) InjectMove(x, y float64) {
	a.injectFrame(syntheticPointer{slot: 0, pos: Vec2{x, y}, pressed: true})
}

// InjectRelease queues a pointer release at the given screen coordinates.
func (a *InputAdapter) InjectRelease(x, y float64) {
	a.injectFrame(syntheticPointer{slot: 0, pos: Vec2{x, y}, pressed: false})
}

// InjectTap queues a press followed by a release at the same screen
// coordinates. Consumes two frames.
func (a *InputAdapter) InjectTap(x, y float64) {
	a.InjectPress(x, y)
	a.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY), linearly
// interpolated moves over frames-2 intermediate frames, and release at
// (toX, toY). The total sequence consumes frames frames. Minimum is 2.
func (a *InputAdapter) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	a.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		a.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	a.InjectRelease(toX, toY)
}

// InjectTouchPress queues a touch press on the given slot (1-9).
func (a *InputAdapter) InjectTouchPress(slot int, x, y float64) {
	a.injectFrame(syntheticPointer{slot: slot, pos: Vec2{x, y}, pressed: true})
}

// InjectTouchRelease queues a touch release on the given slot.
func (a *InputAdapter) InjectTouchRelease(slot int, x, y float64) {
	a.injectFrame(syntheticPointer{slot: slot, pos: Vec2{x, y}, pressed: false})
}

// InjectPinch queues a symmetric two-finger pinch about center, spreading
// from fromDist to toDist apart along the x axis over the given number of
// frames. Both fingers land on one frame, move together, and lift together.
func (a *InputAdapter) InjectPinch(centerX, centerY, fromDist, toDist float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	pair := func(dist float64, pressed bool) []syntheticPointer {
		half := dist / 2
		return []syntheticPointer{
			{slot: 1, pos: Vec2{centerX - half, centerY}, pressed: pressed},
			{slot: 2, pos: Vec2{centerX + half, centerY}, pressed: pressed},
		}
	}
	a.injectQueue = append(a.injectQueue, pair(fromDist, true))
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		a.injectQueue = append(a.injectQueue, pair(fromDist+(toDist-fromDist)*t, true))
	}
	a.injectQueue = append(a.injectQueue, pair(toDist, false))
}

// InjectPending returns how many injected frames are waiting.
func (a *InputAdapter) InjectPending() int {
	return len(a.injectQueue)
}

func (a *InputAdapter) injectFrame(events ...syntheticPointer) {
	a.injectQueue = append(a.injectQueue, events)
}

// processInjected pops one frame batch from the inject queue and feeds it
// through the pointer state machine. Returns true if a batch was consumed;
// real platform input is skipped for that frame.
func (a *InputAdapter) processInjected() bool {
	if len(a.injectQueue) == 0 {
		return false
	}
	batch := a.injectQueue[0]
	copy(a.injectQueue, a.injectQueue[1:])
	a.injectQueue = a.injectQueue[:len(a.injectQueue)-1]

	for _, evt := range batch {
		if evt.slot < 0 || evt.slot >= maxPointers {
			continue
		}
		a.processPointer(evt.slot, evt.pos, evt.pressed)
	}
	return true
}
