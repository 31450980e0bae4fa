package drift

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Constants ---

const (
	maxPointers = 10 // pointer 0 = mouse, 1-9 = touch

	// WheelZoomFactor is the zoom step for one wheel notch.
	WheelZoomFactor = 1.1
)

// --- Platform hooks ---

// Platform input functions are variables so headless tests and tools can
// stub them out.
var (
	cursorPosition = ebiten.CursorPosition
	mousePressed   = func() bool { return ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) }
	wheelDelta     = ebiten.Wheel
	appendTouchIDs = ebiten.AppendTouchIDs
	touchPosition  = ebiten.TouchPosition
)

// SetInputForTest overrides the platform input functions. Pass nil to leave
// a hook unchanged. Tests drive a full adapter headlessly this way.
func SetInputForTest(
	cursor func() (int, int),
	pressed func() bool,
	wheel func() (float64, float64),
	touches func([]ebiten.TouchID) []ebiten.TouchID,
	touchPos func(ebiten.TouchID) (int, int),
) {
	if cursor != nil {
		cursorPosition = cursor
	}
	if pressed != nil {
		mousePressed = pressed
	}
	if wheel != nil {
		wheelDelta = wheel
	}
	if touches != nil {
		appendTouchIDs = touches
	}
	if touchPos != nil {
		touchPosition = touchPos
	}
}

// --- Per-pointer state ---

type inputPointer struct {
	down  bool
	start Vec2
	last  Vec2
}

type inputPinch struct {
	active      bool
	initialDist float64
	lastFocal   Vec2
}

// InputAdapter polls the platform once per frame and translates raw pointer
// state into gesture events for a Coordinator: presses begin taps, movement
// past the tap tolerance becomes a pan, a second touch becomes a pinch, and
// the mouse wheel zooms about the cursor.
type InputAdapter struct {
	Coord *Coordinator

	pointers  [maxPointers]inputPointer
	touchIDs  []ebiten.TouchID
	touchMap  [maxPointers]ebiten.TouchID
	touchUsed [maxPointers]bool

	pinch   inputPinch
	clockMs float64

	injectQueue [][]syntheticPointer
}

// NewInputAdapter returns an adapter driving coord.
func NewInputAdapter(coord *Coordinator) *InputAdapter {
	return &InputAdapter{Coord: coord}
}

// Poll reads the platform input and drives the coordinator. Call once per
// frame from the real-time context, before Coordinator.Tick, with the frame
// delta in milliseconds.
func (a *InputAdapter) Poll(dtMs float64) {
	a.clockMs += dtMs

	if !a.processInjected() {
		a.pollMouse()
		a.pollTouches()
	}
	a.detectPinch()
	a.pollWheel()
}

// NowMs returns the adapter's accumulated clock.
func (a *InputAdapter) NowMs() float64 {
	return a.clockMs
}

// --- Polling ---

func (a *InputAdapter) pollMouse() {
	mx, my := cursorPosition()
	a.processPointer(0, Vec2{float64(mx), float64(my)}, mousePressed())
}

func (a *InputAdapter) pollTouches() {
	a.touchIDs = appendTouchIDs(a.touchIDs[:0])

	var activeSlots [maxPointers]bool
	for _, tid := range a.touchIDs {
		slot := a.touchSlot(tid)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true
		tx, ty := touchPosition(tid)
		a.processPointer(slot, Vec2{float64(tx), float64(ty)}, true)
	}

	// Release slots whose touch vanished this frame.
	for i := 1; i < maxPointers; i++ {
		if a.touchUsed[i] && !activeSlots[i] {
			if a.pointers[i].down {
				a.processPointer(i, a.pointers[i].last, false)
			}
			a.touchUsed[i] = false
			a.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9). Returns the
// existing slot or allocates a new one. Returns -1 if full.
func (a *InputAdapter) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if a.touchUsed[i] && a.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !a.touchUsed[i] {
			a.touchUsed[i] = true
			a.touchMap[i] = tid
			return i
		}
	}
	return -1
}

func (a *InputAdapter) pollWheel() {
	_, wy := wheelDelta()
	if wy == 0 {
		return
	}
	mx, my := cursorPosition()
	a.Coord.Wheel(Vec2{float64(mx), float64(my)}, math.Pow(WheelZoomFactor, wy))
}

// --- Pointer state machine ---

func (a *InputAdapter) processPointer(slot int, pos Vec2, pressed bool) {
	ps := &a.pointers[slot]
	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.start = pos
		ps.last = pos
		a.pointerPressed(slot, pos)
	case !pressed && ps.down:
		// A release that moved since the last sample delivers the movement
		// first, so the gesture ends at the release position.
		if pos != ps.last {
			ps.last = pos
			a.pointerMoved(slot, pos)
		}
		ps.down = false
		a.pointerReleased(slot, pos)
	case pressed && ps.down && pos != ps.last:
		ps.last = pos
		a.pointerMoved(slot, pos)
	}
}

func (a *InputAdapter) pointerPressed(slot int, pos Vec2) {
	switch count := a.downCount(); count {
	case 1:
		a.Coord.Begin(GestureEvent{
			Kind: KindTap, Time: a.clockMs, Position: pos, PointerCount: 1,
		})
	case 2:
		// detectPinch begins the pinch once both pointers are visible.
	default:
		// Extra fingers never become gestures, but the palm heuristics
		// still observe them.
		a.Coord.Palm.Check(Contact{PointerCount: count, TimeMs: a.clockMs})
	}
}

func (a *InputAdapter) pointerMoved(slot int, pos Vec2) {
	if a.pinch.active || a.downCount() != 1 {
		return
	}
	ps := &a.pointers[slot]
	a.Coord.Update(GestureEvent{
		Kind:         KindPan,
		Time:         a.clockMs,
		Position:     pos,
		Translation:  pos.Sub(ps.start),
		PointerCount: 1,
	})
}

func (a *InputAdapter) pointerReleased(slot int, pos Vec2) {
	if a.pinch.active {
		// detectPinch ends the pinch when the pair breaks.
		return
	}
	if a.downCount() == 0 {
		a.Coord.End(GestureEvent{
			Kind: KindPan, Time: a.clockMs, Position: pos, PointerCount: 0,
		})
	}
}

func (a *InputAdapter) downCount() int {
	n := 0
	for i := range a.pointers {
		if a.pointers[i].down {
			n++
		}
	}
	return n
}

// --- Pinch detection ---

// detectPinch tracks the first two active touch pointers and feeds focal
// point and cumulative scale to the coordinator. The mouse never pinches;
// wheel zoom covers desktop.
func (a *InputAdapter) detectPinch() {
	p0, p1, count := a.touchPair()
	if count >= 2 {
		f0 := a.pointers[p0].last
		f1 := a.pointers[p1].last
		focal := Vec2{(f0.X + f1.X) / 2, (f0.Y + f1.Y) / 2}
		dist := math.Hypot(f1.X-f0.X, f1.Y-f0.Y)

		if !a.pinch.active {
			a.pinch.active = true
			a.pinch.initialDist = dist
			a.pinch.lastFocal = focal
			a.Coord.Begin(GestureEvent{
				Kind: KindPinch, Time: a.clockMs, Position: focal,
				Focal: focal, ScaleDelta: 1, PointerCount: count,
			})
			return
		}
		scale := 1.0
		if a.pinch.initialDist > 0 {
			scale = dist / a.pinch.initialDist
		}
		a.pinch.lastFocal = focal
		a.Coord.Update(GestureEvent{
			Kind: KindPinch, Time: a.clockMs, Position: focal,
			Focal: focal, ScaleDelta: scale, PointerCount: count,
		})
		return
	}

	if a.pinch.active {
		a.pinch.active = false
		pos := a.pinch.lastFocal
		if count == 1 {
			// Hand the surviving pointer to the coordinator as a fresh pan.
			ps := &a.pointers[p0]
			ps.start = ps.last
			pos = ps.last
		}
		a.Coord.End(GestureEvent{
			Kind: KindPinch, Time: a.clockMs, Position: pos, PointerCount: count,
		})
	}
}

// touchPair returns the first two down touch slots and how many touch
// pointers are down in total.
func (a *InputAdapter) touchPair() (p0, p1, count int) {
	p0, p1 = -1, -1
	for i := 1; i < maxPointers; i++ {
		if !a.pointers[i].down {
			continue
		}
		switch count {
		case 0:
			p0 = i
		case 1:
			p1 = i
		}
		count++
	}
	return p0, p1, count
}
