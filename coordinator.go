package drift

import (
	"sync/atomic"

	"github.com/tanema/gween/ease"
)

const (
	// DispatchIntervalMs throttles transform dispatches to the logic
	// context. The transform cell itself is updated on every change; only
	// the callback traffic is throttled.
	DispatchIntervalMs = 50.0

	// DoubleTapZoomFactor is the zoom applied when a double tap lands.
	DoubleTapZoomFactor = 2.0

	// FocusDuration is the scroll animation length used by FocusEntity, in
	// seconds.
	FocusDuration float32 = 0.4
)

// GestureKind is the closed set of gesture families the coordinator accepts.
// Every switch over it handles all three and logs anything else.
type GestureKind uint8

const (
	KindTap   GestureKind = iota // single pointer, below drag tolerance
	KindPan                      // single pointer translation
	KindPinch                    // two-pointer focal zoom
)

// String returns the kind name for logs and diagnostics.
func (k GestureKind) String() string {
	switch k {
	case KindTap:
		return "tap"
	case KindPan:
		return "pan"
	case KindPinch:
		return "pinch"
	default:
		return "unknown"
	}
}

// GestureEvent is one observation from the platform's gesture-recognition
// layer. Which fields matter depends on Kind; unused fields stay zero.
type GestureEvent struct {
	Kind GestureKind

	// Time is milliseconds on the platform's monotonic clock.
	Time float64

	// Position is the pointer position in screen space.
	Position Vec2

	// Translation is the cumulative drag translation since the gesture
	// began. Pan only.
	Translation Vec2

	// Velocity is the instantaneous pointer velocity in units/s when the
	// platform provides one; when zero it is derived from Position deltas.
	Velocity Vec2

	// Focal is the current midpoint between the two pinch pointers, in
	// screen space. Pinch only.
	Focal Vec2

	// ScaleDelta is the cumulative scale factor since the pinch began
	// (1 = unchanged). Pinch only.
	ScaleDelta float64

	// PointerCount is the number of pointers down after this event.
	PointerCount int

	// Area and Aspect describe the touch contact for palm rejection.
	// Begin only; zero when the platform cannot measure them.
	Area   float64
	Aspect float64
}

// Selection is the result of a tap: the entity under it, or just the map
// coordinate when nothing was close enough. Entity 0 means no entity.
type Selection struct {
	Entity uint32
	World  Vec2
}

// Coordinator owns the viewport camera and arbitrates every gesture that
// reaches it. Begin, Update, End, and Tick run on the real-time context;
// OnTransform and OnSelect are invoked on the logic context through the
// dispatch channel. The spatial index is owned by the logic context and is
// only touched from dispatched callbacks and logic-side calls.
type Coordinator struct {
	Camera   *Camera
	Machine  *StateMachine
	Momentum *Momentum
	Palm     *PalmFilter
	Tree     *Quadtree
	Hits     *HitTester
	Cull     *Culler
	Chan     *Channel

	// OnTransform receives throttled transform snapshots on the logic
	// context.
	OnTransform func(Transform)

	// OnSelect receives tap selections on the logic context.
	OnSelect func(Selection)

	profile  Profile
	viewport Rect

	baseline   Transform
	startPos   Vec2
	startFocal Vec2
	lastPos    Vec2
	lastTimeMs float64

	transformCell  *JSONCell[Transform]
	nowMs          float64
	lastDispatchMs float64

	// Focus handshake: the logic context writes a target, the real-time
	// context applies it when the sequence number changes. Each cell has
	// exactly one writing context.
	focusSeq  *Cell[int64]
	focusX    *Cell[float64]
	focusY    *Cell[float64]
	seenFocus int64

	staleRefs atomic.Uint64
}

// NewCoordinator wires a coordinator for a viewport over the given world
// region. The default profile applies; call ApplyProfile to tune.
func NewCoordinator(viewport, region Rect) *Coordinator {
	tree := NewQuadtree(region)
	c := &Coordinator{
		Camera:         NewCamera(viewport),
		Machine:        NewStateMachine(),
		Momentum:       NewMomentum(),
		Palm:           NewPalmFilter(),
		Tree:           tree,
		Hits:           NewHitTester(tree),
		Cull:           NewCuller(tree),
		Chan:           NewChannel(0),
		viewport:       viewport,
		transformCell:  NewJSONCell(IdentityTransform),
		focusSeq:       NewCell(int64(0)),
		focusX:         NewCell(0.0),
		focusY:         NewCell(0.0),
		lastDispatchMs: -DispatchIntervalMs,
	}
	c.Camera.SetBounds(region)
	c.ApplyProfile(DefaultProfile)
	c.transformCell.Store(c.Camera.Transform())
	return c
}

// ApplyProfile pushes a device/accessibility profile into every subsystem.
func (c *Coordinator) ApplyProfile(p Profile) {
	c.profile = p
	c.Machine.SetDoubleTapWindow(p.DoubleTapWindowMs)
	c.Momentum.SetDecayMultiplier(p.MomentumDecayMultiplier)
	if s := p.PalmRejectionStrength; s > 0 {
		c.Palm.MaxArea = DefaultMaxContactArea / s
		c.Palm.MaxAspect = DefaultMaxAspectRatio / s
		c.Palm.RapidWindowMs = DefaultRapidWindowMs * s
	}
}

// Profile returns the active profile.
func (c *Coordinator) Profile() Profile {
	return c.profile
}

// TransformCell exposes the latest transform snapshot for logic-context
// polling. Read-only.
func (c *Coordinator) TransformCell() *JSONCell[Transform] {
	return c.transformCell
}

// --- Gesture lifecycle (real-time context) ---

// Begin starts a gesture. It runs palm rejection first and reports whether
// the gesture was accepted; a rejected contact or an illegal transition
// leaves all state untouched. An accepted gesture cancels any in-flight
// momentum or animation and snapshots the current transform as the baseline
// for Update.
func (c *Coordinator) Begin(ev GestureEvent) bool {
	c.noteTime(ev.Time)
	if ev.Area > 0 || ev.Aspect > 0 || ev.PointerCount > 0 {
		contact := Contact{Area: ev.Area, Aspect: ev.Aspect, PointerCount: ev.PointerCount, TimeMs: ev.Time}
		if c.Palm.Check(contact) != RejectNone {
			return false
		}
	}

	var target GestureState
	switch ev.Kind {
	case KindTap:
		target = GestureTapping
	case KindPan:
		target = GesturePanning
	case KindPinch:
		target = GesturePinching
	default:
		Logger().Warn("unknown gesture kind ignored", "kind", ev.Kind)
		return false
	}

	tev := TransitionEvent{TimeMs: ev.Time, PointerCount: ev.PointerCount, Position: ev.Position}

	// A second finger landing mid-tap upgrades to a pinch through the idle
	// state; the direct edge is not in the transition table.
	if target == GesturePinching && c.Machine.State() == GestureTapping {
		if err := c.Machine.RequestTransition(GestureIdle, tev); err != nil {
			return false
		}
	}
	if err := c.Machine.RequestTransition(target, tev); err != nil {
		return false
	}

	c.Momentum.Cancel()
	c.Camera.CancelScroll()
	c.baseline = c.Camera.Transform()
	c.startPos = ev.Position
	c.startFocal = ev.Focal
	c.lastPos = ev.Position
	if ev.Kind == KindPinch {
		// Pinch velocity samples track the focal midpoint.
		c.lastPos = ev.Focal
	}
	c.lastTimeMs = ev.Time
	return true
}

// Update advances an in-flight gesture: pan moves the camera from the
// baseline with elastic bounds, pinch zooms about the focal point, and a tap
// that drifts past the tap tolerance is promoted to a pan. Transform
// snapshots are dispatched on a throttle.
func (c *Coordinator) Update(ev GestureEvent) {
	c.noteTime(ev.Time)
	state := c.Machine.State()
	switch ev.Kind {
	case KindTap, KindPan:
		if state == GestureTapping && ev.Position.Sub(c.startPos).Len() > c.profile.TapTolerancePx {
			tev := TransitionEvent{TimeMs: ev.Time, PointerCount: ev.PointerCount, Position: ev.Position}
			if c.Machine.RequestTransition(GesturePanning, tev) == nil {
				state = GesturePanning
			}
		}
		switch state {
		case GesturePanning:
			c.applyPan(ev)
		case GesturePinching:
			// Pan coexists with an active pinch; the camera already follows
			// the focal point, so only the velocity samples are kept.
			c.sampleVelocity(ev)
		}
	case KindPinch:
		if state == GesturePinching {
			c.applyPinch(ev)
		}
	default:
		Logger().Warn("unknown gesture kind ignored", "kind", ev.Kind)
	}
}

// End finishes a gesture. A tap resolves a selection (and zooms on a double
// tap); a pan release at or above MomentumStartSpeed glides, otherwise the
// camera idles and snaps back if it was left out of bounds; a pinch hands
// off to a pan while a pointer remains. The final transform is always
// dispatched, bypassing the throttle.
func (c *Coordinator) End(ev GestureEvent) {
	c.noteTime(ev.Time)
	state := c.Machine.State()
	tev := TransitionEvent{TimeMs: ev.Time, PointerCount: ev.PointerCount, Position: ev.Position}

	switch ev.Kind {
	case KindTap, KindPan:
		switch state {
		case GestureTapping:
			if c.Machine.RequestTransition(GestureIdle, tev) == nil {
				if c.Machine.DoubleTap() {
					c.Camera.ZoomAt(ev.Position, DoubleTapZoomFactor)
				} else {
					c.dispatchSelection(ev.Position)
				}
			}
		case GesturePanning:
			c.sampleVelocity(ev)
			c.endPan(tev)
		case GesturePinching:
			// A coexisting pan finger lifted; the pinch continues.
		}
	case KindPinch:
		if state == GesturePinching {
			if ev.PointerCount >= 1 {
				if c.Machine.RequestTransition(GesturePanning, tev) == nil {
					c.baseline = c.Camera.Transform()
					c.startPos = ev.Position
					c.lastPos = ev.Position
					c.lastTimeMs = ev.Time
				}
			} else if c.Machine.RequestTransition(GestureIdle, tev) == nil {
				c.snapBackIfNeeded()
			}
		}
	default:
		Logger().Warn("unknown gesture kind ignored", "kind", ev.Kind)
	}
	c.publish(true)
}

// Wheel applies a zoom step about the cursor, the mouse equivalent of a
// pinch: any in-flight glide or animation is canceled, then factor multiplies
// the current scale.
func (c *Coordinator) Wheel(cursor Vec2, factor float64) {
	if factor <= 0 {
		return
	}
	c.Momentum.Cancel()
	c.Camera.CancelScroll()
	c.Camera.ZoomAt(cursor, factor)
	c.publish(true)
}

// Tick advances per-frame work on the real-time context: focus requests,
// scroll animation, and the momentum glide. dtMs is the frame delta in
// milliseconds.
func (c *Coordinator) Tick(dtMs float64) {
	c.nowMs += dtMs

	if seq := c.focusSeq.Load(); seq != c.seenFocus {
		c.seenFocus = seq
		c.Camera.ScrollTo(c.focusX.Load(), c.focusY.Load(), FocusDuration, ease.OutQuad)
	}

	animating := c.Camera.Animating()
	c.Camera.Update(float32(dtMs / 1000))

	if c.Machine.State() == GestureMomentum {
		d, done := c.Momentum.Step(dtMs)
		if done {
			if c.Machine.RequestTransition(GestureIdle, TransitionEvent{TimeMs: c.nowMs}) == nil {
				c.snapBackIfNeeded()
			}
			c.publish(true)
			return
		}
		if d.X != 0 || d.Y != 0 {
			c.Camera.ApplyGlide(d)
			c.publish(false)
		}
		return
	}

	if animating {
		c.publish(false)
	}
}

// Reset aborts any gesture, glide, and animation, returning the machine to
// idle. Called on viewport unmount and input interruption. The camera
// transform is left where it is and dispatched one last time.
func (c *Coordinator) Reset() {
	c.Machine.Reset()
	c.Momentum.Cancel()
	c.Camera.CancelScroll()
	c.Palm.Reset()
	c.publish(true)
}

// Faults returns a snapshot of recovered faults across all subsystems.
func (c *Coordinator) Faults() FaultStats {
	return FaultStats{
		IllegalTransitions: c.Machine.IllegalCount(),
		ParseRecoveries:    c.transformCell.Recoveries(),
		StaleReferences:    c.staleRefs.Load(),
		DroppedDispatches:  c.Chan.Dropped(),
	}
}

// --- Logic-context operations ---

// FocusEntity scrolls the camera to center the entity, resolving the id
// against the current index. A stale id is counted and silently ignored.
// Call from the logic context; the camera move is handed to the real-time
// context through cells.
func (c *Coordinator) FocusEntity(id uint32) bool {
	e, ok := c.Tree.Find(id)
	if !ok {
		c.staleRefs.Add(1)
		Logger().Debug("stale entity reference ignored", "id", id)
		return false
	}
	center := e.Bounds.Center()
	c.focusX.Store(center.X)
	c.focusY.Store(center.Y)
	c.focusSeq.Store(c.focusSeq.Load() + 1)
	return true
}

// VisibleEntities appends the entities within the expanded visible bounds to
// buf and returns the result. Call from the logic context: the bounds derive
// from the latest transform snapshot, never from the live camera.
func (c *Coordinator) VisibleEntities(buf []Entity) []Entity {
	return c.Cull.VisibleAt(c.transformCell.Load(), c.viewport, buf)
}

// --- Internals ---

func (c *Coordinator) noteTime(timeMs float64) {
	if timeMs > c.nowMs {
		c.nowMs = timeMs
	}
}

func (c *Coordinator) applyPan(ev GestureEvent) {
	delta := ev.Translation.Scale(c.profile.PanSensitivity)
	c.Camera.ApplyPan(c.baseline, delta)
	c.sampleVelocity(ev)
	c.publish(false)
}

func (c *Coordinator) applyPinch(ev GestureEvent) {
	scaleDelta := ev.ScaleDelta
	if scaleDelta <= 0 {
		scaleDelta = 1
	}
	t := c.Camera.ApplyPinch(c.baseline, c.startFocal, scaleDelta)
	if d := ev.Focal.Sub(c.startFocal); d.X != 0 || d.Y != 0 {
		c.Camera.ApplyPan(t, d)
	}
	c.sampleFocalVelocity(ev)
	c.publish(false)
}

// sampleVelocity feeds the momentum filter, taking the platform velocity
// when present and deriving one from position deltas otherwise.
func (c *Coordinator) sampleVelocity(ev GestureEvent) {
	if ev.Velocity.X != 0 || ev.Velocity.Y != 0 {
		c.Momentum.AddSample(ev.Velocity)
	} else if dt := ev.Time - c.lastTimeMs; dt > 0 {
		c.Momentum.AddSample(ev.Position.Sub(c.lastPos).Scale(1000 / dt))
	}
	c.lastPos = ev.Position
	c.lastTimeMs = ev.Time
}

func (c *Coordinator) sampleFocalVelocity(ev GestureEvent) {
	if dt := ev.Time - c.lastTimeMs; dt > 0 {
		c.Momentum.AddSample(ev.Focal.Sub(c.lastPos).Scale(1000 / dt))
	}
	c.lastPos = ev.Focal
	c.lastTimeMs = ev.Time
}

// endPan classifies the release: glide when the smoothed release speed meets
// the start threshold, otherwise idle with a snap-back if the elastic
// overshoot is past the pixel threshold.
func (c *Coordinator) endPan(tev TransitionEvent) {
	if c.Momentum.Start() {
		c.Machine.RequestTransition(GestureMomentum, tev)
		return
	}
	if c.Machine.RequestTransition(GestureIdle, tev) == nil {
		c.snapBackIfNeeded()
	}
}

func (c *Coordinator) snapBackIfNeeded() {
	if c.Camera.OutOfBounds().Len() > SnapBackThresholdPx {
		c.Camera.SnapBack(SnapBackDuration)
	}
}

// dispatchSelection hands the tap to the logic context, which resolves it
// against the spatial index at delivery time. Resolution happening on the
// owning context means a tap on an entity removed in the meantime degrades
// to a coordinate selection.
func (c *Coordinator) dispatchSelection(screen Vec2) {
	if c.OnSelect == nil {
		return
	}
	wx, wy := c.Camera.ScreenToWorld(screen.X, screen.Y)
	world := Vec2{wx, wy}
	scale := c.Camera.Scale
	onSelect := c.OnSelect
	c.Chan.Dispatch(func() {
		sel := Selection{World: world}
		if e, ok := c.Hits.ResolveWorld(world, scale); ok {
			sel.Entity = e.ID
		}
		onSelect(sel)
	})
}

// publish stores the current transform in the snapshot cell and, subject to
// the dispatch throttle, hands it to the logic context. force bypasses the
// throttle for gesture ends and momentum completion.
func (c *Coordinator) publish(force bool) {
	t := c.Camera.Transform()
	if err := c.transformCell.Store(t); err != nil {
		Logger().Warn("transform snapshot store failed", "error", err)
		return
	}
	if !force && c.nowMs-c.lastDispatchMs < DispatchIntervalMs {
		return
	}
	c.lastDispatchMs = c.nowMs
	if c.OnTransform == nil {
		return
	}
	onTransform := c.OnTransform
	c.Chan.Dispatch(func() { onTransform(t) })
}
