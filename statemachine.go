package drift

import (
	"fmt"
	"math"
	"sync/atomic"
)

// --- Transition tables ---

const stateCount = 5

// legalTransitions[from][to] is the fixed transition table. A request for a
// pair not in the table is rejected and the machine stays put; the single
// exception is the double-tap self-transition handled in RequestTransition.
var legalTransitions = [stateCount][stateCount]bool{
	GestureIdle:     {GestureTapping: true, GesturePanning: true, GesturePinching: true},
	GestureTapping:  {GestureIdle: true, GesturePanning: true},
	GesturePanning:  {GestureIdle: true, GestureMomentum: true, GesturePinching: true},
	GesturePinching: {GestureIdle: true, GesturePanning: true},
	GestureMomentum: {GestureIdle: true, GestureTapping: true, GesturePanning: true, GesturePinching: true},
}

// statePriority ranks gesture families for arbitration between competing
// requests. Higher wins. Every state has a distinct rank, so a priority tie
// implies two requests for the same target state.
var statePriority = [stateCount]int{
	GestureIdle:     0,
	GestureMomentum: 1,
	GesturePanning:  2,
	GestureTapping:  3,
	GesturePinching: 4,
}

// Legal reports whether the transition table allows from -> to.
func Legal(from, to GestureState) bool {
	if from >= stateCount || to >= stateCount {
		return false
	}
	return legalTransitions[from][to]
}

// Priority returns the arbitration rank of a gesture state.
func Priority(s GestureState) int {
	if s >= stateCount {
		return -1
	}
	return statePriority[s]
}

// HistorySize is the capacity of the transition diagnostic ring.
const HistorySize = 50

// DefaultDoubleTapWindowMs is how long after a tap a second tap still counts
// as a double tap. Profiles may widen it for accessibility.
const DefaultDoubleTapWindowMs = 300

// TransitionEvent carries the input facts behind a transition request.
type TransitionEvent struct {
	TimeMs       float64
	PointerCount int
	Position     Vec2
}

// TransitionRequest pairs a target state with the event requesting it, for
// arbitration between requests gathered in the same input tick.
type TransitionRequest struct {
	Target GestureState
	Event  TransitionEvent
}

// TransitionRecord is one entry in the diagnostic history ring. Rejected
// requests are recorded too, with Allowed false and the state unchanged.
type TransitionRecord struct {
	From, To GestureState
	TimeMs   float64
	Allowed  bool
}

// --- State machine ---

// StateMachine arbitrates which gesture family owns the camera. The current
// state lives in a cross-context cell so either context can branch on it
// without a dispatch; only the real-time context mutates the machine.
//
// All mutating methods must be called from the single goroutine that owns
// the machine. State and Coexisting are safe from any goroutine.
type StateMachine struct {
	state   *Cell[int64]
	coexist *Cell[bool]

	// OnTransition, when set, runs after every committed transition, on the
	// calling goroutine.
	OnTransition func(from, to GestureState, ev TransitionEvent)

	history  [HistorySize]TransitionRecord
	histLen  int
	histNext int

	illegal atomic.Uint64

	doubleTapWindowMs float64
	lastTapMs         float64
	doubleTap         bool
}

// NewStateMachine returns a machine in the idle state.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		state:             NewCell(int64(GestureIdle)),
		coexist:           NewCell(false),
		doubleTapWindowMs: DefaultDoubleTapWindowMs,
		lastTapMs:         math.Inf(-1),
	}
}

// State returns the current gesture state.
func (m *StateMachine) State() GestureState {
	return GestureState(m.state.Load())
}

// StateCell exposes the state's cross-context cell for observers. Treat it
// as read-only; the machine is the single writer.
func (m *StateMachine) StateCell() *Cell[int64] {
	return m.state
}

// Coexisting reports whether pan and pinch are simultaneously active. Set
// when a pinch begins on top of an in-flight pan with two or more pointers,
// cleared when the pinch ends.
func (m *StateMachine) Coexisting() bool {
	return m.coexist.Load()
}

// SetDoubleTapWindow overrides the double-tap timing window, in
// milliseconds. Non-positive values disable the double-tap override.
func (m *StateMachine) SetDoubleTapWindow(ms float64) {
	m.doubleTapWindowMs = ms
}

// RequestTransition moves the machine to target if the transition table
// allows it. On rejection it returns ErrIllegalTransition and the state is
// unchanged; both outcomes are recorded in the history ring.
//
// A tapping self-transition is allowed when the new tap lands within the
// double-tap window of the previous one; this is the time-windowed override
// that lets a double tap restart the tap gesture instead of being swallowed
// by the in-flight one.
func (m *StateMachine) RequestTransition(target GestureState, ev TransitionEvent) error {
	from := m.State()
	if !Legal(from, target) && !m.doubleTapOverride(from, target, ev) {
		m.illegal.Add(1)
		m.record(TransitionRecord{From: from, To: target, TimeMs: ev.TimeMs, Allowed: false})
		Logger().Warn("illegal gesture transition rejected",
			"from", from.String(), "to", target.String(), "timeMs", ev.TimeMs)
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, target)
	}
	m.commit(from, target, ev)
	return nil
}

// Resolve arbitrates between transition requests gathered in one input tick
// and returns the winner. Higher target priority wins outright. On a tie —
// which, with distinct per-state priorities, means requests for the same
// target — a tap inside the double-tap window beats one outside it, and
// otherwise the earlier request wins, preserving arrival order.
//
// Resolve only picks; apply the winner with RequestTransition.
func (m *StateMachine) Resolve(reqs []TransitionRequest) (TransitionRequest, bool) {
	if len(reqs) == 0 {
		return TransitionRequest{}, false
	}
	best := 0
	for i := 1; i < len(reqs); i++ {
		if m.outranks(reqs[i], reqs[best]) {
			best = i
		}
	}
	return reqs[best], true
}

// outranks reports whether request a beats request b.
func (m *StateMachine) outranks(a, b TransitionRequest) bool {
	pa, pb := Priority(a.Target), Priority(b.Target)
	if pa != pb {
		return pa > pb
	}
	if a.Target == GestureTapping {
		aDouble := m.withinDoubleTapWindow(a.Event.TimeMs)
		bDouble := m.withinDoubleTapWindow(b.Event.TimeMs)
		if aDouble != bDouble {
			return aDouble
		}
	}
	return a.Event.TimeMs < b.Event.TimeMs
}

// DoubleTap reports whether the most recent committed tap landed within the
// double-tap window of its predecessor.
func (m *StateMachine) DoubleTap() bool {
	return m.doubleTap
}

// IllegalCount returns how many transition requests the table has rejected.
func (m *StateMachine) IllegalCount() uint64 {
	return m.illegal.Load()
}

// Reset forces the machine back to idle, recording the transition. Called on
// viewport unmount and when input is interrupted.
func (m *StateMachine) Reset() {
	from := m.State()
	if from == GestureIdle {
		return
	}
	m.commit(from, GestureIdle, TransitionEvent{})
}

// History appends the recorded transitions to buf, oldest first, and returns
// the result. Pass nil to allocate.
func (m *StateMachine) History(buf []TransitionRecord) []TransitionRecord {
	start := m.histNext - m.histLen
	for i := 0; i < m.histLen; i++ {
		buf = append(buf, m.history[(start+i+HistorySize)%HistorySize])
	}
	return buf
}

func (m *StateMachine) doubleTapOverride(from, target GestureState, ev TransitionEvent) bool {
	return from == GestureTapping && target == GestureTapping &&
		m.withinDoubleTapWindow(ev.TimeMs)
}

func (m *StateMachine) withinDoubleTapWindow(timeMs float64) bool {
	return m.doubleTapWindowMs > 0 && timeMs-m.lastTapMs <= m.doubleTapWindowMs
}

func (m *StateMachine) commit(from, to GestureState, ev TransitionEvent) {
	m.state.Store(int64(to))
	switch {
	case to == GesturePinching && from == GesturePanning && ev.PointerCount >= 2:
		m.coexist.Store(true)
	case to != GesturePinching:
		m.coexist.Store(false)
	}
	if to == GestureTapping {
		m.doubleTap = m.withinDoubleTapWindow(ev.TimeMs)
		m.lastTapMs = ev.TimeMs
	}
	m.record(TransitionRecord{From: from, To: to, TimeMs: ev.TimeMs, Allowed: true})
	if m.OnTransition != nil {
		m.OnTransition(from, to, ev)
	}
}

func (m *StateMachine) record(r TransitionRecord) {
	m.history[m.histNext] = r
	m.histNext = (m.histNext + 1) % HistorySize
	if m.histLen < HistorySize {
		m.histLen++
	}
}
