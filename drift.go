package drift

import "math"

// Vec2 is a 2D vector used for positions, translations, and velocities
// throughout the API. Velocities are expressed in world units per second.
type Vec2 struct {
	X, Y float64
}

// Len returns the Euclidean length of the vector.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// ContainsRect reports whether other lies entirely inside r.
func (r Rect) ContainsRect(other Rect) bool {
	return other.X >= r.X && other.X+other.Width <= r.X+r.Width &&
		other.Y >= r.Y && other.Y+other.Height <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Expand returns r grown by margin on all four sides. A negative margin
// shrinks the rectangle.
func (r Rect) Expand(margin float64) Rect {
	return Rect{
		X:      r.X - margin,
		Y:      r.Y - margin,
		Width:  r.Width + 2*margin,
		Height: r.Height + 2*margin,
	}
}

// Center returns the rectangle's center point.
func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}

// GestureState identifies which gesture family currently owns the camera.
// The closed set and its legal transitions are fixed; see StateMachine.
type GestureState uint8

const (
	GestureIdle     GestureState = iota // no active gesture
	GestureTapping                      // finger down, below drag tolerance
	GesturePanning                      // single-pointer translation
	GesturePinching                     // two-pointer focal zoom
	GestureMomentum                     // inertial glide after release
)

// String returns the state name for logs and diagnostics.
func (s GestureState) String() string {
	switch s {
	case GestureIdle:
		return "idle"
	case GestureTapping:
		return "tapping"
	case GesturePanning:
		return "panning"
	case GesturePinching:
		return "pinching"
	case GestureMomentum:
		return "momentum"
	default:
		return "unknown"
	}
}

// TouchPhase identifies where a touch sample sits in a contact's lifetime.
type TouchPhase uint8

const (
	PhaseBegan     TouchPhase = iota // first contact of this pointer
	PhaseMoved                       // pointer moved while down
	PhaseEnded                       // pointer lifted normally
	PhaseCancelled                   // contact lost (palm heuristics, OS steal)
)

// String returns the phase name for logs and diagnostics.
func (p TouchPhase) String() string {
	switch p {
	case PhaseBegan:
		return "began"
	case PhaseMoved:
		return "moved"
	case PhaseEnded:
		return "ended"
	case PhaseCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// TouchSample is one raw pointer observation from the platform layer.
// Timestamps are milliseconds on the platform's monotonic clock; samples are
// plain values so they can cross the real-time boundary freely.
type TouchSample struct {
	ID     int
	X, Y   float64
	TimeMs float64
	Phase  TouchPhase
}

// Transform is the viewport transform: a world-space translation plus a
// uniform scale. The rendering layer applies it as Scale then Translate.
// Scale is always within [MinScale, MaxScale] after any Camera operation.
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// Viewport scale limits. Pinch zoom and wheel zoom clamp into this range.
const (
	MinScale = 0.1
	MaxScale = 10.0
)

// IdentityTransform is the mount-time default: origin translation, scale 1.
var IdentityTransform = Transform{X: 0, Y: 0, Scale: 1}
