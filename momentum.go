package drift

import "math"

// Momentum physics constants. Velocities are world units per second; decay
// is normalized to the 60 Hz baseline frame so variable refresh rates glide
// identically.
const (
	// SmoothingAlpha weights the newest raw sample in the velocity EMA.
	SmoothingAlpha = 0.2

	// SpikeThresholdSpeed is the per-axis delta between consecutive raw
	// samples above which a sample is treated as a finger-lift artifact and
	// the previous sample is substituted.
	SpikeThresholdSpeed = 100.0

	// DecayPerFrame multiplies velocity once per normalized frame.
	DecayPerFrame = 0.95

	// MomentumStartSpeed is the minimum release speed for a glide to start.
	MomentumStartSpeed = 150.0

	// MomentumStopSpeed is the speed below which an active glide stops.
	// Distinct from the start threshold so the two never flicker.
	MomentumStopSpeed = 0.1

	// FrameSkipThresholdMs is the frame delta beyond which alternate frames
	// are skipped until timing recovers.
	FrameSkipThresholdMs = 20.0

	// BaselineFrameMs is one frame at the 60 Hz baseline.
	BaselineFrameMs = 1000.0 / 60.0
)

// Momentum smooths drag velocity and, after release, advances an inertial
// glide one rendered frame at a time. All methods except the cell accessors
// must be called from the real-time context; activity and speed are
// published through cells for the logic context to observe.
type Momentum struct {
	vel     Vec2 // smoothed velocity, world units/s
	prevRaw Vec2
	seeded  bool

	active *Cell[bool]
	speed  *Cell[float64]

	decayMul float64
	skipNext bool
}

// NewMomentum returns an engine with no samples and no active glide.
func NewMomentum() *Momentum {
	return &Momentum{
		active:   NewCell(false),
		speed:    NewCell(0.0),
		decayMul: 1,
	}
}

// SetDecayMultiplier scales the decay exponent. Values above 1 shorten the
// glide, below 1 lengthen it. Non-positive values are ignored.
func (m *Momentum) SetDecayMultiplier(mul float64) {
	if mul > 0 {
		m.decayMul = mul
	}
}

// AddSample feeds one raw velocity observation into the smoothing filter and
// returns the new smoothed velocity. The first sample seeds the filter
// directly. A per-axis jump larger than SpikeThresholdSpeed substitutes the
// previous sample on that axis, so a single finger-lift artifact between two
// samples leaves the smoothed output exactly at the previous sample rather
// than a blend.
func (m *Momentum) AddSample(raw Vec2) Vec2 {
	if !m.seeded {
		m.seeded = true
		m.prevRaw = raw
		m.vel = raw
		return m.vel
	}
	if math.Abs(raw.X-m.prevRaw.X) > SpikeThresholdSpeed {
		raw.X = m.prevRaw.X
	}
	if math.Abs(raw.Y-m.prevRaw.Y) > SpikeThresholdSpeed {
		raw.Y = m.prevRaw.Y
	}
	m.vel = Vec2{
		X: SmoothingAlpha*raw.X + (1-SmoothingAlpha)*m.vel.X,
		Y: SmoothingAlpha*raw.Y + (1-SmoothingAlpha)*m.vel.Y,
	}
	m.prevRaw = raw
	return m.vel
}

// Velocity returns the current smoothed velocity.
func (m *Momentum) Velocity() Vec2 {
	return m.vel
}

// Speed returns the magnitude of the smoothed velocity.
func (m *Momentum) Speed() float64 {
	return m.vel.Len()
}

// Start begins a glide from the smoothed velocity accumulated during the
// drag. It reports whether the release speed met MomentumStartSpeed; below
// the threshold nothing starts.
func (m *Momentum) Start() bool {
	return m.StartFrom(m.vel)
}

// StartFrom begins a glide from an explicit release velocity.
func (m *Momentum) StartFrom(v Vec2) bool {
	if v.Len() < MomentumStartSpeed {
		return false
	}
	m.vel = v
	m.skipNext = false
	m.active.Store(true)
	m.speed.Store(v.Len())
	return true
}

// Step advances an active glide by one rendered frame of dtMs milliseconds
// and returns the displacement to apply this frame. done is true once the
// glide has stopped (or was never active); the caller should then release
// the momentum state.
//
// Decay is applied before integration: velocity is multiplied by
// DecayPerFrame once per normalized 60 Hz frame, then displacement is
// velocity times the frame's real duration. When a frame exceeds
// FrameSkipThresholdMs the following frame is skipped, freezing the glide
// for one frame instead of compounding the lag.
func (m *Momentum) Step(dtMs float64) (Vec2, bool) {
	if !m.active.Load() {
		return Vec2{}, true
	}
	if m.skipNext {
		m.skipNext = false
		return Vec2{}, false
	}
	if dtMs > FrameSkipThresholdMs {
		m.skipNext = true
	}
	if dtMs <= 0 {
		dtMs = BaselineFrameMs
	}
	frames := dtMs / BaselineFrameMs
	m.vel = m.vel.Scale(math.Pow(DecayPerFrame, frames*m.decayMul))
	if m.vel.Len() < MomentumStopSpeed {
		m.stop()
		return Vec2{}, true
	}
	m.speed.Store(m.vel.Len())
	return m.vel.Scale(dtMs / 1000), false
}

// Active reports whether a glide is in flight.
func (m *Momentum) Active() bool {
	return m.active.Load()
}

// ActiveCell exposes the activity flag for the logic context. Read-only.
func (m *Momentum) ActiveCell() *Cell[bool] {
	return m.active
}

// SpeedCell exposes the current glide speed for the logic context. Read-only.
func (m *Momentum) SpeedCell() *Cell[float64] {
	return m.speed
}

// Cancel stops any glide and clears all sampling state. Starting a new
// gesture cancels momentum immediately; the latest user intent wins.
func (m *Momentum) Cancel() {
	m.stop()
	m.seeded = false
	m.prevRaw = Vec2{}
	m.skipNext = false
}

func (m *Momentum) stop() {
	m.vel = Vec2{}
	m.active.Store(false)
	m.speed.Store(0)
}
