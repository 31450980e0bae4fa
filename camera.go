package drift

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	// ElasticResistance attenuates out-of-bounds translation. Overshoot is
	// multiplied, never clamped, so a hard drag past the edge still moves
	// the camera a little.
	ElasticResistance = 0.3

	// SnapBackThresholdPx is how far out of bounds a release may leave the
	// camera before an animated correction is issued.
	SnapBackThresholdPx = 4.0

	// SnapBackDuration is the length of the boundary correction tween in
	// seconds.
	SnapBackDuration float32 = 0.3
)

// scrollAnim holds active tweens for camera translation X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera is the viewport transform: a screen-space translation applied after
// a uniform world scale. Gestures mutate it through ApplyPan, ApplyPinch,
// and ApplyGlide, which keep Scale inside [MinScale, MaxScale] and soften
// translation against Bounds with elastic resistance.
//
// The camera belongs to the real-time context; observers get Transform
// snapshots through the coordinator.
type Camera struct {
	// X and Y are the screen-space translation applied after scaling.
	X, Y float64
	// Scale is the world-to-screen zoom factor, within [MinScale, MaxScale].
	Scale float64
	// Viewport is the screen-space rectangle the camera renders into.
	Viewport Rect

	// BoundsEnabled softly constrains translation so the visible area stays
	// within Bounds.
	BoundsEnabled bool
	// Bounds is the world-space content extent.
	Bounds Rect

	viewMatrix    [6]float64
	invViewMatrix [6]float64
	dirty         bool

	scrollTween *scrollAnim
}

// NewCamera creates a Camera at the identity transform with the given
// viewport.
func NewCamera(viewport Rect) *Camera {
	return &Camera{
		Scale:    1.0,
		Viewport: viewport,
		dirty:    true,
	}
}

// Transform returns the current transform snapshot.
func (c *Camera) Transform() Transform {
	return Transform{X: c.X, Y: c.Y, Scale: c.Scale}
}

// SetTransform applies t directly, clamping scale. Bounds are not enforced;
// callers wanting a hard clamp follow with ClampToBounds.
func (c *Camera) SetTransform(t Transform) {
	c.X = t.X
	c.Y = t.Y
	c.Scale = clampScale(t.Scale)
	c.dirty = true
}

// Reset returns the camera to the identity transform and cancels any
// animation.
func (c *Camera) Reset() {
	c.SetTransform(IdentityTransform)
	c.scrollTween = nil
}

// SetBounds enables soft translation bounds.
func (c *Camera) SetBounds(bounds Rect) {
	c.BoundsEnabled = true
	c.Bounds = bounds
}

// ClearBounds disables translation bounds.
func (c *Camera) ClearBounds() {
	c.BoundsEnabled = false
}

// ApplyPan sets the transform to baseline translated by delta, attenuating
// any out-of-bounds overshoot, and returns the result. Scale is taken from
// the baseline unchanged.
func (c *Camera) ApplyPan(baseline Transform, delta Vec2) Transform {
	s := clampScale(baseline.Scale)
	tx, ty := c.elasticTranslate(baseline.X+delta.X, baseline.Y+delta.Y, s)
	c.X, c.Y, c.Scale = tx, ty, s
	c.dirty = true
	return c.Transform()
}

// ApplyPinch sets the transform to baseline zoomed by scaleDelta about the
// screen-space focal point, and returns the result. The world point under
// the focal point stays under it; scale is clamped to [MinScale, MaxScale]
// and translation is softened against the bounds.
func (c *Camera) ApplyPinch(baseline Transform, focal Vec2, scaleDelta float64) Transform {
	base := clampScale(baseline.Scale)
	s := clampScale(base * scaleDelta)
	ratio := s / base
	tx := focal.X - (focal.X-baseline.X)*ratio
	ty := focal.Y - (focal.Y-baseline.Y)*ratio
	tx, ty = c.elasticTranslate(tx, ty, s)
	c.X, c.Y, c.Scale = tx, ty, s
	c.dirty = true
	return c.Transform()
}

// ZoomAt zooms the current transform by factor about the screen-space focal
// point. Wheel input maps here.
func (c *Camera) ZoomAt(focal Vec2, factor float64) Transform {
	return c.ApplyPinch(c.Transform(), focal, factor)
}

// ApplyGlide translates the camera by d with elastic resistance at the
// bounds and returns the result. Momentum steps map here.
func (c *Camera) ApplyGlide(d Vec2) Transform {
	return c.ApplyPan(c.Transform(), d)
}

// OutOfBounds returns how far the current translation sits past the legal
// range on each axis, zero when inside. The magnitude decides whether a
// release issues a snap-back correction.
func (c *Camera) OutOfBounds() Vec2 {
	if !c.BoundsEnabled {
		return Vec2{}
	}
	var out Vec2
	if minX, maxX, ok := c.translationRangeX(c.Scale); ok {
		out.X = overshoot(c.X, minX, maxX)
	}
	if minY, maxY, ok := c.translationRangeY(c.Scale); ok {
		out.Y = overshoot(c.Y, minY, maxY)
	}
	return out
}

// ClampToBounds immediately moves the translation into the legal range.
// Call after setting the transform directly to avoid a single frame outside
// the bounds. No-op if BoundsEnabled is false.
func (c *Camera) ClampToBounds() {
	if !c.BoundsEnabled {
		return
	}
	if minX, maxX, ok := c.translationRangeX(c.Scale); ok {
		c.X = math.Max(minX, math.Min(c.X, maxX))
	}
	if minY, maxY, ok := c.translationRangeY(c.Scale); ok {
		c.Y = math.Max(minY, math.Min(c.Y, maxY))
	}
	c.dirty = true
}

// SnapBack animates the translation back inside the bounds over duration
// seconds. No-op when already inside.
func (c *Camera) SnapBack(duration float32) {
	out := c.OutOfBounds()
	if out.X == 0 && out.Y == 0 {
		return
	}
	c.animateTo(c.X-out.X, c.Y-out.Y, duration, ease.OutQuad)
}

// ScrollTo animates the camera so the world point (x, y) ends centered in
// the viewport, over duration seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	tx := c.Viewport.X + c.Viewport.Width/2 - x*c.Scale
	ty := c.Viewport.Y + c.Viewport.Height/2 - y*c.Scale
	c.animateTo(tx, ty, duration, easeFn)
}

// CancelScroll stops any in-flight scroll or snap-back animation, leaving
// the camera where it is. A new gesture always cancels animation.
func (c *Camera) CancelScroll() {
	c.scrollTween = nil
}

// Animating reports whether a scroll or snap-back tween is in flight.
func (c *Camera) Animating() bool {
	return c.scrollTween != nil
}

// Update advances scroll and snap-back animation. Call once per frame from
// the real-time context with the frame delta in seconds.
func (c *Camera) Update(dt float32) {
	if c.scrollTween == nil {
		return
	}
	if !c.scrollTween.doneX {
		val, done := c.scrollTween.tweenX.Update(dt)
		c.X = float64(val)
		c.scrollTween.doneX = done
	}
	if !c.scrollTween.doneY {
		val, done := c.scrollTween.tweenY.Update(dt)
		c.Y = float64(val)
		c.scrollTween.doneY = done
	}
	if c.scrollTween.doneX && c.scrollTween.doneY {
		c.scrollTween = nil
	}
	c.dirty = true
}

func (c *Camera) animateTo(tx, ty float64, duration float32, easeFn ease.TweenFunc) {
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.X), float32(tx), duration, easeFn),
		tweenY: gween.New(float32(c.Y), float32(ty), duration, easeFn),
	}
}

// --- Coordinate conversion ---

// computeViewMatrix recomputes the cached view matrix if dirty.
//
// viewMatrix = Translate(X, Y) * Scale(s): screen = world*s + translation.
func (c *Camera) computeViewMatrix() [6]float64 {
	if !c.dirty {
		return c.viewMatrix
	}
	c.dirty = false
	c.viewMatrix = multiplyAffine(
		[6]float64{1, 0, 0, 1, c.X, c.Y},
		[6]float64{c.Scale, 0, 0, c.Scale, 0, 0},
	)
	c.invViewMatrix = invertAffine(c.viewMatrix)
	return c.viewMatrix
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	c.computeViewMatrix()
	sx, sy = transformPoint(c.viewMatrix, wx, wy)
	return
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	c.computeViewMatrix()
	wx, wy = transformPoint(c.invViewMatrix, sx, sy)
	return
}

// VisibleBounds returns the world-space rectangle currently visible in the
// viewport.
func (c *Camera) VisibleBounds() Rect {
	c.computeViewMatrix()
	x0, y0 := transformPoint(c.invViewMatrix, c.Viewport.X, c.Viewport.Y)
	x1, y1 := transformPoint(c.invViewMatrix, c.Viewport.X+c.Viewport.Width, c.Viewport.Y+c.Viewport.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// MarkDirty forces a recomputation of the view matrix after direct field
// writes.
func (c *Camera) MarkDirty() {
	c.dirty = true
}

// --- Bounds math ---

// translationRangeX returns the legal translation range for the given scale.
// When the content is narrower than the viewport the range collapses to the
// centering translation. ok is false when bounds are disabled.
func (c *Camera) translationRangeX(scale float64) (min, max float64, ok bool) {
	if !c.BoundsEnabled {
		return 0, 0, false
	}
	min = c.Viewport.X + c.Viewport.Width - (c.Bounds.X+c.Bounds.Width)*scale
	max = c.Viewport.X - c.Bounds.X*scale
	if min > max {
		center := c.Viewport.X + c.Viewport.Width/2 - (c.Bounds.X+c.Bounds.Width/2)*scale
		return center, center, true
	}
	return min, max, true
}

func (c *Camera) translationRangeY(scale float64) (min, max float64, ok bool) {
	if !c.BoundsEnabled {
		return 0, 0, false
	}
	min = c.Viewport.Y + c.Viewport.Height - (c.Bounds.Y+c.Bounds.Height)*scale
	max = c.Viewport.Y - c.Bounds.Y*scale
	if min > max {
		center := c.Viewport.Y + c.Viewport.Height/2 - (c.Bounds.Y+c.Bounds.Height/2)*scale
		return center, center, true
	}
	return min, max, true
}

// elasticTranslate attenuates the out-of-bounds portion of a target
// translation by ElasticResistance.
func (c *Camera) elasticTranslate(tx, ty, scale float64) (float64, float64) {
	if !c.BoundsEnabled {
		return tx, ty
	}
	if minX, maxX, ok := c.translationRangeX(scale); ok {
		tx = elasticClamp(tx, minX, maxX)
	}
	if minY, maxY, ok := c.translationRangeY(scale); ok {
		ty = elasticClamp(ty, minY, maxY)
	}
	return tx, ty
}

func elasticClamp(v, min, max float64) float64 {
	if v < min {
		return min + (v-min)*ElasticResistance
	}
	if v > max {
		return max + (v-max)*ElasticResistance
	}
	return v
}

func overshoot(v, min, max float64) float64 {
	if v < min {
		return v - min
	}
	if v > max {
		return v - max
	}
	return 0
}

func clampScale(s float64) float64 {
	return math.Max(MinScale, math.Min(MaxScale, s))
}
