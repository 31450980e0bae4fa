package drift

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestCameraDefaults(t *testing.T) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	if cam.Scale != 1.0 {
		t.Errorf("Scale = %f, want 1.0", cam.Scale)
	}
	if cam.BoundsEnabled {
		t.Error("BoundsEnabled = true, want false")
	}
	if cam.Transform() != IdentityTransform {
		t.Errorf("Transform = %+v, want identity", cam.Transform())
	}
	if cam.Viewport.Width != 800 || cam.Viewport.Height != 600 {
		t.Errorf("Viewport = %v, want 800x600", cam.Viewport)
	}
}

// --- Coordinate conversion ---

func TestWorldToScreenIdentity(t *testing.T) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	sx, sy := cam.WorldToScreen(123, -456)
	assertNear(t, "sx", sx, 123)
	assertNear(t, "sy", sy, -456)
}

func TestWorldToScreenScaleThenTranslate(t *testing.T) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	cam.SetTransform(Transform{X: 100, Y: 50, Scale: 2})
	// screen = world*2 + (100, 50)
	sx, sy := cam.WorldToScreen(10, 20)
	assertNear(t, "sx", sx, 120)
	assertNear(t, "sy", sy, 90)
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	cam.SetTransform(Transform{X: 42, Y: -17, Scale: 1.5})

	origWX, origWY := 123.0, -456.0
	sx, sy := cam.WorldToScreen(origWX, origWY)
	wx, wy := cam.ScreenToWorld(sx, sy)
	if !approxEqual(wx, origWX, 1e-6) || !approxEqual(wy, origWY, 1e-6) {
		t.Errorf("roundtrip: got (%f,%f), want (%f,%f)", wx, wy, origWX, origWY)
	}
}

func TestVisibleBounds(t *testing.T) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	bounds := cam.VisibleBounds()
	if !approxEqual(bounds.X, 0, 1e-9) || !approxEqual(bounds.Width, 800, 1e-9) ||
		!approxEqual(bounds.Height, 600, 1e-9) {
		t.Errorf("identity VisibleBounds = %v, want (0,0,800,600)", bounds)
	}

	// Zoom 2 halves the visible area.
	cam.SetTransform(Transform{X: 0, Y: 0, Scale: 2})
	bounds = cam.VisibleBounds()
	if !approxEqual(bounds.Width, 400, 1e-9) || !approxEqual(bounds.Height, 300, 1e-9) {
		t.Errorf("zoom 2 VisibleBounds = %v, want 400x300", bounds)
	}

	// Panning right (content moves left) shifts the visible origin right.
	cam.SetTransform(Transform{X: -100, Y: 0, Scale: 2})
	bounds = cam.VisibleBounds()
	assertNear(t, "panned origin", bounds.X, 50)
}

func TestMarkDirty(t *testing.T) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	cam.WorldToScreen(0, 0) // prime the cache

	cam.X = 100 // direct write, cache is stale
	sx, _ := cam.WorldToScreen(0, 0)
	assertNear(t, "stale", sx, 0)

	cam.MarkDirty()
	sx, _ = cam.WorldToScreen(0, 0)
	assertNear(t, "recomputed", sx, 100)
}

// --- Pan ---

func TestApplyPanUnbounded(t *testing.T) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	got := cam.ApplyPan(IdentityTransform, Vec2{30, 40})
	if got != (Transform{X: 30, Y: 40, Scale: 1}) {
		t.Errorf("ApplyPan = %+v", got)
	}
	// The baseline, not the current transform, anchors the pan.
	got = cam.ApplyPan(IdentityTransform, Vec2{10, 10})
	if got != (Transform{X: 10, Y: 10, Scale: 1}) {
		t.Errorf("re-anchored ApplyPan = %+v", got)
	}
}

func TestApplyPanElastic(t *testing.T) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	cam.SetBounds(Rect{X: 0, Y: 0, Width: 1000, Height: 1000})
	// Legal X translation is [-200, 0] at scale 1.

	got := cam.ApplyPan(IdentityTransform, Vec2{50, 0})
	// 50 past the max edge, attenuated: 0 + 50*0.3.
	assertNear(t, "overshoot right", got.X, 15)
	if math.Abs(got.X) >= 50 {
		t.Error("elastic pan moved as far as the raw drag")
	}

	got = cam.ApplyPan(IdentityTransform, Vec2{-1250, 0})
	// 1050 past the min edge: -200 + (-1050)*0.3.
	assertNear(t, "overshoot left", got.X, -515)

	// Inside the range the pan is exact.
	got = cam.ApplyPan(IdentityTransform, Vec2{-100, -100})
	assertNear(t, "in-range X", got.X, -100)
	assertNear(t, "in-range Y", got.Y, -100)
}

func TestApplyGlide(t *testing.T) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	cam.ApplyGlide(Vec2{5, 0})
	cam.ApplyGlide(Vec2{5, 0})
	// Glide accumulates from the current transform, unlike pan.
	assertNear(t, "glide X", cam.X, 10)
}

// --- Pinch / zoom ---

func TestApplyPinchKeepsFocalPoint(t *testing.T) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	base := Transform{X: -120, Y: 75, Scale: 1.5}
	cam.SetTransform(base)
	focal := Vec2{400, 300}

	wx0, wy0 := cam.ScreenToWorld(focal.X, focal.Y)
	got := cam.ApplyPinch(base, focal, 1.4)
	assertNear(t, "scale", got.Scale, 2.1)

	wx1, wy1 := cam.ScreenToWorld(focal.X, focal.Y)
	if !approxEqual(wx1, wx0, 1e-9) || !approxEqual(wy1, wy0, 1e-9) {
		t.Errorf("world point under focal moved: (%f,%f) -> (%f,%f)", wx0, wy0, wx1, wy1)
	}
}

func TestApplyPinchClampsScale(t *testing.T) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	got := cam.ApplyPinch(IdentityTransform, Vec2{400, 300}, 1e6)
	assertNear(t, "max", got.Scale, MaxScale)

	got = cam.ApplyPinch(IdentityTransform, Vec2{400, 300}, 1e-6)
	assertNear(t, "min", got.Scale, MinScale)
}

func TestApplyPinchAtScaleCeilingDoesNotDrift(t *testing.T) {
	// Once the scale clamps, the ratio is 1 and the translation must hold
	// still instead of creeping each frame.
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	base := Transform{X: -50, Y: -20, Scale: MaxScale}
	cam.SetTransform(base)
	got := cam.ApplyPinch(base, Vec2{400, 300}, 3)
	assertNear(t, "X", got.X, base.X)
	assertNear(t, "Y", got.Y, base.Y)
	assertNear(t, "Scale", got.Scale, MaxScale)
}

func TestZoomAt(t *testing.T) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	cursor := Vec2{400, 300}
	wx0, wy0 := cam.ScreenToWorld(cursor.X, cursor.Y)

	cam.ZoomAt(cursor, 2)
	assertNear(t, "scale", cam.Scale, 2)
	sx, sy := cam.WorldToScreen(wx0, wy0)
	assertNear(t, "cursor sx", sx, cursor.X)
	assertNear(t, "cursor sy", sy, cursor.Y)

	// Zooming back out returns to the identity.
	cam.ZoomAt(cursor, 0.5)
	assertNear(t, "unzoomed scale", cam.Scale, 1)
	assertNear(t, "unzoomed X", cam.X, 0)
}

func TestSetTransformClampsScale(t *testing.T) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	cam.SetTransform(Transform{Scale: 999})
	assertNear(t, "clamped", cam.Scale, MaxScale)
}

// --- Bounds ---

func TestOutOfBounds(t *testing.T) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	if out := cam.OutOfBounds(); out != (Vec2{}) {
		t.Errorf("unbounded OutOfBounds = %v", out)
	}

	cam.SetBounds(Rect{X: 0, Y: 0, Width: 1000, Height: 1000})
	cam.X = 50
	if out := cam.OutOfBounds(); !approxEqual(out.X, 50, 1e-9) || out.Y != 0 {
		t.Errorf("OutOfBounds = %v, want {50 0}", out)
	}

	cam.ClampToBounds()
	if out := cam.OutOfBounds(); out != (Vec2{}) {
		t.Errorf("OutOfBounds after clamp = %v", out)
	}
	assertNear(t, "clamped X", cam.X, 0)
}

func TestClearBounds(t *testing.T) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	cam.SetBounds(Rect{X: 0, Y: 0, Width: 1000, Height: 1000})
	cam.ClearBounds()
	got := cam.ApplyPan(IdentityTransform, Vec2{999, 999})
	assertNear(t, "unbounded pan", got.X, 999)
}

func TestBoundsSmallerThanViewportCenters(t *testing.T) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	cam.SetBounds(Rect{X: 0, Y: 0, Width: 100, Height: 100})
	cam.ClampToBounds()

	// Content smaller than the viewport pins to the centering translation.
	sx, sy := cam.WorldToScreen(50, 50)
	assertNear(t, "content center sx", sx, 400)
	assertNear(t, "content center sy", sy, 300)

	// Panning cannot move it off center: the range is collapsed.
	cam.ApplyPan(cam.Transform(), Vec2{500, 0})
	out := cam.OutOfBounds()
	if out.X == 0 {
		t.Error("pan away from collapsed range reported in bounds")
	}
}

// --- Animation ---

func TestSnapBack(t *testing.T) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	cam.SetBounds(Rect{X: 0, Y: 0, Width: 1000, Height: 1000})
	cam.X = 50
	cam.MarkDirty()

	cam.SnapBack(0.3)
	if !cam.Animating() {
		t.Fatal("Animating = false after SnapBack from outside bounds")
	}
	cam.Update(0.15)
	if cam.X >= 50 || cam.X < 0 {
		t.Errorf("mid-snap X = %f, want between 0 and 50", cam.X)
	}
	cam.Update(0.2)
	if !approxEqual(cam.X, 0, 0.5) {
		t.Errorf("post-snap X = %f, want 0", cam.X)
	}
	if cam.Animating() {
		t.Error("Animating = true after snap completed")
	}
}

func TestSnapBackInsideBoundsIsNoop(t *testing.T) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	cam.SetBounds(Rect{X: 0, Y: 0, Width: 1000, Height: 1000})
	cam.X = -100
	cam.SnapBack(0.3)
	if cam.Animating() {
		t.Error("SnapBack animated while inside bounds")
	}
}

func TestScrollTo(t *testing.T) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	cam.ScrollTo(100, 200, 1.0, ease.Linear)

	cam.Update(0.5)
	// Halfway to (300, 100): the translation that centers world (100, 200).
	if !approxEqual(cam.X, 150, 1.0) || !approxEqual(cam.Y, 50, 1.0) {
		t.Errorf("scroll halfway: cam = (%f,%f), want ~(150,50)", cam.X, cam.Y)
	}

	cam.Update(0.5)
	if cam.Animating() {
		t.Error("Animating = true after scroll completed")
	}
	sx, sy := cam.WorldToScreen(100, 200)
	if !approxEqual(sx, 400, 0.5) || !approxEqual(sy, 300, 0.5) {
		t.Errorf("scroll target at (%f,%f), want viewport center", sx, sy)
	}
}

func TestCancelScroll(t *testing.T) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	cam.ScrollTo(100, 200, 1.0, ease.Linear)
	cam.Update(0.25)
	x := cam.X
	cam.CancelScroll()
	cam.Update(0.5)
	assertNear(t, "X after cancel", cam.X, x)
	if cam.Animating() {
		t.Error("Animating = true after CancelScroll")
	}
}

func TestCameraReset(t *testing.T) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	cam.SetTransform(Transform{X: 10, Y: 20, Scale: 3})
	cam.ScrollTo(0, 0, 1, ease.Linear)
	cam.Reset()
	if cam.Transform() != IdentityTransform {
		t.Errorf("Transform after Reset = %+v", cam.Transform())
	}
	if cam.Animating() {
		t.Error("Animating = true after Reset")
	}
}

// --- Benchmarks ---

func BenchmarkApplyPan(b *testing.B) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	cam.SetBounds(Rect{X: 0, Y: 0, Width: 4000, Height: 4000})
	base := cam.Transform()
	b.ReportAllocs()
	for b.Loop() {
		cam.ApplyPan(base, Vec2{-37, 12})
	}
}

func BenchmarkWorldToScreenCached(b *testing.B) {
	cam := NewCamera(Rect{X: 0, Y: 0, Width: 800, Height: 600})
	cam.SetTransform(Transform{X: -120, Y: 75, Scale: 1.5})
	b.ReportAllocs()
	for b.Loop() {
		_, _ = cam.WorldToScreen(400, 300)
	}
}
