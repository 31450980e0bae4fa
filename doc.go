// Package drift is the touch-input and viewport-navigation core for
// interactive 2D map views built on [Ebitengine].
//
// Drift turns raw multi-touch input into a smooth, physically plausible
// camera: taps select entities, drags pan with inertial glide after release,
// two fingers pinch-zoom about their focal point, and palm-sized contacts
// are filtered out before they can disturb the view. A deterministic state
// machine arbitrates between the gesture families so no input sequence can
// leave the camera in a conflicting state.
//
// # Quick start
//
// Wire a [Coordinator] to an [InputAdapter] and drive both from your game
// loop:
//
//	coord := drift.NewCoordinator(
//		drift.Rect{Width: 640, Height: 480},      // screen viewport
//		drift.Rect{Width: 4000, Height: 4000},    // world extents
//	)
//	input := drift.NewInputAdapter(coord)
//	var clock drift.FrameClock
//
//	func (g *Game) Update() error {
//		dt := clock.TickMs()
//		input.Poll(dt)
//		coord.Tick(dt)
//		return nil
//	}
//
// The camera's view matrix is available every frame through
// [Camera.WorldToScreen] and friends on coord.Camera.
//
// # Two execution contexts
//
// Drift assumes the host splits work between a real-time context (the frame
// loop) and a logic context (application code). All camera and gesture
// state is owned by the real-time context; the logic context observes
// through [Cell] and [JSONCell] snapshots and through callbacks delivered
// over a [Channel]:
//
//	coord.OnTransform = func(t drift.Transform) { /* logic context */ }
//	coord.OnSelect = func(s drift.Selection) { /* logic context */ }
//	go coord.Chan.Run(ctx) // or coord.Chan.Drain(n) from your own loop
//
// Cells carry only booleans, numbers, and strings; structured snapshots
// cross as JSON. The narrow boundary is what lets both contexts run
// lock-free.
//
// # Entities
//
// Register the tappable map entities in coord.Tree (a [Quadtree]) from the
// logic context, rebuilding wholesale when the set changes materially. Taps
// resolve against the index with a zoom-scaled hit radius; viewport culling
// queries it with [Coordinator.VisibleEntities], which derives the view from
// the latest transform snapshot rather than the live camera.
//
// # Tuning
//
// Device presets and user overrides load through [LoadProfile]; the
// [Accessibility] flags loosen timing and radius thresholds. Apply with
// [Coordinator.ApplyProfile].
//
// [Ebitengine]: https://ebitengine.org
package drift
