package drift

// Hit radius defaults. The tap radius is a screen-space finger size
// converted to world units by the current zoom, then clamped so extreme
// zoom levels keep hit testing usable.
const (
	DefaultHitRadiusPx  = 24.0
	DefaultMinHitRadius = 4.0
	DefaultMaxHitRadius = 96.0
)

// HitTester resolves a tap's screen position to the entity under it.
type HitTester struct {
	Tree *Quadtree

	// RadiusPx is the screen-space tap radius; MinRadius and MaxRadius
	// clamp its world-space equivalent.
	RadiusPx  float64
	MinRadius float64
	MaxRadius float64
}

// NewHitTester returns a tester over tree with the default radii.
func NewHitTester(tree *Quadtree) *HitTester {
	return &HitTester{
		Tree:      tree,
		RadiusPx:  DefaultHitRadiusPx,
		MinRadius: DefaultMinHitRadius,
		MaxRadius: DefaultMaxHitRadius,
	}
}

// Resolve returns the entity nearest the tap, preferring one containing the
// tap point, within the zoom-scaled hit radius. ok is false when nothing is
// close enough.
func (h *HitTester) Resolve(cam *Camera, screen Vec2) (Entity, bool) {
	wx, wy := cam.ScreenToWorld(screen.X, screen.Y)
	return h.ResolveWorld(Vec2{wx, wy}, cam.Scale)
}

// ResolveWorld is Resolve for a tap already converted to world space. It
// takes the zoom as a plain value so callers on the logic context never
// touch the live camera.
func (h *HitTester) ResolveWorld(world Vec2, scale float64) (Entity, bool) {
	radius := h.worldRadius(scale)
	nearest := h.Tree.Nearest(world, 1, nil)
	if len(nearest) == 0 {
		return Entity{}, false
	}
	if distSqToRect(world, nearest[0].Bounds) > radius*radius {
		return Entity{}, false
	}
	return nearest[0], true
}

// worldRadius converts the screen-space tap radius to world units at the
// given zoom, clamped to [MinRadius, MaxRadius].
func (h *HitTester) worldRadius(scale float64) float64 {
	if scale <= 0 {
		scale = 1
	}
	r := h.RadiusPx / scale
	if r < h.MinRadius {
		return h.MinRadius
	}
	if r > h.MaxRadius {
		return h.MaxRadius
	}
	return r
}

// DefaultCullMargin is the world-space margin added around the visible
// bounds so entities entering the viewport mid-glide are already resolved.
const DefaultCullMargin = 64.0

// Culler selects the entities a frame must consider: those intersecting the
// camera's visible bounds expanded by a margin.
type Culler struct {
	Tree   *Quadtree
	Margin float64
}

// NewCuller returns a culler over tree with the default margin.
func NewCuller(tree *Quadtree) *Culler {
	return &Culler{Tree: tree, Margin: DefaultCullMargin}
}

// Visible appends the entities within the camera's expanded visible bounds
// to buf and returns the result. Pass nil to allocate. It reads the live
// camera and belongs on the real-time context; everyone else uses VisibleAt.
func (c *Culler) Visible(cam *Camera, buf []Entity) []Entity {
	return c.Tree.Query(cam.VisibleBounds().Expand(c.Margin), buf)
}

// VisibleAt is Visible for a transform snapshot. The bounds are derived from
// plain values so callers on the logic context never touch the live camera.
func (c *Culler) VisibleAt(t Transform, viewport Rect, buf []Entity) []Entity {
	s := t.Scale
	if s <= 0 {
		s = 1
	}
	visible := Rect{
		X:      (viewport.X - t.X) / s,
		Y:      (viewport.Y - t.Y) / s,
		Width:  viewport.Width / s,
		Height: viewport.Height / s,
	}
	return c.Tree.Query(visible.Expand(c.Margin), buf)
}
