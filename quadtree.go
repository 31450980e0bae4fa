package drift

import (
	"math"
	"sort"
)

const (
	// QuadtreeNodeCapacity is how many items a node holds before it
	// subdivides into four quadrants.
	QuadtreeNodeCapacity = 10

	// QuadtreeMaxDepth bounds subdivision. Items that exceed a full node at
	// max depth simply accumulate there.
	QuadtreeMaxDepth = 8
)

// Entity is one indexed item: an opaque id and its world-space bounds.
type Entity struct {
	ID     uint32
	Bounds Rect
}

// Quadtree is a region-bounded spatial index over entity bounds. Intended
// use is hundreds to low thousands of entities queried every frame; on a
// material change to the entity set, rebuild wholesale with Rebuild rather
// than maintaining the tree incrementally.
//
// The tree is not synchronized; confine it to one goroutine.
type Quadtree struct {
	root quadNode
	size int
}

// NewQuadtree returns an empty index covering region. Entities not fully
// inside the region are held at the root.
func NewQuadtree(region Rect) *Quadtree {
	return &Quadtree{root: quadNode{bounds: region}}
}

// Region returns the area the index covers.
func (t *Quadtree) Region() Rect {
	return t.root.bounds
}

// Len returns the number of indexed entities.
func (t *Quadtree) Len() int {
	return t.size
}

// Insert adds an entity. Duplicate ids are not checked; Remove drops only
// the first match.
func (t *Quadtree) Insert(e Entity) {
	t.root.insert(e)
	t.size++
}

// Remove deletes the entity with the given id and reports whether it was
// present. Emptied nodes are not merged; a wholesale Rebuild compacts.
func (t *Quadtree) Remove(id uint32) bool {
	if t.root.remove(id) {
		t.size--
		return true
	}
	return false
}

// Find returns the entity with the given id, or false if it is no longer
// indexed. Selection callbacks re-resolve through Find so a stale id
// degrades to a missed selection instead of acting on removed data.
func (t *Quadtree) Find(id uint32) (Entity, bool) {
	return t.root.find(id)
}

// Rebuild discards the tree and re-inserts the given entities.
func (t *Quadtree) Rebuild(entities []Entity) {
	t.root = quadNode{bounds: t.root.bounds}
	t.size = 0
	for _, e := range entities {
		t.Insert(e)
	}
}

// Query appends every entity whose bounds intersect r to buf and returns the
// result. Pass nil to allocate. Only nodes whose bounds intersect r are
// visited.
func (t *Quadtree) Query(r Rect, buf []Entity) []Entity {
	return t.root.query(r, buf)
}

// QueryRadius appends every entity whose bounds come within radius of center
// to buf and returns the result.
func (t *Quadtree) QueryRadius(center Vec2, radius float64, buf []Entity) []Entity {
	if radius < 0 {
		return buf
	}
	return t.root.queryRadius(center, radius*radius, buf)
}

// Nearest appends up to k entities closest to p, nearest first, to buf and
// returns the result. Distance is measured to the entity's bounds, so a
// point inside an entity is at distance zero.
func (t *Quadtree) Nearest(p Vec2, k int, buf []Entity) []Entity {
	if k <= 0 || t.size == 0 {
		return buf
	}
	s := nearestSearch{p: p, k: k}
	t.root.nearest(&s)
	return append(buf, s.found...)
}

// --- Nodes ---

type quadNode struct {
	bounds   Rect
	depth    int
	items    []Entity
	children [4]*quadNode
}

func (n *quadNode) divided() bool {
	return n.children[0] != nil
}

func (n *quadNode) insert(e Entity) {
	if n.divided() {
		if c := n.childFor(e.Bounds); c != nil {
			c.insert(e)
			return
		}
		n.items = append(n.items, e)
		return
	}
	n.items = append(n.items, e)
	if len(n.items) > QuadtreeNodeCapacity && n.depth < QuadtreeMaxDepth {
		n.subdivide()
	}
}

func (n *quadNode) subdivide() {
	hw, hh := n.bounds.Width/2, n.bounds.Height/2
	quads := [4]Rect{
		{n.bounds.X, n.bounds.Y, hw, hh},
		{n.bounds.X + hw, n.bounds.Y, hw, hh},
		{n.bounds.X, n.bounds.Y + hh, hw, hh},
		{n.bounds.X + hw, n.bounds.Y + hh, hw, hh},
	}
	for i := range quads {
		n.children[i] = &quadNode{bounds: quads[i], depth: n.depth + 1}
	}
	kept := n.items[:0]
	for _, e := range n.items {
		if c := n.childFor(e.Bounds); c != nil {
			c.insert(e)
		} else {
			kept = append(kept, e)
		}
	}
	n.items = kept
}

// childFor returns the child that fully contains b, or nil if b straddles a
// boundary and must stay at this node.
func (n *quadNode) childFor(b Rect) *quadNode {
	for _, c := range n.children {
		if c.bounds.ContainsRect(b) {
			return c
		}
	}
	return nil
}

func (n *quadNode) remove(id uint32) bool {
	for i, e := range n.items {
		if e.ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return true
		}
	}
	if !n.divided() {
		return false
	}
	for _, c := range n.children {
		if c.remove(id) {
			return true
		}
	}
	return false
}

func (n *quadNode) find(id uint32) (Entity, bool) {
	for _, e := range n.items {
		if e.ID == id {
			return e, true
		}
	}
	if n.divided() {
		for _, c := range n.children {
			if e, ok := c.find(id); ok {
				return e, true
			}
		}
	}
	return Entity{}, false
}

func (n *quadNode) query(r Rect, buf []Entity) []Entity {
	if !n.bounds.Intersects(r) {
		return buf
	}
	for _, e := range n.items {
		if e.Bounds.Intersects(r) {
			buf = append(buf, e)
		}
	}
	if n.divided() {
		for _, c := range n.children {
			buf = c.query(r, buf)
		}
	}
	return buf
}

func (n *quadNode) queryRadius(center Vec2, radiusSq float64, buf []Entity) []Entity {
	if distSqToRect(center, n.bounds) > radiusSq {
		return buf
	}
	for _, e := range n.items {
		if distSqToRect(center, e.Bounds) <= radiusSq {
			buf = append(buf, e)
		}
	}
	if n.divided() {
		for _, c := range n.children {
			buf = c.queryRadius(center, radiusSq, buf)
		}
	}
	return buf
}

func (n *quadNode) nearest(s *nearestSearch) {
	if distSqToRect(s.p, n.bounds) > s.worst() {
		return
	}
	for _, e := range n.items {
		s.consider(e)
	}
	if n.divided() {
		for _, c := range n.children {
			c.nearest(s)
		}
	}
}

// --- Nearest-neighbor search ---

type nearestSearch struct {
	p     Vec2
	k     int
	found []Entity
	dists []float64
}

// worst is the current kth-best distance; nodes farther than it are pruned.
func (s *nearestSearch) worst() float64 {
	if len(s.dists) < s.k {
		return math.Inf(1)
	}
	return s.dists[len(s.dists)-1]
}

func (s *nearestSearch) consider(e Entity) {
	d := distSqToRect(s.p, e.Bounds)
	if len(s.found) == s.k && d >= s.dists[len(s.dists)-1] {
		return
	}
	i := sort.SearchFloat64s(s.dists, d)
	s.found = append(s.found, Entity{})
	s.dists = append(s.dists, 0)
	copy(s.found[i+1:], s.found[i:])
	copy(s.dists[i+1:], s.dists[i:])
	s.found[i] = e
	s.dists[i] = d
	if len(s.found) > s.k {
		s.found = s.found[:s.k]
		s.dists = s.dists[:s.k]
	}
}

// distSqToRect returns the squared distance from p to the nearest point of
// r, zero if p is inside r.
func distSqToRect(p Vec2, r Rect) float64 {
	dx := math.Max(math.Max(r.X-p.X, 0), p.X-(r.X+r.Width))
	dy := math.Max(math.Max(r.Y-p.Y, 0), p.Y-(r.Y+r.Height))
	return dx*dx + dy*dy
}
