package drift

import (
	"encoding/json"
	"sync/atomic"
)

// --- Primitive cells ---

// Primitive is the closed set of types that may cross the context boundary
// through a Cell. Structured data must go through JSONCell instead; the
// constraint turns an accidentally shared pointer into a compile error
// rather than a data race.
type Primitive interface {
	~bool | ~int64 | ~float64 | ~string
}

// Cell is a single-writer, multi-reader value shared between the real-time
// context and the logic context. Writes are atomic and readers always see a
// complete value, never a torn one.
//
// Exactly one goroutine may call Store on a given cell. Any goroutine may
// call Load.
type Cell[T Primitive] struct {
	v atomic.Pointer[T]
}

// NewCell returns a cell holding initial.
func NewCell[T Primitive](initial T) *Cell[T] {
	c := &Cell[T]{}
	c.v.Store(&initial)
	return c
}

// Load returns the most recently stored value, or the zero value if nothing
// has been stored yet.
func (c *Cell[T]) Load() T {
	if p := c.v.Load(); p != nil {
		return *p
	}
	var zero T
	return zero
}

// Store publishes v to all readers.
func (c *Cell[T]) Store(v T) {
	c.v.Store(&v)
}

// --- Structured cells ---

// JSONCell shares a structured snapshot across the context boundary as a
// JSON string. The writer marshals on Store; readers unmarshal on Load. A
// payload that fails to parse recovers to the fallback value, increments the
// recovery counter, and logs a warning, so a corrupt snapshot degrades one
// read instead of wedging the reader.
//
// V must be JSON-encodable and should be a plain value type; the fallback is
// returned by copy.
type JSONCell[V any] struct {
	raw        Cell[string]
	fallback   V
	recoveries atomic.Uint64
}

// NewJSONCell returns a cell that yields fallback until the first Store.
func NewJSONCell[V any](fallback V) *JSONCell[V] {
	c := &JSONCell[V]{fallback: fallback}
	c.raw.Store("")
	return c
}

// Store marshals v and publishes it. The cell is left unchanged if v cannot
// be marshaled.
func (c *JSONCell[V]) Store(v V) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.raw.Store(string(b))
	return nil
}

// StoreRaw publishes an already-encoded payload. Intended for transport
// layers that receive snapshots in wire form.
func (c *JSONCell[V]) StoreRaw(s string) {
	c.raw.Store(s)
}

// Load returns the most recently stored snapshot. A missing or corrupt
// payload yields the fallback.
func (c *JSONCell[V]) Load() V {
	s := c.raw.Load()
	if s == "" {
		return c.fallback
	}
	var v V
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		c.recoveries.Add(1)
		Logger().Warn("recovered corrupt cell payload", "error", err)
		return c.fallback
	}
	return v
}

// Raw returns the current payload in wire form.
func (c *JSONCell[V]) Raw() string {
	return c.raw.Load()
}

// Recoveries returns how many loads fell back due to a corrupt payload.
func (c *JSONCell[V]) Recoveries() uint64 {
	return c.recoveries.Load()
}
