// Package ecs provides ECS adapters for drift.
package ecs

import (
	"github.com/phanxgames/drift"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// SelectionEventType is the Donburi event type for tap selections.
// Subscribe to this in your ECS systems to react to taps on entities.
var SelectionEventType = events.NewEventType[drift.Selection]()

// TransformEventType is the Donburi event type for viewport transform
// snapshots. One event arrives per throttled dispatch, plus a forced one
// at every gesture end.
var TransformEventType = events.NewEventType[drift.Transform]()

// DonburiBridge publishes a coordinator's logic-context output into a
// Donburi world as typed events.
type DonburiBridge struct {
	world donburi.World
}

// NewDonburiBridge creates a bridge into the given world. Output is
// published to SelectionEventType and TransformEventType and can be
// consumed with events.Subscribe and ProcessEvents.
func NewDonburiBridge(world donburi.World) *DonburiBridge {
	return &DonburiBridge{world: world}
}

// Attach points the coordinator's logic-context callbacks at the world.
// The publishes happen on whichever goroutine drains the coordinator's
// channel; run ProcessEvents from that same context.
func (b *DonburiBridge) Attach(c *drift.Coordinator) {
	c.OnSelect = b.PublishSelection
	c.OnTransform = b.PublishTransform
}

// PublishSelection queues a selection event on the world.
func (b *DonburiBridge) PublishSelection(s drift.Selection) {
	SelectionEventType.Publish(b.world, s)
}

// PublishTransform queues a transform snapshot event on the world.
func (b *DonburiBridge) PublishTransform(t drift.Transform) {
	TransformEventType.Publish(b.world, t)
}
