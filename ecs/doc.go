// Package ecs provides ECS adapters for drift's gesture output.
//
// The primary adapter is [NewDonburiBridge], which publishes tap selections
// and viewport transform snapshots into a [Donburi] world as typed events.
// Subscribe to [SelectionEventType] and [TransformEventType] in your ECS
// systems to receive them.
//
// Usage:
//
//	bridge := ecs.NewDonburiBridge(world)
//	bridge.Attach(coord)
//
//	// Each logic frame:
//	coord.Chan.Drain(0)
//	events.ProcessAllEvents(world)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
