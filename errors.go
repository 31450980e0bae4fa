package drift

import "errors"

// Every fault here recovers locally: a rejected transition leaves the current
// state untouched, a corrupt cell payload falls back to a safe default, and a
// stale entity reference is dropped on the next resolve. Each recovery is
// counted so regressions show up in diagnostics rather than in behavior.
var (
	// ErrIllegalTransition is returned when a requested gesture transition
	// is not in the legal transition table. The machine stays in its
	// current state.
	ErrIllegalTransition = errors.New("drift: illegal gesture transition")

	// ErrStaleReference is returned when an entity referenced by a gesture
	// no longer exists in the spatial index.
	ErrStaleReference = errors.New("drift: stale entity reference")

	// ErrQueueFull is returned by blocking dispatch helpers when the
	// cross-context queue is saturated.
	ErrQueueFull = errors.New("drift: dispatch queue full")
)

// FaultStats is a point-in-time snapshot of recovered faults, aggregated
// across a Coordinator's subsystems.
type FaultStats struct {
	IllegalTransitions uint64 // transition requests rejected by the legal table
	ParseRecoveries    uint64 // cell payloads that fell back to a safe default
	StaleReferences    uint64 // entity references dropped during resolution
	DroppedDispatches  uint64 // callbacks dropped on a saturated queue
}

// Total returns the sum of all recovered faults in the snapshot.
func (f FaultStats) Total() uint64 {
	return f.IllegalTransitions + f.ParseRecoveries + f.StaleReferences + f.DroppedDispatches
}
