package drift

// Palm rejection defaults. A profile may replace any of them; accessibility
// settings loosen area and timing.
const (
	DefaultMaxContactArea  = 2000.0
	DefaultMaxAspectRatio  = 3.0
	DefaultRapidWindowMs   = 100.0
	DefaultMaxRapidTouches = 3
	DefaultMaxPointers     = 3
)

// Contact describes a new touch contact as reported by the platform layer.
// Aspect is the contact ellipse's major:minor axis ratio; PointerCount is
// the number of pointers down including this one.
type Contact struct {
	Area         float64
	Aspect       float64
	PointerCount int
	TimeMs       float64
}

// RejectReason says why a contact was rejected, or RejectNone if accepted.
type RejectReason uint8

const (
	RejectNone     RejectReason = iota // contact accepted
	RejectArea                         // contact area above maximum
	RejectAspect                       // contact ellipse too elongated
	RejectRapid                        // too many touches inside the rapid window
	RejectPointers                     // too many simultaneous pointers
)

// String returns the reason name for logs and diagnostics.
func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectArea:
		return "area"
	case RejectAspect:
		return "aspect"
	case RejectRapid:
		return "rapid"
	case RejectPointers:
		return "pointers"
	default:
		return "unknown"
	}
}

// PalmFilter rejects touch contacts that look like incidental palm or wrist
// contact rather than intentional input. Check must be called from the
// real-time context; rejection totals are published through cells for the
// logic context.
//
// A zero threshold disables that heuristic.
type PalmFilter struct {
	MaxArea       float64
	MaxAspect     float64
	RapidWindowMs float64
	MaxRapid      int
	MaxPointers   int

	recent   [16]float64 // timestamps of recent contacts, newest overwrites oldest
	recentN  int
	recentAt int

	rejected *Cell[int64]
	rapid    *Cell[int64]
}

// NewPalmFilter returns a filter with the default thresholds.
func NewPalmFilter() *PalmFilter {
	return &PalmFilter{
		MaxArea:       DefaultMaxContactArea,
		MaxAspect:     DefaultMaxAspectRatio,
		RapidWindowMs: DefaultRapidWindowMs,
		MaxRapid:      DefaultMaxRapidTouches,
		MaxPointers:   DefaultMaxPointers,
		rejected:      NewCell(int64(0)),
		rapid:         NewCell(int64(0)),
	}
}

// Check registers the contact and returns RejectNone if it should be
// processed, or the first failing heuristic otherwise. Rejected contacts
// still count toward the rapid-touch window.
func (f *PalmFilter) Check(c Contact) RejectReason {
	rapid := f.noteContact(c.TimeMs)
	f.rapid.Store(int64(rapid))

	reason := RejectNone
	switch {
	case f.MaxArea > 0 && c.Area > f.MaxArea:
		reason = RejectArea
	case f.MaxAspect > 0 && normalizeAspect(c.Aspect) > f.MaxAspect:
		reason = RejectAspect
	case f.MaxRapid > 0 && rapid > f.MaxRapid:
		reason = RejectRapid
	case f.MaxPointers > 0 && c.PointerCount > f.MaxPointers:
		reason = RejectPointers
	}
	if reason != RejectNone {
		f.rejected.Store(f.rejected.Load() + 1)
		Logger().Debug("palm contact rejected",
			"reason", reason.String(), "area", c.Area, "aspect", c.Aspect,
			"pointers", c.PointerCount, "rapid", rapid)
	}
	return reason
}

// Allowed reports whether Check accepts the contact.
func (f *PalmFilter) Allowed(c Contact) bool {
	return f.Check(c) == RejectNone
}

// RapidCount returns how many contacts, including the most recent, landed
// inside the rapid window at the last Check.
func (f *PalmFilter) RapidCount() int {
	return int(f.rapid.Load())
}

// Rejected returns the total number of rejected contacts.
func (f *PalmFilter) Rejected() int64 {
	return f.rejected.Load()
}

// RejectedCell exposes the rejection total for the logic context. Read-only.
func (f *PalmFilter) RejectedCell() *Cell[int64] {
	return f.rejected
}

// Reset clears the rapid-touch history and counters.
func (f *PalmFilter) Reset() {
	f.recentN = 0
	f.recentAt = 0
	f.rejected.Store(0)
	f.rapid.Store(0)
}

// noteContact records the contact time and returns how many contacts landed
// within the rapid window, including this one.
func (f *PalmFilter) noteContact(timeMs float64) int {
	f.recent[f.recentAt] = timeMs
	f.recentAt = (f.recentAt + 1) % len(f.recent)
	if f.recentN < len(f.recent) {
		f.recentN++
	}
	n := 0
	for i := 0; i < f.recentN; i++ {
		if timeMs-f.recent[i] <= f.RapidWindowMs {
			n++
		}
	}
	return n
}

func normalizeAspect(a float64) float64 {
	if a > 0 && a < 1 {
		return 1 / a
	}
	return a
}
