package drift

import "time"

// frameWindow is how many recent frames FrameClock keeps for diagnostics.
const frameWindow = 120

// FrameClock measures per-frame wall-clock deltas for the real-time loop and
// keeps a short window of samples. The deltas feed InputAdapter.Poll and
// Coordinator.Tick; the window shows whether frame-skip back-pressure is
// engaging.
type FrameClock struct {
	last    time.Time
	started bool

	ring   [frameWindow]float64
	ringAt int
	ringN  int
}

// TickMs returns the milliseconds elapsed since the previous call. The first
// call returns the 60 Hz baseline frame.
func (c *FrameClock) TickMs() float64 {
	now := time.Now()
	if !c.started {
		c.started = true
		c.last = now
		c.note(BaselineFrameMs)
		return BaselineFrameMs
	}
	dt := float64(now.Sub(c.last).Microseconds()) / 1000
	c.last = now
	c.note(dt)
	return dt
}

// AverageFPS returns the mean frame rate over the sample window, zero before
// the first tick.
func (c *FrameClock) AverageFPS() float64 {
	if c.ringN == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < c.ringN; i++ {
		sum += c.ring[i]
	}
	avg := sum / float64(c.ringN)
	if avg <= 0 {
		return 0
	}
	return 1000 / avg
}

// SlowFrames returns how many frames in the window exceeded the frame-skip
// threshold.
func (c *FrameClock) SlowFrames() int {
	n := 0
	for i := 0; i < c.ringN; i++ {
		if c.ring[i] > FrameSkipThresholdMs {
			n++
		}
	}
	return n
}

func (c *FrameClock) note(dt float64) {
	c.ring[c.ringAt] = dt
	c.ringAt = (c.ringAt + 1) % frameWindow
	if c.ringN < frameWindow {
		c.ringN++
	}
}
