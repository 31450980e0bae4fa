package drift

import (
	"context"
	"fmt"
	"sync/atomic"
)

// DefaultQueueDepth is the dispatch queue capacity used when NewChannel is
// given a non-positive one.
const DefaultQueueDepth = 256

// Channel carries callbacks from the real-time context to the logic context.
// Callbacks run in dispatch order. The queue is bounded: the real-time side
// never blocks on a slow consumer, it drops and counts instead.
type Channel struct {
	queue   chan func()
	dropped atomic.Uint64
}

// NewChannel returns a channel with the given queue capacity.
func NewChannel(capacity int) *Channel {
	if capacity <= 0 {
		capacity = DefaultQueueDepth
	}
	return &Channel{queue: make(chan func(), capacity)}
}

// Dispatch enqueues fn without blocking. It reports whether fn was queued;
// on a saturated queue the callback is dropped and counted.
func (c *Channel) Dispatch(fn func()) bool {
	select {
	case c.queue <- fn:
		return true
	default:
		n := c.dropped.Add(1)
		Logger().Warn("dispatch queue full, callback dropped", "dropped", n)
		return false
	}
}

// DispatchCtx enqueues fn, waiting for queue space until ctx is done. Only
// the logic context should use this; the real-time context must stay on the
// non-blocking Dispatch.
func (c *Channel) DispatchCtx(ctx context.Context, fn func()) error {
	select {
	case c.queue <- fn:
		return nil
	case <-ctx.Done():
		c.dropped.Add(1)
		return fmt.Errorf("%w: %v", ErrQueueFull, ctx.Err())
	}
}

// Run executes queued callbacks until ctx is done. It is the logic context's
// receive loop; run it on exactly one goroutine.
func (c *Channel) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-c.queue:
			fn()
		}
	}
}

// Drain executes up to max queued callbacks without blocking and returns how
// many ran. A non-positive max drains everything currently queued. Drain
// suits logic contexts that tick on their own schedule instead of running a
// dedicated receive goroutine.
func (c *Channel) Drain(max int) int {
	n := 0
	for max <= 0 || n < max {
		select {
		case fn := <-c.queue:
			fn()
			n++
		default:
			return n
		}
	}
	return n
}

// Len returns the number of callbacks currently queued.
func (c *Channel) Len() int {
	return len(c.queue)
}

// Cap returns the queue capacity.
func (c *Channel) Cap() int {
	return cap(c.queue)
}

// Dropped returns how many callbacks were dropped on a saturated queue.
func (c *Channel) Dropped() uint64 {
	return c.dropped.Load()
}
