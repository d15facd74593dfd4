package scheduler

import "container/heap"

// Continuation is a callback parked on a Timeline until its due time.
type Continuation struct {
	due   float64
	seq   uint64
	fn    func()
	index int // heap position, -1 once fired or cancelled
}

// Pending reports whether the continuation has neither fired nor been
// cancelled.
func (c *Continuation) Pending() bool {
	return c != nil && c.index >= 0
}

// Timeline is a simulated-time continuation queue advanced by the world step.
// Continuations fire in due-time order; ties fire in scheduling order.
// It is not safe for concurrent use.
type Timeline struct {
	now   float64
	seq   uint64
	queue continuationQueue
}

// NewTimeline returns an empty timeline at time zero.
func NewTimeline() *Timeline {
	return &Timeline{}
}

// Now is the simulated time in seconds.
func (t *Timeline) Now() float64 { return t.now }

// Len is the number of pending continuations.
func (t *Timeline) Len() int { return len(t.queue) }

// Schedule parks fn to run after delay simulated seconds. Negative delays
// are treated as zero.
func (t *Timeline) Schedule(delay float64, fn func()) *Continuation {
	if delay < 0 {
		delay = 0
	}
	t.seq++
	c := &Continuation{due: t.now + delay, seq: t.seq, fn: fn}
	heap.Push(&t.queue, c)
	return c
}

// Cancel removes c so that it never fires. Cancelling a fired, cancelled or
// nil continuation is a no-op.
func (t *Timeline) Cancel(c *Continuation) {
	if !c.Pending() {
		return
	}
	heap.Remove(&t.queue, c.index)
}

// Advance moves simulated time forward by dt seconds and fires every
// continuation that has come due, including ones scheduled by callbacks
// during this call.
func (t *Timeline) Advance(dt float64) {
	if dt > 0 {
		t.now += dt
	}
	for len(t.queue) > 0 && t.queue[0].due <= t.now {
		c := heap.Pop(&t.queue).(*Continuation)
		c.fn()
	}
}

type continuationQueue []*Continuation

func (q continuationQueue) Len() int { return len(q) }

func (q continuationQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}

func (q continuationQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *continuationQueue) Push(x any) {
	c := x.(*Continuation)
	c.index = len(*q)
	*q = append(*q, c)
}

func (q *continuationQueue) Pop() any {
	old := *q
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	c.index = -1
	*q = old[:n-1]
	return c
}
