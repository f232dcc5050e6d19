package replyqueue

import (
	"errors"
	"sync"
	"time"

	"github.com/dspctl/scosc/osc"
)

// ErrTimedOut is returned by Get when no item arrives within the timeout.
var ErrTimedOut = errors.New("replyqueue: timed out waiting for reply")

// ErrShutdown is returned by Get (and unblocks any waiter) once Close has
// been called.
var ErrShutdown = errors.New("replyqueue: queue is shut down")

// Queue is a named, bounded, blocking FIFO of decoded messages (§4.2). It is
// single-producer (the transport's receive worker calls Put) but supports
// multiple concurrent consumers; any given item is delivered to exactly one
// Get call.
type Queue struct {
	mu     sync.Mutex
	items  []osc.Message
	notify chan struct{}
	done   chan struct{}
	cap    int
	skips  uint64
	closed bool
}

// New creates a reply queue with the given item capacity. A capacity of 0
// means unbounded; once full, Put drops the oldest item to make room and
// counts it as a skip, so the producer never blocks.
func New(capacity int) *Queue {
	return &Queue{
		cap:    capacity,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Put appends a decoded message to the queue.
func (q *Queue) Put(m osc.Message) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	if q.cap > 0 && len(q.items) >= q.cap {
		q.items = q.items[1:]
		q.skips++
	}
	q.items = append(q.items, m)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Get retrieves one item, blocking up to timeout if the queue is empty. If
// skip is true (the default policy, §4.2), all but the most recently
// enqueued item are discarded and their count added to the skip counter; if
// skip is false, the oldest item is returned and the rest are left queued.
func (q *Queue) Get(timeout time.Duration, skip bool) (osc.Message, error) {
	deadline := time.Now().Add(timeout)
	for {
		q.mu.Lock()
		if q.closed && len(q.items) == 0 {
			q.mu.Unlock()
			return osc.Message{}, ErrShutdown
		}
		if len(q.items) > 0 {
			if skip && len(q.items) > 1 {
				q.skips += uint64(len(q.items) - 1)
				q.items = q.items[len(q.items)-1:]
			}
			m := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return m, nil
		}
		q.mu.Unlock()

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return osc.Message{}, ErrTimedOut
		}
		timer := time.NewTimer(remaining)
		select {
		case <-q.notify:
			timer.Stop()
		case <-q.done:
			timer.Stop()
		case <-timer.C:
			return osc.Message{}, ErrTimedOut
		}
	}
}

// Close shuts the queue down: any blocked or future Get call fails with
// ErrShutdown once the queue has drained. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

// Skips returns the running count of items dropped by the skip policy,
// whether at Put-time (capacity overflow) or Get-time (skip=true).
func (q *Queue) Skips() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.skips
}

// Len returns the number of items currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
