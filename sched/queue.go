package sched

import (
	"container/heap"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dspctl/scosc/osc"
)

// Sender is the subset of *transport.Transport PutMsg needs. Defined
// locally so this package does not import transport.
type Sender interface {
	Send(packet osc.Packet, peerName string) error
}

// Bundle is the subset of *bundler.Bundler PutBundler needs. Defined
// locally so this package does not import bundler.
type Bundle interface {
	Send(peer string) (osc.Packet, error)
}

// Queue is the timed dispatch queue of §4.6: a priority queue of Task
// drained by a single worker goroutine that sleeps until the earliest
// deadline.
type Queue struct {
	mu     sync.Mutex
	heap   taskHeap
	seq    uint64
	closed bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a Queue and starts its worker goroutine.
func New() *Queue {
	q := &Queue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	q.wg.Add(1)
	go q.run()
	return q
}

// Put enqueues an arbitrary action at deadline. If spawn is true, Run is
// invoked on a fresh goroutine when due; otherwise it runs inline on the
// worker, delaying subsequent due tasks (§4.6).
func (q *Queue) Put(deadline time.Time, run func() error, spawn bool) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return fmt.Errorf("sched: queue is closed")
	}
	q.seq++
	t := &Task{Deadline: deadline, seq: q.seq, Spawn: spawn, Run: run}
	heap.Push(&q.heap, t)
	q.mu.Unlock()

	q.signal()
	return nil
}

// PutMsg is a shortcut for the common case: send one OSC message via
// sender to peer at deadline.
func (q *Queue) PutMsg(deadline time.Time, sender Sender, address string, args []any, peer string) error {
	m, err := osc.NewMessage(address, args...)
	if err != nil {
		return err
	}
	return q.Put(deadline, func() error {
		return sender.Send(m, peer)
	}, false)
}

// PutBundler schedules a bundler to be sent at deadline, the *dispatch*
// time. The bundle's own absolute timetag (the bundler's base, §4.5)
// governs the *engine-side* playback time, letting a caller stream events
// to the engine ahead of when they should sound (§4.6).
func (q *Queue) PutBundler(deadline time.Time, b Bundle, peer string) error {
	return q.Put(deadline, func() error {
		_, err := b.Send(peer)
		return err
	}, false)
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// run is the single worker loop: sleep until the earliest deadline (or
// until woken by an earlier insertion), execute all due tasks in
// (deadline, submission) order, then re-sleep.
func (q *Queue) run() {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		if q.heap.Len() == 0 {
			q.mu.Unlock()
			select {
			case <-q.wake:
				continue
			case <-q.done:
				return
			}
		}

		next := q.heap[0]
		wait := time.Until(next.Deadline)
		if wait > 0 {
			q.mu.Unlock()
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-q.wake:
				timer.Stop()
			case <-q.done:
				timer.Stop()
				return
			}
			continue
		}

		due := make([]*Task, 0, 1)
		for q.heap.Len() > 0 && !q.heap[0].Deadline.After(time.Now()) {
			due = append(due, heap.Pop(&q.heap).(*Task))
		}
		q.mu.Unlock()

		for _, t := range due {
			q.execute(t)
		}

		select {
		case <-q.done:
			return
		default:
		}
	}
}

// execute runs a due task, recovering from panics and logging/swallowing
// errors so one bad task never stops the worker (§4.6, §7).
func (q *Queue) execute(t *Task) {
	runSafely := func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("sched: task panicked")
			}
		}()
		if err := t.Run(); err != nil {
			log.WithError(err).Error("sched: task failed")
		}
	}

	if t.Spawn {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			runSafely()
		}()
		return
	}
	runSafely()
}

// Close stops the worker after finishing any already-due tasks; in-flight
// and spawned callbacks complete normally, but pending tasks with future
// deadlines are cancelled (§4.6). Close is idempotent and blocks until the
// worker and any spawned callbacks have finished.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	close(q.done)
	q.wg.Wait()
}

// Len reports the number of pending (not yet due) tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.heap.Len()
}
