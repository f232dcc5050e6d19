package sched

import "time"

// Task is one entry in the priority queue: ordered by (Deadline, seq), with
// seq breaking ties in submission order (§3).
type Task struct {
	Deadline time.Time
	seq      uint64
	// Spawn runs Run on a fresh goroutine instead of inline on the worker.
	Spawn bool
	// Run performs the task's action: an arbitrary callback, or a prepared
	// send. Errors are logged and swallowed (§4.6, §7).
	Run func() error
}

// taskHeap implements container/heap.Interface ordered by (Deadline, seq).
type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].Deadline.Equal(h[j].Deadline) {
		return h[i].seq < h[j].seq
	}
	return h[i].Deadline.Before(h[j].Deadline)
}

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) {
	*h = append(*h, x.(*Task))
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}
