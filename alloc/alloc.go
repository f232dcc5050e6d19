package alloc

import (
	"fmt"
	"sync"
)

// Allocator hands out IDs from a closed range [Low, High] (§4.4). The
// free-list is only reused when a request fits it entirely; a request
// that doesn't fit takes a fresh contiguous block from the cursor
// instead of splitting across both sources, so freed IDs are not handed
// back out until a later, smaller request matches what's free.
type Allocator struct {
	mu        sync.Mutex
	low, high int
	cursor    int
	freeList  []int
	allocated map[int]struct{}
}

// New creates an allocator covering [low, high] inclusive.
func New(low, high int) *Allocator {
	return &Allocator{
		low:       low,
		high:      high,
		cursor:    low,
		allocated: make(map[int]struct{}),
	}
}

// Allocate returns n fresh IDs. If n fits entirely within the free-list,
// it is satisfied from the free-list in insertion (FIFO) order; otherwise
// the free-list is left untouched and a fresh contiguous block is taken
// from the cursor. It fails atomically with ErrExhausted if neither
// source alone can satisfy the full request; no IDs are taken in that
// case.
func (a *Allocator) Allocate(n int) ([]int, error) {
	if n <= 0 {
		return nil, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	var ids []int
	switch {
	case n <= len(a.freeList):
		ids = append([]int(nil), a.freeList[:n]...)
		a.freeList = a.freeList[n:]
	case n <= a.high-a.cursor+1:
		ids = make([]int, n)
		for i := range ids {
			ids[i] = a.cursor
			a.cursor++
		}
	default:
		available := len(a.freeList) + (a.high - a.cursor + 1)
		return nil, fmt.Errorf("%w: requested %d, available %d", ErrExhausted, n, available)
	}

	for _, id := range ids {
		a.allocated[id] = struct{}{}
	}
	return ids, nil
}

// Free returns ids to the free-list without reordering them relative to
// each other. Freeing an ID that is out of range, not currently
// allocated, or already free fails with ErrInvalidID; no partial effect
// occurs for that one ID, but previously processed IDs in the same call
// remain freed.
func (a *Allocator) Free(ids ...int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, id := range ids {
		if id < a.low || id > a.high {
			return fmt.Errorf("%w: %d out of range [%d, %d]", ErrInvalidID, id, a.low, a.high)
		}
		if _, ok := a.allocated[id]; !ok {
			return fmt.Errorf("%w: %d is not currently allocated", ErrInvalidID, id)
		}
		delete(a.allocated, id)
		a.freeList = append(a.freeList, id)
	}
	return nil
}

// Range reports the allocator's configured bounds.
func (a *Allocator) Range() (low, high int) {
	return a.low, a.high
}
