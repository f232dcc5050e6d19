package alloc

import "errors"

// ErrExhausted is returned by Allocate when neither the free-list nor the
// space ahead of the cursor can satisfy the whole request on its own.
var ErrExhausted = errors.New("alloc: range exhausted")

// ErrInvalidID is returned by Free when given an ID outside [low, high],
// an ID not currently allocated, or a double-free.
var ErrInvalidID = errors.New("alloc: invalid id")
