package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocateAdvancesCursor(t *testing.T) {
	a := New(0, 9)
	ids, err := a.Allocate(3)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2}, ids)
}

func TestAllocateExhaustedIsAtomic(t *testing.T) {
	a := New(0, 1)
	_, err := a.Allocate(2)
	require.NoError(t, err)

	_, err = a.Allocate(1)
	require.ErrorIs(t, err, ErrExhausted)

	// the failed call must not have partially consumed the range
	_, err = a.Allocate(1)
	require.ErrorIs(t, err, ErrExhausted)
}

// TestIDReuseSequence is S3: a request that doesn't fit the free-list
// takes a fresh contiguous block from the cursor instead of draining the
// free-list partway; a later request that exactly fits the free-list
// reuses it.
func TestIDReuseSequence(t *testing.T) {
	a := New(0, 1023)

	ids, err := a.Allocate(5)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2, 3, 4}, ids)

	require.NoError(t, a.Free(0, 1))

	next, err := a.Allocate(4)
	require.NoError(t, err)
	require.Equal(t, []int{5, 6, 7, 8}, next)

	reused, err := a.Allocate(2)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, reused)
}

func TestFreeListOrderIsFIFO(t *testing.T) {
	a := New(0, 9)
	ids, err := a.Allocate(3)
	require.NoError(t, err)
	require.NoError(t, a.Free(ids[0]))
	require.NoError(t, a.Free(ids[2]))

	reused, err := a.Allocate(2)
	require.NoError(t, err)
	require.Equal(t, []int{ids[0], ids[2]}, reused)
}

func TestDoubleFreeFails(t *testing.T) {
	a := New(0, 9)
	ids, err := a.Allocate(1)
	require.NoError(t, err)
	require.NoError(t, a.Free(ids[0]))
	err = a.Free(ids[0])
	require.ErrorIs(t, err, ErrInvalidID)
}

func TestFreeOutOfRangeFails(t *testing.T) {
	a := New(0, 9)
	err := a.Free(100)
	require.ErrorIs(t, err, ErrInvalidID)
}

func TestFreeNeverAllocatedFails(t *testing.T) {
	a := New(0, 9)
	err := a.Free(5)
	require.ErrorIs(t, err, ErrInvalidID)
}

func TestClientRangesArePartitionedAndDisjoint(t *testing.T) {
	r0 := NewClientRanges(0, 2, 2)
	r1 := NewClientRanges(1, 2, 2)

	low0, high0 := r0.NodeIDs.Range()
	low1, high1 := r1.NodeIDs.Range()
	require.Less(t, high0, low1)
	require.Equal(t, 0, low0)

	abusLow0, _ := r0.AudioBusIDs.Range()
	require.Equal(t, 2, abusLow0, "audio-bus range must start above reserved hardware buses")
	_ = high1
}
