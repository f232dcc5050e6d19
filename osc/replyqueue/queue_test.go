package replyqueue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dspctl/scosc/osc"
)

func mustMessage(t *testing.T, address string, args ...any) osc.Message {
	t.Helper()
	m, err := osc.NewMessage(address, args...)
	require.NoError(t, err)
	return m
}

func TestGetReturnsPutItem(t *testing.T) {
	q := New(0)
	m := mustMessage(t, "/done", "/notify", int32(1))
	q.Put(m)

	got, err := q.Get(time.Second, true)
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestGetTimesOutOnEmptyQueue(t *testing.T) {
	q := New(0)
	_, err := q.Get(10*time.Millisecond, true)
	require.ErrorIs(t, err, ErrTimedOut)
}

func TestGetSkipPolicyKeepsNewest(t *testing.T) {
	q := New(0)
	q.Put(mustMessage(t, "/status.reply", int32(1)))
	q.Put(mustMessage(t, "/status.reply", int32(2)))
	q.Put(mustMessage(t, "/status.reply", int32(3)))

	got, err := q.Get(time.Second, true)
	require.NoError(t, err)
	require.Equal(t, Int32Arg(t, got), int32(3))
	require.Equal(t, uint64(2), q.Skips())
}

func TestGetWithoutSkipPreservesOrder(t *testing.T) {
	q := New(0)
	q.Put(mustMessage(t, "/status.reply", int32(1)))
	q.Put(mustMessage(t, "/status.reply", int32(2)))

	got, err := q.Get(time.Second, false)
	require.NoError(t, err)
	require.Equal(t, Int32Arg(t, got), int32(1))
	require.Equal(t, uint64(0), q.Skips())
	require.Equal(t, 1, q.Len())
}

func TestCapacityOverflowCountsAsSkip(t *testing.T) {
	q := New(2)
	q.Put(mustMessage(t, "/status.reply", int32(1)))
	q.Put(mustMessage(t, "/status.reply", int32(2)))
	q.Put(mustMessage(t, "/status.reply", int32(3)))

	require.Equal(t, 2, q.Len())
	require.Equal(t, uint64(1), q.Skips())
}

func TestCloseUnblocksAllWaiters(t *testing.T) {
	q := New(0)
	const waiters = 5
	var wg sync.WaitGroup
	errs := make([]error, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = q.Get(time.Second, true)
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	q.Close()
	wg.Wait()

	for _, err := range errs {
		require.ErrorIs(t, err, ErrShutdown)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	q := New(0)
	q.Close()
	require.NotPanics(t, func() { q.Close() })
}

func TestPutAfterCloseIsNoop(t *testing.T) {
	q := New(0)
	q.Close()
	q.Put(mustMessage(t, "/status.reply", int32(1)))
	require.Equal(t, 0, q.Len())
}

// Int32Arg extracts the first Int argument of a message for assertions.
func Int32Arg(t *testing.T, m osc.Message) int32 {
	t.Helper()
	require.NotEmpty(t, m.Args)
	v, ok := m.Args[0].(osc.Int)
	require.True(t, ok)
	return int32(v)
}
