package sched

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dspctl/scosc/osc"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *recordingSender) Send(pkt osc.Packet, peer string) error {
	m := pkt.(osc.Message)
	s.mu.Lock()
	s.sent = append(s.sent, m.Address)
	s.mu.Unlock()
	return nil
}

func TestTasksExecuteInDeadlineOrder(t *testing.T) {
	q := New()
	defer q.Close()

	var mu sync.Mutex
	var order []int
	done := make(chan struct{})

	now := time.Now()
	require.NoError(t, q.Put(now.Add(30*time.Millisecond), func() error {
		mu.Lock()
		order = append(order, 2)
		mu.Unlock()
		close(done)
		return nil
	}, false))
	require.NoError(t, q.Put(now.Add(10*time.Millisecond), func() error {
		mu.Lock()
		order = append(order, 1)
		mu.Unlock()
		return nil
	}, false))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tasks did not complete in time")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{1, 2}, order)
}

func TestEqualDeadlinesRunInSubmissionOrder(t *testing.T) {
	q := New()
	defer q.Close()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	wg.Add(3)

	deadline := time.Now().Add(20 * time.Millisecond)
	for i := 1; i <= 3; i++ {
		i := i
		require.NoError(t, q.Put(deadline, func() error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			wg.Done()
			return nil
		}, false))
	}

	waitTimeout(t, &wg, time.Second)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{1, 2, 3}, order)
}

func TestPastDeadlineRunsOnNextWake(t *testing.T) {
	q := New()
	defer q.Close()

	done := make(chan struct{})
	require.NoError(t, q.Put(time.Now().Add(-time.Second), func() error {
		close(done)
		return nil
	}, false))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("past-deadline task never ran")
	}
}

func TestPanicInTaskDoesNotStopWorker(t *testing.T) {
	q := New()
	defer q.Close()

	require.NoError(t, q.Put(time.Now(), func() error {
		panic("boom")
	}, false))

	done := make(chan struct{})
	require.NoError(t, q.Put(time.Now().Add(20*time.Millisecond), func() error {
		close(done)
		return nil
	}, false))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker stopped running tasks after a panic")
	}
}

func TestCloseCancelsFutureTasks(t *testing.T) {
	q := New()

	ran := make(chan struct{}, 1)
	require.NoError(t, q.Put(time.Now().Add(time.Hour), func() error {
		ran <- struct{}{}
		return nil
	}, false))

	q.Close()

	select {
	case <-ran:
		t.Fatal("future task should have been cancelled by Close")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPutMsgSendsViaSender(t *testing.T) {
	q := New()
	defer q.Close()
	sender := &recordingSender{}

	done := make(chan struct{})
	require.NoError(t, q.PutMsg(time.Now(), sender, "/n_set", []any{int32(1)}, "engine"))
	go func() {
		for {
			sender.mu.Lock()
			n := len(sender.sent)
			sender.mu.Unlock()
			if n > 0 {
				close(done)
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PutMsg never sent")
	}
	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Equal(t, []string{"/n_set"}, sender.sent)
}

func TestSpawnRunsOffWorkerGoroutine(t *testing.T) {
	q := New()
	defer q.Close()

	blocker := make(chan struct{})
	require.NoError(t, q.Put(time.Now(), func() error {
		<-blocker
		return nil
	}, true))

	done := make(chan struct{})
	require.NoError(t, q.Put(time.Now().Add(10*time.Millisecond), func() error {
		close(done)
		return nil
	}, false))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("a spawned blocking task should not have blocked the worker")
	}
	close(blocker)
}

func waitTimeout(t *testing.T, wg *sync.WaitGroup, timeout time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatal("timed out waiting for wait group")
	}
}
