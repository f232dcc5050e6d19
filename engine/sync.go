package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dspctl/scosc/osc"
	"github.com/dspctl/scosc/osc/replyqueue"
	"github.com/dspctl/scosc/transport"
)

// syncDemuxPollInterval bounds how long one demux iteration blocks
// waiting for the next /synced reply before re-checking for shutdown.
const syncDemuxPollInterval = 250 * time.Millisecond

// syncDemux fans the shared "/synced" reply queue out to whichever
// in-flight Sync call is waiting for the matching integer argument
// (§4.7, §8 property 5): two concurrent syncs with distinct ids must
// each receive their own reply regardless of arrival order, which a
// single shared FIFO with the ordinary skip policy cannot guarantee.
type syncDemux struct {
	mu      sync.Mutex
	nextID  int32
	waiters map[int32]chan osc.Message
}

func (d *syncDemux) register(id int32) chan osc.Message {
	ch := make(chan osc.Message, 1)
	d.mu.Lock()
	d.waiters[id] = ch
	d.mu.Unlock()
	return ch
}

func (d *syncDemux) unregister(id int32) {
	d.mu.Lock()
	delete(d.waiters, id)
	d.mu.Unlock()
}

func (d *syncDemux) allocateID() int32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	if d.nextID <= 0 || d.nextID > 1<<31-1 {
		d.nextID = 1
	}
	return d.nextID
}

// run reads every message arriving on the "/synced" reply queue and
// delivers it to the waiter registered for its leading integer argument,
// if any. It never uses the skip policy: every reply must be considered,
// since discarding one in favor of "the newest" would drop whichever
// concurrent Sync call it actually belonged to.
func (d *syncDemux) run(ctx context.Context, tr *transport.Transport) {
	q := tr.ReplyQueue("/synced")
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		m, err := q.Get(syncDemuxPollInterval, false)
		if err != nil {
			if errors.Is(err, replyqueue.ErrShutdown) {
				return
			}
			continue
		}

		id, ok := syncedID(m)
		if !ok {
			log.WithField("message", m.Address).Warn("engine: /synced reply missing integer id argument")
			continue
		}

		d.mu.Lock()
		ch, ok := d.waiters[id]
		d.mu.Unlock()
		if !ok {
			log.WithField("id", id).Debug("engine: /synced reply with no matching in-flight sync, discarding")
			continue
		}
		select {
		case ch <- m:
		default:
		}
	}
}

func syncedID(m osc.Message) (int32, bool) {
	if len(m.Args) == 0 {
		return 0, false
	}
	i, ok := m.Args[0].(osc.Int)
	if !ok {
		return 0, false
	}
	return int32(i), true
}

// Sync allocates a fresh positive id, sends "/sync id", and blocks up to
// timeout for the "/synced id" reply carrying the same id (§4.7).
func (s *Server) Sync(timeout time.Duration) error {
	id := s.sync.allocateID()
	ch := s.sync.register(id)
	defer s.sync.unregister(id)

	if err := s.MsgNow("/sync", id); err != nil {
		return err
	}

	select {
	case <-ch:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("%w: /sync %d", replyqueue.ErrTimedOut, id)
	}
}
