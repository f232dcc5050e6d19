package engine

import (
	"fmt"
	"time"

	"github.com/dspctl/scosc/alloc"
	"github.com/dspctl/scosc/osc"
)

// Connect performs the mandatory handshake of §6: /notify to obtain the
// assigned client_id/max_logins, /status to confirm the engine is
// responsive, then one /g_new for this client's default group. It must
// be called after Start. On success it partitions this client's ID
// allocator ranges and runs the init-hook list.
func (s *Server) Connect(timeout time.Duration) error {
	notifyReply, err := s.MsgAwait(timeout, "/notify", osc.Int(1))
	if err != nil {
		return fmt.Errorf("engine: /notify handshake: %w", err)
	}
	clientID, maxLogins, err := parseNotifyDone(notifyReply)
	if err != nil {
		return err
	}

	if s.cfg.ClientID != 0 {
		clientID = s.cfg.ClientID
	}
	if s.cfg.MaxLogins != 0 {
		maxLogins = s.cfg.MaxLogins
	}

	statusReply, err := s.MsgAwait(timeout, "/status")
	if err != nil {
		return fmt.Errorf("engine: /status handshake: %w", err)
	}
	if _, err := osc.DecodeStatus(statusReply.Args); err != nil {
		return fmt.Errorf("%w: %v", ErrProtocolMismatch, err)
	}

	s.clientID = clientID
	s.maxLogins = maxLogins
	s.defaultGroup = clientID + 1
	s.ranges = alloc.NewClientRanges(int(clientID), int(maxLogins), defaultHardwareBuses)

	if err := s.MsgNow("/g_new", s.defaultGroup, osc.Int(0), osc.Int(0)); err != nil {
		return fmt.Errorf("engine: creating default group: %w", err)
	}

	return s.runInitHooks()
}

// parseNotifyDone extracts client_id and max_logins from the "/done"
// reply to "/notify": args ["/notify", client_id, max_logins].
func parseNotifyDone(m osc.Message) (clientID, maxLogins int32, err error) {
	if len(m.Args) < 3 {
		return 0, 0, fmt.Errorf("%w: /done reply to /notify expected 3 arguments, got %d", ErrProtocolMismatch, len(m.Args))
	}
	if _, ok := m.Args[0].(osc.Str); !ok {
		return 0, 0, fmt.Errorf("%w: /done reply missing command-name argument", ErrProtocolMismatch)
	}
	id, ok := m.Args[1].(osc.Int)
	if !ok {
		return 0, 0, fmt.Errorf("%w: /done reply client_id is not an integer", ErrProtocolMismatch)
	}
	ml, ok := m.Args[2].(osc.Int)
	if !ok {
		return 0, 0, fmt.Errorf("%w: /done reply max_logins is not an integer", ErrProtocolMismatch)
	}
	return int32(id), int32(ml), nil
}
