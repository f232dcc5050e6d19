package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dspctl/scosc/dscp"
	"github.com/dspctl/scosc/osc"
	"github.com/dspctl/scosc/osc/replyqueue"
	"github.com/dspctl/scosc/timestamp"
)

// defaultMTU matches the engine limit documented in §4.3: datagrams larger
// than this are rejected rather than silently truncated.
const defaultMTU = 8192

// defaultReplyQueueCapacity bounds each address-keyed reply queue so a
// chatty, unconsumed address cannot grow without bound.
const defaultReplyQueueCapacity = 64

// Config configures a Transport.
type Config struct {
	// ListenAddress is the local UDP address to bind, e.g. "127.0.0.1:0".
	ListenAddress string
	// MTU is the maximum encoded datagram size Send will accept. Zero
	// selects defaultMTU.
	MTU int
	// ReplyAddresses maps an outgoing command address to the address the
	// engine replies on, e.g. "/sync" -> "/synced" (§3).
	ReplyAddresses map[string]string
	// DSCP, if nonzero, marks the outgoing socket with this traffic
	// class (Linux only; no-op elsewhere, see package dscp).
	DSCP int
}

// CatchAllHandler is invoked for decoded messages whose address has no
// registered reply queue.
type CatchAllHandler func(osc.Message, *net.UDPAddr)

// Transport owns a bound UDP socket, a peer registry, and the
// address-keyed reply queues incoming messages are routed into (§4.3).
type Transport struct {
	cfg  Config
	conn *net.UDPConn
	mtu  int

	peers *peerRegistry

	mu        sync.Mutex
	replyQs   map[string]*replyqueue.Queue
	catchAll  CatchAllHandler
	closed    bool
	closeOnce sync.Once

	eg     *errgroup.Group
	cancel context.CancelFunc
}

// New binds a UDP socket per cfg and returns a Transport. The receive loop
// is not started until Start is called.
func New(cfg Config) (*Transport, error) {
	addr, err := net.ResolveUDPAddr("udp", cfg.ListenAddress)
	if err != nil {
		return nil, fmt.Errorf("transport: resolving listen address: %w", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: binding udp socket: %w", err)
	}
	mtu := cfg.MTU
	if mtu == 0 {
		mtu = defaultMTU
	}
	if cfg.DSCP != 0 {
		if fd, ferr := timestamp.ConnFd(conn); ferr == nil {
			if derr := dscp.Enable(fd, addr.IP, cfg.DSCP); derr != nil {
				log.WithError(derr).Warn("transport: failed to set DSCP on socket")
			}
		}
	}
	t := &Transport{
		cfg:     cfg,
		conn:    conn,
		mtu:     mtu,
		peers:   newPeerRegistry(),
		replyQs: make(map[string]*replyqueue.Queue),
	}
	for address := range cfg.ReplyAddresses {
		t.ensureReplyQueue(replyAddressFor(cfg, address))
	}
	return t, nil
}

// LocalAddr returns the bound local address, useful when ListenAddress
// requested an ephemeral port.
func (t *Transport) LocalAddr() *net.UDPAddr {
	return t.conn.LocalAddr().(*net.UDPAddr)
}

// RegisterPeer adds a named destination, e.g. the engine's control port.
func (t *Transport) RegisterPeer(name, network, address string) (Peer, error) {
	return t.peers.Register(name, network, address)
}

// SetCatchAll installs the handler invoked for decoded messages whose
// address has no registered reply queue. A nil handler (the default)
// causes unmatched messages to be discarded and logged (§4.3).
func (t *Transport) SetCatchAll(h CatchAllHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.catchAll = h
}

// replyAddressFor resolves the reply address registered for an outgoing
// command address, or returns the address unchanged if it is itself an
// address the caller wants a reply queue on.
func replyAddressFor(cfg Config, address string) string {
	if reply, ok := cfg.ReplyAddresses[address]; ok {
		return reply
	}
	return address
}

// ensureReplyQueue returns the reply queue for an address, creating it on
// first use.
func (t *Transport) ensureReplyQueue(address string) *replyqueue.Queue {
	t.mu.Lock()
	defer t.mu.Unlock()
	q, ok := t.replyQs[address]
	if !ok {
		q = replyqueue.New(defaultReplyQueueCapacity)
		t.replyQs[address] = q
	}
	return q
}

// Start launches the single-threaded receive worker under the given
// errgroup-derived context, mirroring the receiver supervision pattern
// used by the engine's unicast client.
func (t *Transport) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	eg, ctx := errgroup.WithContext(ctx)
	t.cancel = cancel
	t.eg = eg

	eg.Go(func() error {
		return t.receiveLoop(ctx)
	})
}

// receiveLoop reads datagrams on a dedicated goroutine and decodes/routes
// them inline, matching the single-threaded-receiver contract of §4.3.
func (t *Transport) receiveLoop(ctx context.Context) error {
	buf := make([]byte, 65536)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := t.conn.SetReadDeadline(time.Now().Add(250 * time.Millisecond)); err != nil {
			return fmt.Errorf("transport: setting read deadline: %w", err)
		}
		n, addr, err := t.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return fmt.Errorf("transport: reading datagram: %w", err)
		}

		pkt, err := osc.Decode(append([]byte(nil), buf[:n]...))
		if err != nil {
			log.WithError(err).Warn("transport: dropping malformed datagram")
			continue
		}
		t.dispatch(pkt, addr)
	}
}

// dispatch routes every message contained in pkt (flattening bundles, per
// §4.3 — nested-bundle timetags are informational to the receiver) to its
// reply queue or the catch-all handler.
func (t *Transport) dispatch(pkt osc.Packet, addr *net.UDPAddr) {
	for _, m := range flatten(pkt) {
		t.mu.Lock()
		q, ok := t.replyQs[m.Address]
		handler := t.catchAll
		t.mu.Unlock()

		if ok {
			q.Put(m)
			continue
		}
		if handler != nil {
			handler(m, addr)
			continue
		}
		log.WithField("address", m.Address).Debug("transport: no reply queue or catch-all for address, discarding")
	}
}

// flatten collects every Message contained in pkt, recursing into bundles
// in order and ignoring bundle timetags.
func flatten(pkt osc.Packet) []osc.Message {
	switch p := pkt.(type) {
	case osc.Message:
		return []osc.Message{p}
	case *osc.Bundle:
		var out []osc.Message
		for _, elem := range p.Elements {
			out = append(out, flatten(elem)...)
		}
		return out
	default:
		return nil
	}
}

// Send serializes packet and writes one datagram to the named peer. Send
// is safe to call concurrently from any goroutine.
func (t *Transport) Send(packet osc.Packet, peerName string) error {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return ErrClosed
	}

	addr, err := t.peers.Lookup(peerName)
	if err != nil {
		return err
	}
	data, err := packet.Bytes()
	if err != nil {
		return fmt.Errorf("transport: encoding packet: %w", err)
	}
	if len(data) > t.mtu {
		return fmt.Errorf("%w: %d bytes > mtu %d", ErrPacketTooLarge, len(data), t.mtu)
	}
	_, err = t.conn.WriteToUDP(data, addr)
	if err != nil {
		return fmt.Errorf("transport: writing datagram to %s: %w", peerName, err)
	}
	return nil
}

// Msg sends one message and, if awaitReply is true and address has a
// registered reply address, blocks up to timeout on the corresponding
// reply queue and returns the decoded payload (§4.3).
func (t *Transport) Msg(address string, args []any, peerName string, awaitReply bool, timeout time.Duration) (osc.Message, error) {
	m, err := osc.NewMessage(address, args...)
	if err != nil {
		return osc.Message{}, err
	}

	var q *replyqueue.Queue
	if awaitReply {
		reply, ok := t.cfg.ReplyAddresses[address]
		if !ok {
			return osc.Message{}, fmt.Errorf("%w: %q", ErrNoReplyAddress, address)
		}
		q = t.ensureReplyQueue(reply)
	}

	if err := t.Send(m, peerName); err != nil {
		return osc.Message{}, err
	}
	if !awaitReply {
		return osc.Message{}, nil
	}
	return q.Get(timeout, true)
}

// ReplyQueue returns the queue for the given address, creating it on
// first use, for callers (e.g. the server façade) that need direct access
// beyond Msg's convenience wrapper.
func (t *Transport) ReplyQueue(address string) *replyqueue.Queue {
	return t.ensureReplyQueue(address)
}

// Close stops the receive worker and closes the underlying socket and all
// reply queues. Close is idempotent.
func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.closed = true
		queues := make([]*replyqueue.Queue, 0, len(t.replyQs))
		for _, q := range t.replyQs {
			queues = append(queues, q)
		}
		t.mu.Unlock()

		if t.cancel != nil {
			t.cancel()
		}
		if t.eg != nil {
			_ = t.eg.Wait()
		}
		for _, q := range queues {
			q.Close()
		}
		err = t.conn.Close()
	})
	return err
}
