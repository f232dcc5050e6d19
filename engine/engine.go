package engine

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dspctl/scosc/alloc"
	"github.com/dspctl/scosc/bundler"
	"github.com/dspctl/scosc/config"
	"github.com/dspctl/scosc/osc"
	"github.com/dspctl/scosc/sched"
	"github.com/dspctl/scosc/stats"
	"github.com/dspctl/scosc/transport"
)

// defaultHardwareBuses is the count of audio buses the engine reserves
// for hardware I/O ahead of the allocatable audio-bus range (§4.4).
const defaultHardwareBuses = 2

// standardReplyAddresses pre-populates the reply-address registry with
// the pairs named in §4.7.
func standardReplyAddresses() map[string]string {
	return map[string]string{
		"/sync":        "/synced",
		"/status":      "/status.reply",
		"/version":     "/version.reply",
		"/d_load":      "/done",
		"/b_alloc":     "/done",
		"/g_queryTree": "/g_queryTree.reply",
		"/notify":      "/done",
	}
}

// Server is the server façade of §4.7. It owns a Transport, a timed
// dispatch queue, one client's ID allocators, and the reply-address and
// init-hook registries.
type Server struct {
	cfg   config.Config
	tr    *transport.Transport
	sched *sched.Queue
	stats stats.Stats

	enginePeer string

	replyMu   sync.RWMutex
	replyAddr map[string]string

	hooksMu   sync.Mutex
	initHooks []func() error

	clientID     int32
	maxLogins    int32
	defaultGroup int32
	ranges       alloc.ClientRanges

	sync syncDemux

	cancel context.CancelFunc
}

// Option configures a Server at construction.
type Option func(*Server)

// WithStats overrides the default Prometheus-backed Stats implementation.
func WithStats(s stats.Stats) Option {
	return func(srv *Server) { srv.stats = s }
}

// WithEnginePeer overrides the default destination peer name ("engine")
// that Msg/MsgAwait/Sync send to.
func WithEnginePeer(name string) Option {
	return func(srv *Server) { srv.enginePeer = name }
}

// New constructs a Server: binds the transport's UDP socket and registers
// the engine (and, if configured, interpreter) peers. The handshake is
// not performed until Connect is called, and the receive loop is not
// running until Start is called.
func New(cfg config.Config, opts ...Option) (*Server, error) {
	tcfg := transport.Config{
		ListenAddress:  fmt.Sprintf(":%d", cfg.ReceivePort),
		MTU:            cfg.MTUBytes,
		ReplyAddresses: standardReplyAddresses(),
		DSCP:           cfg.DSCP,
	}
	tr, err := transport.New(tcfg)
	if err != nil {
		return nil, fmt.Errorf("engine: creating transport: %w", err)
	}

	if _, err := tr.RegisterPeer(transport.PeerEngine, "udp", fmt.Sprintf("%s:%d", cfg.EngineHost, cfg.EnginePort)); err != nil {
		return nil, fmt.Errorf("engine: registering engine peer: %w", err)
	}
	if cfg.InterpreterHost != "" {
		if _, err := tr.RegisterPeer(transport.PeerInterpreter, "udp", fmt.Sprintf("%s:%d", cfg.InterpreterHost, cfg.InterpreterPort)); err != nil {
			return nil, fmt.Errorf("engine: registering interpreter peer: %w", err)
		}
	}

	srv := &Server{
		cfg:        cfg,
		tr:         tr,
		sched:      sched.New(),
		stats:      stats.NewPrometheusStats(),
		enginePeer: transport.PeerEngine,
		replyAddr:  standardReplyAddresses(),
	}
	srv.sync.waiters = make(map[int32]chan osc.Message)

	for _, opt := range opts {
		opt(srv)
	}
	return srv, nil
}

// Transport exposes the underlying transport, for callers (e.g. a
// Bundler) that need a Sender.
func (s *Server) Transport() *transport.Transport { return s.tr }

// Scheduler exposes the timed dispatch queue.
func (s *Server) Scheduler() *sched.Queue { return s.sched }

// Stats exposes the metrics collector.
func (s *Server) Stats() stats.Stats { return s.stats }

// Allocators returns the ID allocators assigned to this client by
// Connect's handshake. Valid only after a successful Connect.
func (s *Server) Allocators() alloc.ClientRanges { return s.ranges }

// ClientID and MaxLogins return the handshake-assigned values.
func (s *Server) ClientID() int32  { return s.clientID }
func (s *Server) MaxLogins() int32 { return s.maxLogins }

// DefaultGroup returns this client's default group ID (clientID+1, §4.7).
func (s *Server) DefaultGroup() int32 { return s.defaultGroup }

// LocalAddr returns the transport's bound local address.
func (s *Server) LocalAddr() *net.UDPAddr { return s.tr.LocalAddr() }

// Start launches the transport's receive loop and the sync reply
// demultiplexer under ctx. It must be called before Connect.
func (s *Server) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.tr.Start(ctx)
	go s.sync.run(ctx, s.tr)
}

// NewBundler creates a Bundler wired to this server's transport and
// default engine peer, and tagged with the server's configured latency
// (§4.7, §4.5).
func (s *Server) NewBundler(opts ...bundler.Option) *bundler.Bundler {
	all := append([]bundler.Option{
		bundler.WithPeer(s.enginePeer),
		bundler.WithLatency(s.cfg.Latency()),
	}, opts...)
	return bundler.New(s.tr, all...)
}

// AddInitHook registers a callable invoked after Connect and after
// FreeAll, enabling re-creation of the default group and similar
// per-session setup (§4.7).
func (s *Server) AddInitHook(fn func() error) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.initHooks = append(s.initHooks, fn)
}

func (s *Server) runInitHooks() error {
	s.hooksMu.Lock()
	hooks := append([]func() error(nil), s.initHooks...)
	s.hooksMu.Unlock()

	for _, fn := range hooks {
		if err := fn(); err != nil {
			return fmt.Errorf("engine: init hook: %w", err)
		}
	}
	return nil
}

// AddReplyAddress registers (or overrides) the reply address the engine
// is expected to answer address on.
func (s *Server) AddReplyAddress(address, reply string) {
	s.replyMu.Lock()
	defer s.replyMu.Unlock()
	s.replyAddr[address] = reply
}

// ReplyAddressFor looks up the registered reply address for address.
func (s *Server) ReplyAddressFor(address string) (string, bool) {
	s.replyMu.RLock()
	defer s.replyMu.RUnlock()
	addr, ok := s.replyAddr[address]
	return addr, ok
}

// Msg sends address/args. When a bundler is active on the calling
// goroutine (bundler.Current()), the message is appended to it instead of
// being dispatched immediately; otherwise it is sent immediately (§4.7).
// Use MsgNow to send immediately regardless of an active bundler.
func (s *Server) Msg(address string, args ...any) error {
	return s.msg(address, args, true)
}

// MsgNow sends address/args immediately, bypassing any active capture
// scope.
func (s *Server) MsgNow(address string, args ...any) error {
	return s.msg(address, args, false)
}

func (s *Server) msg(address string, args []any, bundle bool) error {
	if bundle {
		if b, ok := bundler.Current(); ok {
			return b.Add(address, args...)
		}
	}
	m, err := osc.NewMessage(address, args...)
	if err != nil {
		return err
	}
	if s.stats != nil {
		s.stats.IncSent(address)
	}
	return s.tr.Send(m, s.enginePeer)
}

// MsgAwait sends address/args and blocks up to timeout for the reply
// registered for address, bypassing any active capture scope (a bundled
// send cannot be awaited synchronously).
func (s *Server) MsgAwait(timeout time.Duration, address string, args ...any) (osc.Message, error) {
	replyAddress, ok := s.ReplyAddressFor(address)
	if !ok {
		return osc.Message{}, fmt.Errorf("%w: %q", ErrNoReplyAddress, address)
	}
	m, err := osc.NewMessage(address, args...)
	if err != nil {
		return osc.Message{}, err
	}
	q := s.tr.ReplyQueue(replyAddress)

	if s.stats != nil {
		s.stats.IncSent(address)
	}
	if err := s.tr.Send(m, s.enginePeer); err != nil {
		return osc.Message{}, err
	}
	reply, err := q.Get(timeout, true)
	if err != nil {
		return osc.Message{}, err
	}
	if s.stats != nil {
		s.stats.IncReceived(replyAddress)
	}
	return reply, nil
}

// FreeAll sends /g_freeAll for this client's default group and re-runs
// the init-hook list (§4.7).
func (s *Server) FreeAll() error {
	if err := s.MsgNow("/g_freeAll", s.defaultGroup); err != nil {
		return err
	}
	return s.runInitHooks()
}

// Close shuts the server down in the order documented in §12: the timed
// queue first (draining already-due sends), then the transport (which
// wakes any blocked reply-queue waiters with Shutdown and closes the
// queue table).
func (s *Server) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.sched.Close()
	if err := s.tr.Close(); err != nil {
		log.WithError(err).Warn("engine: error closing transport")
		return err
	}
	return nil
}
